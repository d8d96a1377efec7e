package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driving"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// Ensure SyncEngine implements the interface.
var _ driving.SyncService = (*SyncEngine)(nil)

// SyncEngine drains the local invoice queue to the remote submitter while
// tracking connectivity. Cycles are mutually exclusive; the background loop
// lives in scheduler.go.
type SyncEngine struct {
	queue     driven.InvoiceQueue
	submitter driven.InvoiceSubmitter
	probe     driven.ConnectivityProbe
	settings  domain.SyncSettings
	now       func() time.Time

	cycleMu sync.Mutex

	mu              sync.RWMutex
	state           domain.ConnectivityState
	pending         int
	cycleInProgress bool
	lastCycle       time.Time
	nextWait        time.Duration
	observer        func(online bool, pending int)

	runMu   sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	backoff *Backoff
}

// NewSyncEngine creates a sync engine.
func NewSyncEngine(
	queue driven.InvoiceQueue,
	submitter driven.InvoiceSubmitter,
	probe driven.ConnectivityProbe,
	settings domain.SyncSettings,
) *SyncEngine {
	return &SyncEngine{
		queue:     queue,
		submitter: submitter,
		probe:     probe,
		settings:  settings,
		now:       time.Now,
		state:     domain.ConnectivityUnknown,
		backoff:   NewBackoff(settings.InitialBackoff, settings.MaxBackoff, settings.BackoffFactor),
	}
}

// SetStatusObserver registers a callback invoked after every cycle.
func (e *SyncEngine) SetStatusObserver(fn func(online bool, pending int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observer = fn
}

// Status returns the current display tuple.
func (e *SyncEngine) Status() domain.SyncStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	e.runMu.Lock()
	running := e.running
	e.runMu.Unlock()

	return domain.SyncStatus{
		Online:          e.state == domain.ConnectivityOnline,
		Pending:         e.pending,
		State:           e.state,
		Running:         running,
		CycleInProgress: e.cycleInProgress,
		LastCycle:       e.lastCycle,
		NextWait:        e.nextWait,
	}
}

// TriggerNow runs one out-of-band cycle. The loop's backoff is untouched.
func (e *SyncEngine) TriggerNow(ctx context.Context) (domain.CycleResult, error) {
	return e.RunCycle(ctx, nil)
}

// RunCycle probes connectivity, refreshes the pending count and, when
// online, drains the queue. A closed stop channel aborts the drain between
// items.
func (e *SyncEngine) RunCycle(ctx context.Context, stop <-chan struct{}) (domain.CycleResult, error) {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	start := e.now()
	e.setCycleInProgress(true)
	defer e.setCycleInProgress(false)

	var result domain.CycleResult

	// 1. Connectivity probe.
	probeErr := e.probe.Probe(ctx)
	result.Online = probeErr == nil
	e.transition(result.Online, probeErr)

	// 2. Pending count.
	pending, err := e.queue.CountPending(ctx)
	if err != nil {
		result.Duration = e.now().Sub(start)
		e.finishCycle(result)
		return result, fmt.Errorf("count pending invoices: %w", err)
	}
	result.Pending = pending
	e.setPending(pending)

	// 3. Drain.
	if result.Online && pending > 0 {
		if err := e.drain(ctx, stop, &result); err != nil {
			result.Duration = e.now().Sub(start)
			e.finishCycle(result)
			return result, err
		}
		if remaining, err := e.queue.CountPending(ctx); err == nil {
			result.Pending = remaining
			e.setPending(remaining)
		} else {
			logger.Warn("sync: recount pending: %v", err)
		}
	}

	result.Duration = e.now().Sub(start)

	// 4. Observer.
	e.finishCycle(result)
	return result, nil
}

// drain submits every PENDING invoice in ascending id order. Each status
// change is committed on its own.
func (e *SyncEngine) drain(ctx context.Context, stop <-chan struct{}, result *domain.CycleResult) error {
	items, err := e.queue.ListPendingFIFO(ctx)
	if err != nil {
		return fmt.Errorf("list pending invoices: %w", err)
	}
	logger.Debug("sync: draining %d pending invoices", len(items))

	for i := range items {
		if stopped(ctx, stop) {
			logger.Info("sync: stop requested, %d invoices left for the next cycle", len(items)-i)
			result.Aborted = true
			return nil
		}
		e.submitOne(ctx, &items[i], result)
		if result.Aborted {
			return nil
		}
	}
	return nil
}

// submitOne submits one invoice and records the outcome.
func (e *SyncEngine) submitOne(ctx context.Context, inv *domain.PendingInvoice, result *domain.CycleResult) {
	if inv.PayloadErr != nil {
		e.markFailed(ctx, inv, fmt.Errorf("corrupt payload: %w", inv.PayloadErr), result)
		return
	}
	if err := inv.Payload.Validate(); err != nil {
		e.markFailed(ctx, inv, err, result)
		return
	}

	resp, err := e.submitter.Submit(ctx, inv.Payload)
	if err == nil {
		if resp == nil {
			resp = &domain.SubmitResponse{}
		}
		if markErr := e.queue.MarkSynced(ctx, inv.ID, *resp); markErr != nil {
			logger.Error("sync: invoice %d submitted but not marked synced: %v", inv.ID, markErr)
			return
		}
		result.Synced++
		logger.Info("sync: invoice %s synced as %s", inv.InvoiceNumber, resp.InvoiceNumber)
		return
	}

	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		logger.Info("sync: invoice %s interrupted, stays pending", inv.InvoiceNumber)
		result.Aborted = true
		return
	}

	switch domain.ClassifyFailure(err) {
	case domain.FailureTransient:
		if markErr := e.queue.MarkRetry(ctx, inv.ID, err.Error()); markErr != nil {
			logger.Error("sync: invoice %d not marked for retry: %v", inv.ID, markErr)
			return
		}
		result.Retried++
		logger.Warn("sync: invoice %s will be retried: %v", inv.InvoiceNumber, err)
	default:
		e.markFailed(ctx, inv, err, result)
	}
}

func (e *SyncEngine) markFailed(ctx context.Context, inv *domain.PendingInvoice, cause error, result *domain.CycleResult) {
	if err := e.queue.MarkFailed(ctx, inv.ID, cause.Error()); err != nil {
		logger.Error("sync: invoice %d not marked failed: %v", inv.ID, err)
		return
	}
	result.Failed++
	logger.Error("sync: invoice %s failed permanently: %v", inv.InvoiceNumber, cause)
}

// transition updates the connectivity state, logging only real transitions.
func (e *SyncEngine) transition(online bool, probeErr error) {
	next := domain.ConnectivityOffline
	if online {
		next = domain.ConnectivityOnline
	}

	e.mu.Lock()
	prev := e.state
	e.state = next
	e.mu.Unlock()

	switch {
	case prev == next:
	case prev == domain.ConnectivityUnknown:
		logger.Debug("sync: initial connectivity %s", next)
	case online:
		logger.Info("sync: connection restored")
	default:
		logger.Warn("sync: connection lost: %v", probeErr)
	}
}

func (e *SyncEngine) setPending(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = n
}

func (e *SyncEngine) setCycleInProgress(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cycleInProgress = v
}

// finishCycle stamps the cycle and notifies the observer, swallowing panics.
func (e *SyncEngine) finishCycle(result domain.CycleResult) {
	e.mu.Lock()
	e.lastCycle = e.now()
	fn := e.observer
	e.mu.Unlock()

	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("sync: status observer panicked: %v", r)
		}
	}()
	fn(result.Online, result.Pending)
}

// stopped reports whether ctx is done or stop is closed.
func stopped(ctx context.Context, stop <-chan struct{}) bool {
	if ctx.Err() != nil {
		return true
	}
	if stop == nil {
		return false
	}
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
