package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// Start launches the background sync loop and returns immediately.
func (e *SyncEngine) Start(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.running {
		return domain.ErrEngineRunning
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})

	go e.run(ctx, e.stopCh, e.doneCh)
	logger.Info("sync: background loop started")
	return nil
}

// Stop signals the loop and waits up to the configured stop timeout.
func (e *SyncEngine) Stop() error {
	e.runMu.Lock()
	if !e.running {
		e.runMu.Unlock()
		return nil
	}
	e.running = false
	close(e.stopCh)
	done := e.doneCh
	e.runMu.Unlock()

	timeout := e.settings.StopTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	select {
	case <-done:
		logger.Info("sync: background loop stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("sync loop did not stop within %s", timeout)
	}
}

// run is the background loop. The stop signal is checked at the loop
// boundary and during every wait.
func (e *SyncEngine) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		e.runMu.Lock()
		// A Stop then Start may already have replaced this loop.
		if e.doneCh == done {
			e.running = false
		}
		e.runMu.Unlock()
	}()

	e.backoff.Reset()
	for {
		if stopped(ctx, stop) {
			return
		}

		started := e.now()
		result, err := e.RunCycle(ctx, stop)
		if err != nil {
			logger.Error("sync: cycle failed: %v", err)
		}
		wait := e.nextDelay(result.Online, e.now().Sub(started))

		e.mu.Lock()
		e.nextWait = wait
		e.mu.Unlock()
		logger.Debug("sync: next cycle in %s", wait)

		if stopped(ctx, stop) {
			return
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// nextDelay returns the wait before the next loop cycle: the online
// interval minus the cycle's duration (floored) while online, the growing
// backoff while offline.
func (e *SyncEngine) nextDelay(online bool, elapsed time.Duration) time.Duration {
	if !online {
		return e.backoff.Next()
	}
	e.backoff.Reset()
	wait := e.settings.OnlineInterval - elapsed
	if wait < e.settings.MinSleep {
		wait = e.settings.MinSleep
	}
	return wait
}
