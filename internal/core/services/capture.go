package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driving"
	"github.com/custodia-labs/dealer-capture/internal/extraction"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// Ensure CaptureController implements the interface.
var _ driving.CaptureService = (*CaptureController)(nil)

const bindingQueueSize = 256

// bindingCall is one agent message waiting for the automation loop.
type bindingCall struct {
	src     domain.SourceContext
	payload []byte
}

// CaptureController owns one browser capture session at a time.
//
// Agent messages arrive on the browser driver's goroutines and are queued;
// Wait drains the queue on a single goroutine so the session document sees
// them one at a time.
type CaptureController struct {
	driver     driven.BrowserDriver
	aggregator *SessionAggregator
	gate       extraction.Gate
	targets    []extraction.LabelTarget
	settings   domain.CaptureSettings

	mu       sync.Mutex
	cfg      domain.CaptureConfig
	active   domain.CaptureConfig
	session  driven.BrowserSession
	calls    chan bindingCall
	done     chan struct{}
	status   domain.CaptureStatus
	observer func(domain.CaptureStatus)
}

// NewCaptureController creates a controller. cfg applies to the first
// session; ApplyConfig replaces it for later sessions.
func NewCaptureController(
	driver driven.BrowserDriver,
	aggregator *SessionAggregator,
	cfg domain.CaptureConfig,
	settings domain.CaptureSettings,
) *CaptureController {
	return &CaptureController{
		driver:     driver,
		aggregator: aggregator,
		gate:       extraction.DefaultGate(),
		targets:    extraction.DefaultLabelTargets,
		settings:   settings,
		cfg:        cfg.WithDefaults(),
	}
}

// ApplyConfig replaces the capture configuration. A running session keeps
// the configuration it started with.
func (c *CaptureController) ApplyConfig(cfg domain.CaptureConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg.WithDefaults()
	if c.session != nil {
		logger.Info("capture: configuration reloaded, applies to the next session")
	}
}

// SetStatusObserver registers a callback invoked on every status change.
func (c *CaptureController) SetStatusObserver(fn func(domain.CaptureStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

// Status returns the current capture status.
func (c *CaptureController) Status() domain.CaptureStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Start launches the browser, installs the agent and opens url.
// An empty url opens the configured portal.
func (c *CaptureController) Start(ctx context.Context, url string) error {
	defer c.publish()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return domain.ErrSessionActive
	}
	if url == "" {
		url = c.settings.PortalURL
	}
	if url == "" {
		return fmt.Errorf("%w: no portal url configured", domain.ErrInvalidInput)
	}

	if err := c.aggregator.Restore(ctx); err != nil {
		logger.Warn("capture: starting with an empty session: %v", err)
	}

	cfg := c.cfg
	bootstrap, err := extraction.Bootstrap(extraction.NewAgentConfig(cfg, c.gate, c.targets))
	if err != nil {
		return err
	}

	logger.Section("Capture Session")
	session, err := c.driver.Launch(ctx, driven.LaunchOptions{Headless: c.settings.Headless})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	calls := make(chan bindingCall, bindingQueueSize)
	done := make(chan struct{})
	enqueue := func(src domain.SourceContext, payload []byte) {
		select {
		case calls <- bindingCall{src: src, payload: payload}:
		case <-done:
		}
	}

	setup := []struct {
		step string
		fn   func() error
	}{
		{"install agent config", func() error { return session.AddInitScript(bootstrap) }},
		{"install agent", func() error { return session.AddInitScript(extraction.AgentScript()) }},
		{"expose binding", func() error { return session.Bind(extraction.BindingName, enqueue) }},
		{"open " + url, func() error { return session.Navigate(ctx, url) }},
	}
	for _, s := range setup {
		if err := s.fn(); err != nil {
			close(done)
			if cerr := session.Close(); cerr != nil {
				logger.Warn("capture: close after failed start: %v", cerr)
			}
			return fmt.Errorf("%s: %w", s.step, err)
		}
	}

	c.session = session
	c.active = cfg
	c.calls = calls
	c.done = done
	c.status = domain.CaptureStatus{
		Active:       true,
		PageURL:      url,
		Observations: c.aggregator.FieldCount(),
	}
	logger.Info("capture: session started on %s", url)
	return nil
}

// Wait pumps the automation loop until every page is closed, Stop is
// called or ctx is done. It tears the session down before returning.
func (c *CaptureController) Wait(ctx context.Context) error {
	c.mu.Lock()
	session, calls, done := c.session, c.calls, c.done
	c.mu.Unlock()
	if session == nil {
		return domain.ErrNoSession
	}

	interval := c.settings.PumpInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := c.Stop(); err != nil {
				logger.Warn("capture: stop: %v", err)
			}
			return ctx.Err()
		case <-done:
			c.drain(ctx, calls)
			return nil
		case call := <-calls:
			c.handle(ctx, call)
		case <-ticker.C:
			if session.OpenPages() == 0 {
				c.drain(ctx, calls)
				logger.Info("capture: all pages closed")
				return c.Stop()
			}
		}
	}
}

// drain handles calls still queued when the loop ends.
func (c *CaptureController) drain(ctx context.Context, calls chan bindingCall) {
	for {
		select {
		case call := <-calls:
			c.handle(ctx, call)
		default:
			return
		}
	}
}

// Stop tears the browser down. Safe to call when not started.
func (c *CaptureController) Stop() error {
	defer c.publish()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	close(c.done)
	err := c.session.Close()
	c.session = nil
	c.status.Active = false

	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	logger.Info("capture: session stopped")
	return nil
}

// handle processes one agent message.
func (c *CaptureController) handle(ctx context.Context, call bindingCall) {
	msg, err := extraction.ParseMessage(call.src, call.payload)
	if err != nil {
		logger.Warn("capture: ignoring agent message: %v", err)
		return
	}

	c.mu.Lock()
	cfg := c.active
	session := c.session
	c.mu.Unlock()

	if !cfg.MatchesDomain(msg.URL) {
		logger.Debug("capture: %s is outside the target domains", msg.URL)
		return
	}

	switch msg.Type {
	case extraction.MessageObservation:
		if !cfg.Allows(msg.Selector) {
			logger.Debug("capture: dropped observation for %s", msg.Selector)
			return
		}
		err := c.aggregator.RecordObservation(ctx, msg.URL, msg.Selector, msg.Observation())
		c.update(msg.URL, "", err)

	case extraction.MessageSubmission:
		sub := msg.Submission()
		sub.Fields = c.prepareFields(ctx, session, cfg, sub)
		res, err := c.aggregator.RecordForcedCapture(ctx, sub)
		chassis := ""
		if res != nil {
			chassis = res.Record.ChassisNumber
		}
		if err != nil {
			logger.Error("capture: submission on %s not stored: %v", msg.URL, err)
		}
		c.update(msg.URL, chassis, err)
	}
}

// prepareFields applies the allow filter, adds label-inferred values from a
// page snapshot and runs the validation gate.
func (c *CaptureController) prepareFields(
	ctx context.Context,
	session driven.BrowserSession,
	cfg domain.CaptureConfig,
	sub domain.Submission,
) map[string]domain.FieldValue {
	fields := make(map[string]domain.FieldValue, len(sub.Fields))
	for sel, v := range sub.Fields {
		if cfg.Allows(sel) {
			fields[sel] = v
		}
	}

	if session != nil {
		for sel, v := range c.inferLabels(ctx, session, sub.PageURL) {
			if _, ok := fields[sel]; !ok && cfg.Allows(sel) {
				fields[sel] = domain.StringValue(v)
			}
		}
	}

	kept, rejected := c.gate.Filter(fields)
	if len(rejected) > 0 {
		logger.Warn("capture: implausible values dropped for %s", strings.Join(rejected, ", "))
	}
	return kept
}

// inferLabels reads the page snapshot and resolves labelled plain-text values.
// Snapshot failures are logged and yield nothing.
func (c *CaptureController) inferLabels(
	ctx context.Context,
	session driven.BrowserSession,
	pageURL string,
) map[string]string {
	timeout := c.settings.SnapshotTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	snapCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := session.PageHTML(snapCtx, pageURL)
	if err != nil {
		logger.Debug("capture: no snapshot for label inference: %v", err)
		return nil
	}
	values, err := extraction.NewLabelInferrer(c.targets).InferHTML(strings.NewReader(page))
	if err != nil {
		logger.Debug("capture: label inference: %v", err)
		return nil
	}
	return values
}

// update records the outcome of a message in the status.
func (c *CaptureController) update(pageURL, chassis string, err error) {
	defer c.publish()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status.PageURL = pageURL
	c.status.Observations = c.aggregator.FieldCount()
	if chassis != "" {
		c.status.LastSubmission = chassis
	}
	switch {
	case err == nil:
		c.status.LastError = ""
	case errors.Is(err, domain.ErrPersistence) && chassis == "":
		c.status.LastError = "session not saved to disk"
	default:
		c.status.LastError = err.Error()
	}
}

// publish hands the current status to the observer outside the lock.
func (c *CaptureController) publish() {
	c.mu.Lock()
	status, fn := c.status, c.observer
	c.mu.Unlock()
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("capture: status observer panicked: %v", r)
		}
	}()
	fn(status)
}
