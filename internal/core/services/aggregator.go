package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// FieldMapper reconciles flattened observations into canonical fields.
type FieldMapper interface {
	Map(flat domain.FlatFieldSet, diagnostics map[string]string) domain.MappedRecord
}

// AggregatorOptions tunes the submission pipeline.
type AggregatorOptions struct {
	// DiscardInvalidSubmissions drops submissions the page flagged with
	// visible validation errors. The default keeps them.
	DiscardInvalidSubmissions bool
}

// SessionAggregator accumulates observations per page and turns a form
// submission into a stored record.
type SessionAggregator struct {
	store   driven.SessionStore
	records driven.CapturedRecordStore
	mapper  FieldMapper
	opts    AggregatorOptions
	now     func() time.Time

	mu  sync.Mutex
	doc *domain.SessionDocument
}

// NewSessionAggregator creates an aggregator with an empty document.
// Call Restore to pick up a session left on disk.
func NewSessionAggregator(
	store driven.SessionStore,
	records driven.CapturedRecordStore,
	mapper FieldMapper,
	opts AggregatorOptions,
) *SessionAggregator {
	return &SessionAggregator{
		store:   store,
		records: records,
		mapper:  mapper,
		opts:    opts,
		now:     time.Now,
		doc:     domain.NewSessionDocument(),
	}
}

// Restore replaces the in-memory document with the stored one.
func (a *SessionAggregator) Restore(ctx context.Context) error {
	doc, err := a.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if doc == nil {
		doc = domain.NewSessionDocument()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.doc = doc
	logger.Debug("aggregator: restored session with %d fields from %s", doc.FieldCount(), a.store.Path())
	return nil
}

// Document returns a copy of the current session document.
func (a *SessionAggregator) Document() *domain.SessionDocument {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doc.Clone()
}

// FieldCount returns the number of observations held.
func (a *SessionAggregator) FieldCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doc.FieldCount()
}

// RecordObservation upserts one observation and persists the document.
// A persistence failure is returned wrapping domain.ErrPersistence; the
// observation stays in memory either way.
func (a *SessionAggregator) RecordObservation(
	ctx context.Context,
	pageURL, selector string,
	obs domain.FieldObservation,
) error {
	if pageURL == "" || selector == "" {
		return fmt.Errorf("%w: observation needs page url and selector", domain.ErrInvalidInput)
	}
	if obs.Timestamp <= 0 {
		obs.Timestamp = a.now().UnixMilli()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.doc.Record(pageURL, selector, obs)
	logger.Debug("aggregator: %s %s = %q (%s)", pageURL, selector, obs.Value.String(), obs.Type)
	return a.persistLocked(ctx)
}

// RecordForcedCapture merges a submission's forced capture into the
// document and runs the mapping pipeline. On success the session is reset;
// on failure it is retained for a corrected retry.
func (a *SessionAggregator) RecordForcedCapture(
	ctx context.Context,
	sub domain.Submission,
) (*domain.SubmissionResult, error) {
	if sub.PageURL == "" {
		return nil, fmt.Errorf("%w: submission without page url", domain.ErrInvalidInput)
	}
	at := sub.Timestamp
	if at.IsZero() {
		at = a.now()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if sub.ValidationErrorsPresent {
		logger.Warn("aggregator: submission on %s has visible validation errors: %v", sub.PageURL, sub.ValidationErrors)
		if a.opts.DiscardInvalidSubmissions {
			return nil, domain.ErrSubmissionDiscarded
		}
	}

	a.doc.MergeForced(sub.PageURL, sub.Fields, at)
	if err := a.persistLocked(ctx); err != nil {
		logger.Warn("aggregator: continuing with in-memory session: %v", err)
	}

	mapped := a.mapper.Map(a.doc.Flatten(), sub.Diagnostics)
	if err := mapped.Validate(); err != nil {
		logger.Warn("aggregator: submission rejected, session retained: %v", err)
		return nil, fmt.Errorf("map submission: %w", err)
	}

	rec := domain.NewCapturedRecord(mapped)
	stored, created, err := a.records.Upsert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("upsert captured record: %w", err)
	}

	a.doc.Reset()
	if err := a.persistLocked(ctx); err != nil {
		logger.Warn("aggregator: session reset not persisted: %v", err)
	}

	verb := "updated"
	if created {
		verb = "created"
	}
	logger.Info("aggregator: %s record for chassis %s", verb, stored.ChassisNumber)

	return &domain.SubmissionResult{
		Record:  *stored,
		Created: created,
		Mapped:  mapped,
	}, nil
}

// Reset clears the session document and persists the empty document.
func (a *SessionAggregator) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.doc.Reset()
	return a.persistLocked(ctx)
}

// persistLocked saves a snapshot of the document. Callers hold a.mu.
func (a *SessionAggregator) persistLocked(ctx context.Context) error {
	if err := a.store.Save(ctx, a.doc.Clone()); err != nil {
		logger.Error("aggregator: persist session to %s: %v", a.store.Path(), err)
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}
