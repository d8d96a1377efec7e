package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Capture Errors.

	// ErrMissingChassis indicates a mapped record has no chassis number.
	// The submission is rejected and the session is kept for a corrective retry.
	ErrMissingChassis = errors.New("chassis number missing")

	// ErrSubmissionDiscarded indicates the page reported validation errors and
	// the aggregator is configured to discard such submissions.
	ErrSubmissionDiscarded = errors.New("submission discarded: page reported validation errors")

	// ErrPersistence indicates the session document could not be written to disk.
	// The in-memory document is still current.
	ErrPersistence = errors.New("session persistence failed")

	// ErrSessionActive indicates a browser capture session is already running.
	ErrSessionActive = errors.New("capture session already active")

	// ErrNoSession indicates no browser capture session is running.
	ErrNoSession = errors.New("no active capture session")

	// Sync Errors.

	// ErrTransient indicates a retryable failure (network, timeout, remote 5xx).
	// The invoice stays PENDING.
	ErrTransient = errors.New("transient failure")

	// ErrPermanent indicates a non-retryable failure (validation, business-rule rejection).
	// The invoice moves to FAILED.
	ErrPermanent = errors.New("permanent failure")

	// ErrInvalidPayload indicates an invoice payload is missing required fields.
	ErrInvalidPayload = errors.New("invalid invoice payload")

	// ErrEngineRunning indicates the sync engine loop is already started.
	ErrEngineRunning = errors.New("sync engine already running")

	// ErrOffline indicates no connectivity endpoint could be reached.
	ErrOffline = errors.New("offline")
)
