package driving

import (
	"context"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// SyncService drives the background invoice sync engine.
type SyncService interface {
	// Start launches the background loop. It returns immediately.
	Start(ctx context.Context) error

	// Stop signals the loop and waits a bounded time for it to exit.
	Stop() error

	// TriggerNow runs one out-of-band cycle without touching the loop's backoff.
	TriggerNow(ctx context.Context) (domain.CycleResult, error)

	// Status returns the current display tuple.
	Status() domain.SyncStatus

	// SetStatusObserver registers a callback invoked after every cycle.
	SetStatusObserver(fn func(online bool, pending int))
}
