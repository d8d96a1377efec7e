package driving

import (
	"context"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// CaptureService owns the browser capture session lifecycle.
type CaptureService interface {
	// Start launches the browser, installs the in-page agent and opens url.
	Start(ctx context.Context, url string) error

	// Wait pumps the automation loop until every page is closed, Stop is
	// called or ctx is done.
	Wait(ctx context.Context) error

	// Stop tears the browser down. Safe to call when not started.
	Stop() error

	// ApplyConfig replaces the capture configuration for the next session.
	ApplyConfig(cfg domain.CaptureConfig)

	// Status returns the current capture status.
	Status() domain.CaptureStatus

	// SetStatusObserver registers a callback invoked on every status change.
	SetStatusObserver(fn func(domain.CaptureStatus))
}
