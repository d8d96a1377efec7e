package driven

import (
	"context"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// SessionStore persists the capture session document.
// Writes must never leave a partially written document observable.
type SessionStore interface {
	// Load returns the stored document, or an empty one if none exists.
	Load(ctx context.Context) (*domain.SessionDocument, error)

	// Save replaces the stored document.
	Save(ctx context.Context, doc *domain.SessionDocument) error

	// Path returns the storage location.
	Path() string
}
