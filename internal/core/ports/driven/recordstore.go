package driven

import (
	"context"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// CapturedRecordStore persists captured records keyed by normalised chassis number.
type CapturedRecordStore interface {
	// Upsert inserts a record or overwrites the one with the same chassis number.
	// Returns the stored record and whether it was newly created.
	// A soft-deleted record with the same chassis is revived.
	Upsert(ctx context.Context, rec domain.CapturedRecord) (*domain.CapturedRecord, bool, error)

	// GetByChassis retrieves a record. Returns domain.ErrNotFound if absent.
	GetByChassis(ctx context.Context, chassis string) (*domain.CapturedRecord, error)

	// List returns records ordered by most recent update first.
	List(ctx context.Context, includeDeleted bool) ([]domain.CapturedRecord, error)

	// SoftDelete flags a record as deleted.
	SoftDelete(ctx context.Context, chassis string) error

	// Delete removes a record (consumed by invoice creation).
	Delete(ctx context.Context, chassis string) error

	// Purge hard-deletes every soft-deleted record and returns the count.
	Purge(ctx context.Context) (int, error)
}
