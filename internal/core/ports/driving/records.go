package driving

import (
	"context"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// RecordService manages captured customer/vehicle records.
type RecordService interface {
	// List returns records, optionally including soft-deleted ones.
	List(ctx context.Context, includeDeleted bool) ([]domain.CapturedRecord, error)

	// Get returns the record for a chassis number.
	Get(ctx context.Context, chassis string) (*domain.CapturedRecord, error)

	// SoftDelete flags a record as deleted.
	SoftDelete(ctx context.Context, chassis string) error

	// Purge permanently removes soft-deleted records.
	Purge(ctx context.Context) (int, error)
}

// InvoiceService raises invoices from captured records and lists the queue.
type InvoiceService interface {
	// CreateFromRecord builds an FBR payload for a captured record, queues it
	// as PENDING and removes the consumed record.
	CreateFromRecord(ctx context.Context, req domain.InvoiceRequest) (*domain.PendingInvoice, error)

	// List returns queued invoices with the given status, or all when empty.
	List(ctx context.Context, status domain.InvoiceStatus) ([]domain.PendingInvoice, error)
}
