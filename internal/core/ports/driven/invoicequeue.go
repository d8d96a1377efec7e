package driven

import (
	"context"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// InvoiceQueue is the queue store consumed by the sync engine.
// Every mutation is committed on its own so one invoice's failure
// cannot roll back another's success.
type InvoiceQueue interface {
	// Enqueue inserts a PENDING invoice and assigns its ID.
	Enqueue(ctx context.Context, inv *domain.PendingInvoice) error

	// CountPending returns the number of PENDING invoices.
	CountPending(ctx context.Context) (int, error)

	// ListPendingFIFO returns PENDING invoices ordered by ID ascending.
	ListPendingFIFO(ctx context.Context) ([]domain.PendingInvoice, error)

	// MarkSynced records a successful submission.
	MarkSynced(ctx context.Context, id int64, resp domain.SubmitResponse) error

	// MarkRetry keeps the invoice PENDING and records the transient failure.
	MarkRetry(ctx context.Context, id int64, reason string) error

	// MarkFailed moves the invoice to FAILED with the error message attached.
	MarkFailed(ctx context.Context, id int64, reason string) error

	// List returns invoices with the given status, or all when status is empty.
	List(ctx context.Context, status domain.InvoiceStatus) ([]domain.PendingInvoice, error)
}
