package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
)

// Ensure InvoiceQueue implements the interface.
var _ driven.InvoiceQueue = (*InvoiceQueue)(nil)

// InvoiceQueue is an in-memory implementation of driven.InvoiceQueue.
type InvoiceQueue struct {
	mu       sync.RWMutex
	invoices map[int64]domain.PendingInvoice
	nextID   int64
	now      func() time.Time
}

// NewInvoiceQueue creates a new in-memory invoice queue.
func NewInvoiceQueue() *InvoiceQueue {
	return &InvoiceQueue{
		invoices: make(map[int64]domain.PendingInvoice),
		now:      time.Now,
	}
}

// Enqueue inserts a PENDING invoice. A preset ID is kept, otherwise one is assigned.
func (q *InvoiceQueue) Enqueue(_ context.Context, inv *domain.PendingInvoice) error {
	if inv == nil {
		return domain.ErrInvalidInput
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if inv.ID == 0 {
		q.nextID++
		inv.ID = q.nextID
	} else if inv.ID > q.nextID {
		q.nextID = inv.ID
	}
	if _, exists := q.invoices[inv.ID]; exists {
		return domain.ErrInvalidInput
	}
	now := q.now()
	inv.Status = domain.InvoiceStatusPending
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	q.invoices[inv.ID] = *inv
	return nil
}

// CountPending returns the number of PENDING invoices.
func (q *InvoiceQueue) CountPending(_ context.Context) (int, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	n := 0
	for _, inv := range q.invoices {
		if inv.Status == domain.InvoiceStatusPending {
			n++
		}
	}
	return n, nil
}

// ListPendingFIFO returns PENDING invoices ordered by ID ascending.
func (q *InvoiceQueue) ListPendingFIFO(ctx context.Context) ([]domain.PendingInvoice, error) {
	return q.List(ctx, domain.InvoiceStatusPending)
}

// MarkSynced records a successful submission.
func (q *InvoiceQueue) MarkSynced(_ context.Context, id int64, resp domain.SubmitResponse) error {
	return q.update(id, func(inv *domain.PendingInvoice) {
		inv.Status = domain.InvoiceStatusSynced
		inv.FBRInvoiceNumber = resp.InvoiceNumber
		inv.ResponseMessage = resp.Message
		inv.Attempts++
	})
}

// MarkRetry keeps the invoice PENDING and records the failure.
func (q *InvoiceQueue) MarkRetry(_ context.Context, id int64, reason string) error {
	return q.update(id, func(inv *domain.PendingInvoice) {
		inv.ResponseMessage = reason
		inv.Attempts++
	})
}

// MarkFailed moves the invoice to FAILED.
func (q *InvoiceQueue) MarkFailed(_ context.Context, id int64, reason string) error {
	return q.update(id, func(inv *domain.PendingInvoice) {
		inv.Status = domain.InvoiceStatusFailed
		inv.ResponseMessage = reason
		inv.Attempts++
	})
}

// List returns invoices with the given status, or all when status is empty,
// ordered by ID ascending.
func (q *InvoiceQueue) List(_ context.Context, status domain.InvoiceStatus) ([]domain.PendingInvoice, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	result := make([]domain.PendingInvoice, 0, len(q.invoices))
	for _, inv := range q.invoices {
		if status == "" || inv.Status == status {
			result = append(result, inv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Get returns one invoice.
func (q *InvoiceQueue) Get(id int64) (domain.PendingInvoice, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	inv, ok := q.invoices[id]
	return inv, ok
}

func (q *InvoiceQueue) update(id int64, fn func(*domain.PendingInvoice)) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	inv, ok := q.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&inv)
	inv.UpdatedAt = q.now()
	q.invoices[id] = inv
	return nil
}
