package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
)

// invoiceQueue implements driven.InvoiceQueue.
// Each mutation is a single statement, so each commits on its own.
type invoiceQueue struct {
	store *Store
}

var _ driven.InvoiceQueue = (*invoiceQueue)(nil)

const invoiceColumns = `id, invoice_number, chassis_number, payload, status,
	response_message, fbr_invoice_number, attempts, created_at, updated_at`

// Enqueue inserts a PENDING invoice. A preset ID is kept, otherwise one is assigned.
func (q *invoiceQueue) Enqueue(ctx context.Context, inv *domain.PendingInvoice) error {
	if inv == nil {
		return domain.ErrInvalidInput
	}
	payload, err := json.Marshal(inv.Payload)
	if err != nil {
		return fmt.Errorf("marshalling payload: %w", err)
	}

	now := q.store.now()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	inv.Status = domain.InvoiceStatusPending

	var id any
	if inv.ID != 0 {
		id = inv.ID
	}
	res, err := q.store.db.ExecContext(ctx, `
		INSERT INTO invoices (id, invoice_number, chassis_number, payload, status, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
	`, id, inv.InvoiceNumber, inv.ChassisNumber, string(payload), inv.Status.String(),
		formatTime(inv.CreatedAt), formatTime(now))
	if err != nil {
		return fmt.Errorf("enqueueing invoice: %w", err)
	}
	if inv.ID == 0 {
		if inv.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading invoice id: %w", err)
		}
	}
	return nil
}

// CountPending returns the number of PENDING invoices.
func (q *invoiceQueue) CountPending(ctx context.Context) (int, error) {
	var n int
	err := q.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM invoices WHERE status = ?", domain.InvoiceStatusPending.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting pending invoices: %w", err)
	}
	return n, nil
}

// ListPendingFIFO returns PENDING invoices ordered by ID ascending.
func (q *invoiceQueue) ListPendingFIFO(ctx context.Context) ([]domain.PendingInvoice, error) {
	return q.List(ctx, domain.InvoiceStatusPending)
}

// MarkSynced records a successful submission.
func (q *invoiceQueue) MarkSynced(ctx context.Context, id int64, resp domain.SubmitResponse) error {
	return q.update(ctx, id, `
		UPDATE invoices SET status = ?, fbr_invoice_number = ?, response_message = ?,
			attempts = attempts + 1, updated_at = ?
		WHERE id = ?
	`, domain.InvoiceStatusSynced.String(), nullString(resp.InvoiceNumber), nullString(resp.Message))
}

// MarkRetry keeps the invoice PENDING and records the failure.
func (q *invoiceQueue) MarkRetry(ctx context.Context, id int64, reason string) error {
	return q.update(ctx, id, `
		UPDATE invoices SET response_message = ?, attempts = attempts + 1, updated_at = ?
		WHERE id = ?
	`, nullString(reason))
}

// MarkFailed moves the invoice to FAILED.
func (q *invoiceQueue) MarkFailed(ctx context.Context, id int64, reason string) error {
	return q.update(ctx, id, `
		UPDATE invoices SET status = ?, response_message = ?, attempts = attempts + 1, updated_at = ?
		WHERE id = ?
	`, domain.InvoiceStatusFailed.String(), nullString(reason))
}

// List returns invoices with the given status, or all when status is empty,
// ordered by ID ascending.
func (q *invoiceQueue) List(ctx context.Context, status domain.InvoiceStatus) ([]domain.PendingInvoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status.String())
	}
	query += " ORDER BY id ASC"

	rows, err := q.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	var result []domain.PendingInvoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}
	return result, nil
}

// update runs a mutation whose trailing placeholders are updated_at and id.
func (q *invoiceQueue) update(ctx context.Context, id int64, query string, args ...any) error {
	args = append(args, formatTime(q.store.now()), id)
	res, err := q.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating invoice %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInvoice(row rowScanner) (*domain.PendingInvoice, error) {
	var inv domain.PendingInvoice
	var payload, status, createdAt, updatedAt string
	var respMsg, fbrNumber sql.NullString

	if err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.ChassisNumber, &payload, &status,
		&respMsg, &fbrNumber, &inv.Attempts, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}

	// The row is still returned so a corrupt payload fails on its own
	// instead of blocking the queue behind it.
	if err := json.Unmarshal([]byte(payload), &inv.Payload); err != nil {
		inv.PayloadErr = fmt.Errorf("decoding payload of invoice %d: %w", inv.ID, err)
	}
	inv.Status = domain.InvoiceStatus(status)
	inv.ResponseMessage = respMsg.String
	inv.FBRInvoiceNumber = fbrNumber.String
	inv.CreatedAt = parseTime(createdAt)
	inv.UpdatedAt = parseTime(updatedAt)
	return &inv, nil
}
