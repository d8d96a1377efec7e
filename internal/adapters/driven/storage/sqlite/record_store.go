package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
)

// recordStore implements driven.CapturedRecordStore.
type recordStore struct {
	store *Store
}

var _ driven.CapturedRecordStore = (*recordStore)(nil)

const recordColumns = `id, chassis_number, name, father_name, cnic, phone, address,
	engine_number, color, model, created_at, updated_at, deleted`

// Upsert inserts a record or overwrites the one with the same chassis number.
// The lookup and write share a transaction so the created flag is exact.
func (s *recordStore) Upsert(ctx context.Context, rec domain.CapturedRecord) (*domain.CapturedRecord, bool, error) {
	key := domain.NormalizeChassis(rec.ChassisNumber)
	if key == "" {
		return nil, false, domain.ErrMissingChassis
	}
	rec.ChassisNumber = key

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var existingID int64
	var createdAt string
	err = tx.QueryRowContext(ctx,
		"SELECT id, created_at FROM captured_records WHERE chassis_number = ?", key,
	).Scan(&existingID, &createdAt)
	created := errors.Is(err, sql.ErrNoRows)
	if err != nil && !created {
		return nil, false, fmt.Errorf("looking up record: %w", err)
	}

	now := s.store.now()
	rec.UpdatedAt = now
	rec.Deleted = false

	if created {
		rec.CreatedAt = now
		res, err := tx.ExecContext(ctx, `
			INSERT INTO captured_records (chassis_number, name, father_name, cnic, phone, address,
				engine_number, color, model, created_at, updated_at, deleted)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		`, key, rec.Name, rec.FatherName, rec.CNIC, rec.Phone, rec.Address,
			rec.EngineNumber, rec.Color, rec.Model, formatTime(now), formatTime(now))
		if err != nil {
			return nil, false, fmt.Errorf("inserting record: %w", err)
		}
		if rec.ID, err = res.LastInsertId(); err != nil {
			return nil, false, fmt.Errorf("reading record id: %w", err)
		}
	} else {
		rec.ID = existingID
		rec.CreatedAt = parseTime(createdAt)
		_, err := tx.ExecContext(ctx, `
			UPDATE captured_records SET name = ?, father_name = ?, cnic = ?, phone = ?, address = ?,
				engine_number = ?, color = ?, model = ?, updated_at = ?, deleted = 0
			WHERE id = ?
		`, rec.Name, rec.FatherName, rec.CNIC, rec.Phone, rec.Address,
			rec.EngineNumber, rec.Color, rec.Model, formatTime(now), existingID)
		if err != nil {
			return nil, false, fmt.Errorf("updating record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing record: %w", err)
	}
	return &rec, created, nil
}

// GetByChassis retrieves a record by chassis number.
func (s *recordStore) GetByChassis(ctx context.Context, chassis string) (*domain.CapturedRecord, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM captured_records WHERE chassis_number = ?",
		domain.NormalizeChassis(chassis))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns records ordered by most recent update first.
func (s *recordStore) List(ctx context.Context, includeDeleted bool) ([]domain.CapturedRecord, error) {
	query := "SELECT " + recordColumns + " FROM captured_records"
	if !includeDeleted {
		query += " WHERE deleted = 0"
	}
	query += " ORDER BY updated_at DESC, id DESC"

	rows, err := s.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var result []domain.CapturedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return result, nil
}

// SoftDelete flags a record as deleted.
func (s *recordStore) SoftDelete(ctx context.Context, chassis string) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE captured_records SET deleted = 1, updated_at = ? WHERE chassis_number = ?",
		formatTime(s.store.now()), domain.NormalizeChassis(chassis))
	if err != nil {
		return fmt.Errorf("soft-deleting record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a record.
func (s *recordStore) Delete(ctx context.Context, chassis string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM captured_records WHERE chassis_number = ?", domain.NormalizeChassis(chassis))
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// Purge hard-deletes every soft-deleted record.
func (s *recordStore) Purge(ctx context.Context) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM captured_records WHERE deleted = 1")
	if err != nil {
		return 0, fmt.Errorf("purging records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged records: %w", err)
	}
	return int(n), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.CapturedRecord, error) {
	var rec domain.CapturedRecord
	var createdAt, updatedAt string
	var deleted int

	if err := row.Scan(&rec.ID, &rec.ChassisNumber, &rec.Name, &rec.FatherName, &rec.CNIC,
		&rec.Phone, &rec.Address, &rec.EngineNumber, &rec.Color, &rec.Model,
		&createdAt, &updatedAt, &deleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	rec.Deleted = deleted == 1
	return &rec, nil
}
