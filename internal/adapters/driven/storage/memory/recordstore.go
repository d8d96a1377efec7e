package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.CapturedRecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.CapturedRecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.CapturedRecord
	nextID  int64
	now     func() time.Time
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]domain.CapturedRecord),
		now:     time.Now,
	}
}

// Upsert inserts or overwrites the record with the same chassis number.
func (s *RecordStore) Upsert(_ context.Context, rec domain.CapturedRecord) (*domain.CapturedRecord, bool, error) {
	key := domain.NormalizeChassis(rec.ChassisNumber)
	if key == "" {
		return nil, false, domain.ErrMissingChassis
	}
	rec.ChassisNumber = key

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	existing, ok := s.records[key]
	if ok {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else {
		s.nextID++
		rec.ID = s.nextID
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	rec.Deleted = false
	s.records[key] = rec

	out := rec
	return &out, !ok, nil
}

// GetByChassis retrieves a record.
func (s *RecordStore) GetByChassis(_ context.Context, chassis string) (*domain.CapturedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[domain.NormalizeChassis(chassis)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// List returns records ordered by most recent update first.
func (s *RecordStore) List(_ context.Context, includeDeleted bool) ([]domain.CapturedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.CapturedRecord, 0, len(s.records))
	for _, rec := range s.records {
		if rec.Deleted && !includeDeleted {
			continue
		}
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

// SoftDelete flags a record as deleted.
func (s *RecordStore) SoftDelete(_ context.Context, chassis string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.NormalizeChassis(chassis)
	rec, ok := s.records[key]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Deleted = true
	rec.UpdatedAt = s.now()
	s.records[key] = rec
	return nil
}

// Delete removes a record.
func (s *RecordStore) Delete(_ context.Context, chassis string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, domain.NormalizeChassis(chassis))
	return nil
}

// Purge removes every soft-deleted record.
func (s *RecordStore) Purge(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, rec := range s.records {
		if rec.Deleted {
			delete(s.records, key)
			n++
		}
	}
	return n, nil
}
