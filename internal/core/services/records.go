package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driving"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// Ensure RecordService implements the interface.
var _ driving.RecordService = (*RecordService)(nil)

// RecordService manages captured customer/vehicle records.
type RecordService struct {
	store driven.CapturedRecordStore
}

// NewRecordService creates a new record service.
func NewRecordService(store driven.CapturedRecordStore) *RecordService {
	return &RecordService{store: store}
}

// List returns records, optionally including soft-deleted ones.
func (s *RecordService) List(ctx context.Context, includeDeleted bool) ([]domain.CapturedRecord, error) {
	records, err := s.store.List(ctx, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Get returns the record for a chassis number.
func (s *RecordService) Get(ctx context.Context, chassis string) (*domain.CapturedRecord, error) {
	key, err := chassisKey(chassis)
	if err != nil {
		return nil, err
	}
	return s.store.GetByChassis(ctx, key)
}

// SoftDelete flags a record as deleted.
func (s *RecordService) SoftDelete(ctx context.Context, chassis string) error {
	key, err := chassisKey(chassis)
	if err != nil {
		return err
	}
	if err := s.store.SoftDelete(ctx, key); err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	logger.Info("records: soft-deleted %s", key)
	return nil
}

// Purge permanently removes soft-deleted records.
func (s *RecordService) Purge(ctx context.Context) (int, error) {
	n, err := s.store.Purge(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge records: %w", err)
	}
	logger.Info("records: purged %d deleted records", n)
	return n, nil
}

func chassisKey(chassis string) (string, error) {
	key := domain.NormalizeChassis(chassis)
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", fmt.Errorf("%w: chassis number %q", domain.ErrInvalidInput, chassis)
	}
	return key, nil
}
