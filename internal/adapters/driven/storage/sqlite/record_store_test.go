package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

func TestRecordStore_UpsertCreatesThenUpdates(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	store.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	records := store.RecordStore()
	ctx := context.Background()

	first, created, err := records.Upsert(ctx, domain.CapturedRecord{
		ChassisNumber: " abc123 ",
		Name:          "MUSAA",
		Color:         "RED",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ABC123", first.ChassisNumber)
	assert.NotZero(t, first.ID)

	second, created, err := records.Upsert(ctx, domain.CapturedRecord{
		ChassisNumber: "ABC123",
		Name:          "MUSAA KHAN",
		Color:         "BLACK",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	got, err := records.GetByChassis(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "MUSAA KHAN", got.Name)
	assert.Equal(t, "BLACK", got.Color)

	all, err := records.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecordStore_UpsertRequiresChassis(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, _, err := store.RecordStore().Upsert(context.Background(), domain.CapturedRecord{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrMissingChassis)
}

func TestRecordStore_GetByChassis_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.RecordStore().GetByChassis(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_ListOrderAndSoftDelete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	store.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	records := store.RecordStore()
	ctx := context.Background()

	for _, chassis := range []string{"A1", "B2", "C3"} {
		_, _, err := records.Upsert(ctx, domain.CapturedRecord{ChassisNumber: chassis})
		require.NoError(t, err)
	}
	require.NoError(t, records.SoftDelete(ctx, "b2"))

	visible, err := records.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "C3", visible[0].ChassisNumber)
	assert.Equal(t, "A1", visible[1].ChassisNumber)

	all, err := records.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "B2", all[0].ChassisNumber)
	assert.True(t, all[0].Deleted)

	assert.ErrorIs(t, records.SoftDelete(ctx, "ZZZ"), domain.ErrNotFound)
}

func TestRecordStore_UpsertRevivesSoftDeleted(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	records := store.RecordStore()
	ctx := context.Background()

	_, _, err := records.Upsert(ctx, domain.CapturedRecord{ChassisNumber: "A1"})
	require.NoError(t, err)
	require.NoError(t, records.SoftDelete(ctx, "A1"))

	rec, created, err := records.Upsert(ctx, domain.CapturedRecord{ChassisNumber: "A1", Model: "CD70"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.False(t, rec.Deleted)

	got, err := records.GetByChassis(ctx, "A1")
	require.NoError(t, err)
	assert.False(t, got.Deleted)
	assert.Equal(t, "CD70", got.Model)
}

func TestRecordStore_DeleteAndPurge(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	records := store.RecordStore()
	ctx := context.Background()

	for _, chassis := range []string{"A1", "B2", "C3"} {
		_, _, err := records.Upsert(ctx, domain.CapturedRecord{ChassisNumber: chassis})
		require.NoError(t, err)
	}
	require.NoError(t, records.Delete(ctx, "A1"))
	require.NoError(t, records.SoftDelete(ctx, "B2"))
	require.NoError(t, records.SoftDelete(ctx, "C3"))

	n, err := records.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := records.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all)

	// Deleting an absent record is not an error.
	assert.NoError(t, records.Delete(ctx, "A1"))
}
