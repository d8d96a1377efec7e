package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "dealer-capture-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	dbPath := filepath.Join(tempDir, DatabaseFile)
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "nested", "path", "to", "db")
	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	for _, table := range []string{"captured_records", "invoices"} {
		var exists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.Equal(t, 1, exists, "table %s should exist", table)
	}
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStore_Close(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

func TestStore_InterfaceGetters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NotNil(t, store.RecordStore())
	assert.NotNil(t, store.InvoiceQueue())
}

func TestFormatParseTime(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 800, time.UTC)
	assert.True(t, ts.Equal(parseTime(formatTime(ts))))
	assert.True(t, parseTime("garbage").IsZero())
}

func TestLoadMigrations(t *testing.T) {
	tests := []struct {
		name     string
		fsys     fstest.MapFS
		versions []int
		wantErr  string
	}{
		{
			name: "numeric order, down files ignored",
			fsys: fstest.MapFS{
				"010_late.up.sql":    {Data: []byte("SELECT 10;")},
				"002_next.up.sql":    {Data: []byte("SELECT 2;")},
				"002_next.down.sql":  {Data: []byte("SELECT -2;")},
				"001_initial.up.sql": {Data: []byte("SELECT 1;")},
			},
			versions: []int{1, 2, 10},
		},
		{
			name:     "empty",
			fsys:     fstest.MapFS{},
			versions: []int{},
		},
		{
			name:    "unnumbered",
			fsys:    fstest.MapFS{"initial.up.sql": {Data: []byte("SELECT 1;")}},
			wantErr: "positive version",
		},
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"003_a.up.sql": {Data: []byte("SELECT 1;")},
				"003_b.up.sql": {Data: []byte("SELECT 2;")},
			},
			wantErr: "share version 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, err := loadMigrations(tt.fsys)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			got := make([]int, 0, len(steps))
			for _, m := range steps {
				got = append(got, m.version)
			}
			assert.Equal(t, tt.versions, got)
		})
	}
}

func TestMigrate_AppliesOnlyNewSteps(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	extra := fstest.MapFS{
		"001_initial.up.sql": {Data: []byte("this would fail if re-run")},
		"002_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY);")},
	}
	require.NoError(t, store.migrate(extra))

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	broken := fstest.MapFS{"003_bad.up.sql": {Data: []byte("CREATE TABLE (;")}}
	require.Error(t, store.migrate(broken))
	version, err = store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, version, "failed step is not recorded")
}
