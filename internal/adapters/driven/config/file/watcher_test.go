package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

func TestCaptureConfigWatcher_ReloadsOnChange(t *testing.T) {
	store, err := NewCaptureConfigStore(t.TempDir())
	require.NoError(t, err)
	_, err = store.Load()
	require.NoError(t, err)

	w := NewCaptureConfigWatcher(store)
	w.settle = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan domain.CaptureConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(cfg domain.CaptureConfig) { changes <- cfg })
	}()

	// Give the watcher time to register.
	time.Sleep(50 * time.Millisecond)

	cfg := domain.DefaultCaptureConfig()
	cfg.DebounceMS = 900
	require.NoError(t, store.Save(cfg))

	select {
	case got := <-changes:
		assert.Equal(t, 900, got.DebounceMS)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestCaptureConfigWatcher_IgnoresOtherFilesAndBadJSON(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCaptureConfigStore(dir)
	require.NoError(t, err)
	_, err = store.Load()
	require.NoError(t, err)

	w := NewCaptureConfigWatcher(store)
	w.settle = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan domain.CaptureConfig, 4)
	go func() { _ = w.Watch(ctx, func(cfg domain.CaptureConfig) { changes <- cfg }) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0600))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{broken"), 0600))

	select {
	case <-changes:
		t.Fatal("unexpected reload")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestCaptureConfigWatcher_MissingDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCaptureConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	err = NewCaptureConfigWatcher(store).Watch(context.Background(), func(domain.CaptureConfig) {})
	assert.Error(t, err)
}
