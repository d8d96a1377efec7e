package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// Ensure CaptureConfigWatcher implements the interface.
var _ driven.CaptureConfigWatcher = (*CaptureConfigWatcher)(nil)

// DefaultSettle is how long the watcher waits for a burst of writes to finish.
const DefaultSettle = 100 * time.Millisecond

// CaptureConfigWatcher reloads the capture configuration when its file changes.
//
// The directory is watched rather than the file because saves replace the
// file by rename, which would orphan a watch on the old inode.
type CaptureConfigWatcher struct {
	store  *CaptureConfigStore
	settle time.Duration
}

// NewCaptureConfigWatcher creates a watcher over store's file.
func NewCaptureConfigWatcher(store *CaptureConfigStore) *CaptureConfigWatcher {
	return &CaptureConfigWatcher{store: store, settle: DefaultSettle}
}

// Watch blocks until ctx is done. Each settled change is reloaded and passed
// to onChange; a file that fails to parse is logged and skipped.
func (w *CaptureConfigWatcher) Watch(ctx context.Context, onChange func(domain.CaptureConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(w.store.Path())
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !relevant(event.Op) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.settle)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.settle)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			cfg, err := w.store.Load()
			if err != nil {
				logger.Warn("capture config reload failed: %v", err)
				continue
			}
			logger.Info("capture config reloaded from %s", target)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("capture config watcher: %v", err)
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create)
}
