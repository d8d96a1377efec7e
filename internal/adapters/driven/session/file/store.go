// Package file persists the capture session document as JSON on disk.
//
// Every save writes a temp file in the target directory and renames it over
// the document, so readers only ever see a complete document.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// Default write retry policy.
const (
	DefaultAttempts   = 3
	DefaultRetryDelay = 50 * time.Millisecond
)

// SessionStore is a file-backed driven.SessionStore.
type SessionStore struct {
	mu         sync.Mutex
	path       string
	attempts   int
	retryDelay time.Duration

	// write is swapped in tests to simulate rename contention.
	write func(path string, data []byte) error
}

// NewSessionStore creates a store for the document at path.
// The parent directory is created if missing.
func NewSessionStore(path string) (*SessionStore, error) {
	if path == "" {
		return nil, fmt.Errorf("session path: %w", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	return &SessionStore{
		path:       path,
		attempts:   DefaultAttempts,
		retryDelay: DefaultRetryDelay,
		write:      writeAtomic,
	}, nil
}

// Path returns the document location.
func (s *SessionStore) Path() string {
	return s.path
}

// Load reads the document. A missing or empty file yields an empty document.
func (s *SessionStore) Load(_ context.Context) (*domain.SessionDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewSessionDocument(), nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if len(data) == 0 {
		return domain.NewSessionDocument(), nil
	}

	doc := domain.NewSessionDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	if doc.Pages == nil {
		doc.Pages = make(map[string]*domain.PageRecord)
	}
	return doc, nil
}

// Save replaces the stored document, retrying a failed write with a
// doubling delay up to the attempt budget.
func (s *SessionStore) Save(ctx context.Context, doc *domain.SessionDocument) error {
	if doc == nil {
		doc = domain.NewSessionDocument()
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delay := s.retryDelay
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if lastErr = s.write(s.path, data); lastErr == nil {
			return nil
		}
		if attempt == s.attempts {
			break
		}
		logger.Debug("session write attempt %d/%d failed: %v", attempt, s.attempts, lastErr)
		select {
		case <-ctx.Done():
			return fmt.Errorf("writing session: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("writing session after %d attempts: %w", s.attempts, lastErr)
}

// writeAtomic writes data to a temp file beside path, syncs it and renames
// it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
