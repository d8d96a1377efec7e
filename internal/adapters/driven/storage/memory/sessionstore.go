package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore keeps the session document in memory.
type SessionStore struct {
	mu    sync.RWMutex
	doc   *domain.SessionDocument
	saves int
	err   error
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{doc: domain.NewSessionDocument()}
}

// Load returns a copy of the stored document.
func (s *SessionStore) Load(_ context.Context) (*domain.SessionDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), nil
}

// Save replaces the stored document with a copy of doc.
func (s *SessionStore) Save(_ context.Context, doc *domain.SessionDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.doc = doc.Clone()
	s.saves++
	return nil
}

// Path returns the storage location.
func (s *SessionStore) Path() string {
	return ":memory:"
}

// SetSaveError makes every later Save fail with err. Nil clears it.
func (s *SessionStore) SetSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Saves returns the number of successful saves.
func (s *SessionStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
