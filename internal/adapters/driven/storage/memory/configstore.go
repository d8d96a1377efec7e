package memory

import (
	"sync"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Nothing survives the process.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[domain.SettingKey]any
}

// NewConfigStore creates a config store seeded with initial, which may be nil.
func NewConfigStore(initial ...map[domain.SettingKey]any) *ConfigStore {
	s := &ConfigStore{values: make(map[domain.SettingKey]any)}
	for _, m := range initial {
		for k, v := range m {
			s.values[k] = v
		}
	}
	return s
}

func (s *ConfigStore) Value(key domain.SettingKey) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) Put(key domain.SettingKey, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *ConfigStore) Unset(key domain.SettingKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Reload is a no-op; the map is the only copy.
func (s *ConfigStore) Reload() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }
