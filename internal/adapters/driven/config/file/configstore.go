package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFile is the settings file name inside the config directory.
const ConfigFile = "config.toml"

// ConfigStore keeps settings in a TOML file with one table per key prefix:
// "fbr.pos_id" is written as pos_id under [fbr]. Entries it does not know
// about are kept on rewrite so hand edits survive.
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	tables map[string]map[string]any
}

// NewConfigStore opens configDir/config.toml, creating the directory.
// An empty configDir means ~/.dealer-capture.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		configDir = filepath.Join(home, ".dealer-capture")
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(configDir, ConfigFile)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Value(key domain.SettingKey) (any, bool) {
	table, name, err := splitKey(key)
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.tables[table][name]
	return v, ok
}

// Put stores value and rewrites the file. On a write failure the previous
// value is restored so memory and disk agree.
func (s *ConfigStore) Put(key domain.SettingKey, value any) error {
	if value == nil {
		return s.Unset(key)
	}
	table, name, err := splitKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tables[table] == nil {
		s.tables[table] = make(map[string]any)
	}
	prev, had := s.tables[table][name]
	s.tables[table][name] = value
	if err := s.writeLocked(); err != nil {
		if had {
			s.tables[table][name] = prev
		} else {
			delete(s.tables[table], name)
		}
		return err
	}
	return nil
}

func (s *ConfigStore) Unset(key domain.SettingKey) error {
	table, name, err := splitKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[table][name]; !ok {
		return nil
	}
	prev := s.tables[table][name]
	delete(s.tables[table], name)
	if err := s.writeLocked(); err != nil {
		s.tables[table][name] = prev
		return err
	}
	return nil
}

// Reload reads the file again. A missing file is an empty configuration.
func (s *ConfigStore) Reload() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		raw, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}

	tables := make(map[string]map[string]any, len(doc))
	for name, v := range doc {
		t, ok := v.(map[string]any)
		if !ok {
			logger.Warn("config: ignoring top-level key %q in %s", name, s.path)
			continue
		}
		tables[name] = t
	}

	s.mu.Lock()
	s.tables = tables
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}

// writeLocked serialises every table. Callers hold s.mu.
func (s *ConfigStore) writeLocked() error {
	doc := make(map[string]any, len(s.tables))
	for name, t := range s.tables {
		if len(t) > 0 {
			doc[name] = t
		}
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// splitKey separates "table.name". Both parts must be non-empty.
func splitKey(key domain.SettingKey) (table, name string, err error) {
	table, name, ok := strings.Cut(key.String(), ".")
	if !ok || table == "" || name == "" {
		return "", "", fmt.Errorf("%w: setting key %q", domain.ErrInvalidInput, key)
	}
	return table, name, nil
}
