package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
)

// Ensure CaptureConfigStore implements the interface.
var _ driven.CaptureConfigStore = (*CaptureConfigStore)(nil)

// CaptureConfigFile is the capture configuration file name.
const CaptureConfigFile = "capture_config.json"

// CaptureConfigStore reads and writes the JSON capture configuration.
type CaptureConfigStore struct {
	mu       sync.Mutex
	filePath string
}

// NewCaptureConfigStore creates a store for configDir/capture_config.json.
// If configDir is empty, defaults to ~/.dealer-capture.
func NewCaptureConfigStore(configDir string) (*CaptureConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".dealer-capture")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}
	return &CaptureConfigStore{filePath: filepath.Join(configDir, CaptureConfigFile)}, nil
}

// Load reads the configuration. A missing file is created with the defaults.
// Unknown keys are ignored and zero-valued keys take their defaults.
func (s *CaptureConfigStore) Load() (domain.CaptureConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		cfg := domain.DefaultCaptureConfig()
		if err := s.save(cfg); err != nil {
			return cfg, fmt.Errorf("writing default capture config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return domain.CaptureConfig{}, fmt.Errorf("reading capture config: %w", err)
	}

	var cfg domain.CaptureConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.CaptureConfig{}, fmt.Errorf("decoding capture config %s: %w", s.filePath, err)
	}
	return cfg.WithDefaults(), nil
}

// Save writes the configuration.
func (s *CaptureConfigStore) Save(cfg domain.CaptureConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(cfg)
}

func (s *CaptureConfigStore) save(cfg domain.CaptureConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding capture config: %w", err)
	}
	// Holds the portal password when login prefill is configured.
	return writeFileAtomic(s.filePath, append(data, '\n'), 0600)
}

// Path returns the configuration file path.
func (s *CaptureConfigStore) Path() string {
	return s.filePath
}
