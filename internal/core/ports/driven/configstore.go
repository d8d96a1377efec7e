package driven

import (
	"context"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// ConfigStore holds the operator's stored settings. Values come back as
// decoded (TOML numbers may be int64 or float64); the settings service
// coerces them.
type ConfigStore interface {
	// Value returns the stored value for key and whether it is set.
	Value(key domain.SettingKey) (any, bool)

	// Put stores a value and persists it before returning.
	Put(key domain.SettingKey, value any) error

	// Unset removes a stored value. Unsetting a missing key is a no-op.
	Unset(key domain.SettingKey) error

	// Reload discards in-memory values and reads storage again.
	Reload() error

	// Path identifies where settings are stored.
	Path() string
}

// CaptureConfigStore persists the JSON capture configuration.
type CaptureConfigStore interface {
	// Load reads the configuration, writing defaults first if no file exists.
	Load() (domain.CaptureConfig, error)

	// Save writes the configuration.
	Save(cfg domain.CaptureConfig) error

	// Path returns the configuration file path.
	Path() string
}

// CaptureConfigWatcher notifies when the capture configuration file changes.
type CaptureConfigWatcher interface {
	// Watch blocks until ctx is done, calling onChange with each reloaded config.
	Watch(ctx context.Context, onChange func(domain.CaptureConfig)) error
}
