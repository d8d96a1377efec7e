// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML application settings, one table per key prefix
//   - CaptureConfigStore: JSON capture configuration, created with defaults when missing
//   - CaptureConfigWatcher: reloads the capture configuration when the file changes
package file
