package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

func TestCaptureConfigStore_MissingFileWritesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewCaptureConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, CaptureConfigFile), store.Path())

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCaptureConfig(), cfg)
	assert.FileExists(t, store.Path())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCaptureConfigStore_LoadPartialFileFillsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{
  "target_domains": ["dealers.example.com"],
  "include_selectors": [],
  "unknown_key": 42,
  "login_config": {"dealer_code": "D-17", "password": "pw"}
}`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, CaptureConfigFile), []byte(content), 0600))

	store, err := NewCaptureConfigStore(tmpDir)
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)

	defaults := domain.DefaultCaptureConfig()
	assert.Equal(t, []string{"dealers.example.com"}, cfg.TargetDomains)
	assert.Empty(t, cfg.IncludeSelectors)
	assert.Equal(t, defaults.ExcludeSelectors, cfg.ExcludeSelectors)
	assert.Equal(t, defaults.DebounceMS, cfg.DebounceMS)
	assert.Equal(t, defaults.SubmitSelector, cfg.SubmitSelector)
	assert.Equal(t, defaults.OutputFile, cfg.OutputFile)
	require.NotNil(t, cfg.LoginConfig)
	assert.True(t, cfg.LoginConfig.CanPrefill())
}

func TestCaptureConfigStore_LoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, CaptureConfigFile), []byte("{oops"), 0600))

	store, err := NewCaptureConfigStore(tmpDir)
	require.NoError(t, err)

	_, err = store.Load()
	assert.Error(t, err)
}

func TestCaptureConfigStore_SaveRoundTrip(t *testing.T) {
	store, err := NewCaptureConfigStore(t.TempDir())
	require.NoError(t, err)

	cfg := domain.DefaultCaptureConfig()
	cfg.DebounceMS = 750
	cfg.TargetDomains = []string{"portal.example.com"}
	require.NoError(t, store.Save(cfg))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 750, loaded.DebounceMS)
	assert.Equal(t, []string{"portal.example.com"}, loaded.TargetDomains)
}
