package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dealer-capture/internal/adapters/driving/cli"
	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

func TestInitialize(t *testing.T) {
	configDir := t.TempDir()
	dataDir := t.TempDir()

	svc, cleanup, err := initialize(cli.Options{ConfigDir: configDir, DataDir: dataDir})
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	defer cleanup()

	assert.NotNil(t, svc.Capture)
	assert.NotNil(t, svc.Sync)
	assert.NotNil(t, svc.Records)
	assert.NotNil(t, svc.Invoices)
	assert.NotNil(t, svc.Settings)
	assert.NotNil(t, svc.ConfigWatcher)
	assert.Equal(t, filepath.Join(configDir, "capture_config.json"), svc.CaptureConfig.Path())

	assert.FileExists(t, filepath.Join(configDir, "capture_config.json"))
	assert.FileExists(t, filepath.Join(dataDir, "dealer.db"))

	records, err := svc.Records.List(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, records)

	invoices, err := svc.Invoices.List(context.Background(), domain.InvoiceStatusPending)
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestInitialize_InvalidEnvironmentFallsBack(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"),
		[]byte("[fbr]\nenvironment = \"staging\"\n"), 0600))

	svc, cleanup, err := initialize(cli.Options{ConfigDir: configDir, DataDir: t.TempDir()})
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, svc.Settings.SetEnvironment(domain.EnvironmentProduction))
	settings, err := svc.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.EnvironmentProduction, settings.FBR.Environment)
}

func TestInitialize_BadConfigDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0600))

	_, _, err := initialize(cli.Options{ConfigDir: file, DataDir: t.TempDir()})

	assert.Error(t, err)
}
