// Command dealer-capture records dealership sales entered into the dealer
// portal and submits the resulting invoices to FBR.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/dealer-capture/internal/adapters/driven/browser/playwright"
	configfile "github.com/custodia-labs/dealer-capture/internal/adapters/driven/config/file"
	"github.com/custodia-labs/dealer-capture/internal/adapters/driven/connectivity"
	"github.com/custodia-labs/dealer-capture/internal/adapters/driven/fbr"
	sessionfile "github.com/custodia-labs/dealer-capture/internal/adapters/driven/session/file"
	"github.com/custodia-labs/dealer-capture/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/dealer-capture/internal/adapters/driving/cli"
	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/services"
	"github.com/custodia-labs/dealer-capture/internal/fieldmap"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

func main() {
	cli.SetInitializer(initialize)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// initialize wires driven adapters into the core services.
func initialize(opts cli.Options) (*cli.Services, func(), error) {
	configStore, err := configfile.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		// Keep the config commands usable so the bad value can be fixed.
		logger.Warn("invalid settings, using sandbox defaults: %v", err)
		defaults := domain.ResolveSettings(domain.EnvironmentSandbox)
		settings = &defaults
	}

	captureConfigStore, err := configfile.NewCaptureConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening capture config: %w", err)
	}
	captureConfig, err := captureConfigStore.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading capture config: %w", err)
	}

	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing database: %v", err)
		}
	}

	dataDir := filepath.Dir(store.Path())
	sessionStore, err := sessionfile.NewSessionStore(filepath.Join(dataDir, captureConfig.OutputFile))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("opening session file: %w", err)
	}

	submitter, err := fbr.NewClient(fbr.ConfigFromSettings(settings.FBR))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("creating FBR client: %w", err)
	}
	probe := connectivity.NewProber(settings.Sync.ProbeEndpoints, settings.Sync.ProbeTimeout)

	records := store.RecordStore()
	queue := store.InvoiceQueue()

	aggregator := services.NewSessionAggregator(sessionStore, records, fieldmap.Default(),
		services.AggregatorOptions{DiscardInvalidSubmissions: settings.Capture.DiscardInvalidSubmissions})
	driver := playwright.NewDriver(playwright.Options{InstallDriver: true})

	return &cli.Services{
		Capture:       services.NewCaptureController(driver, aggregator, captureConfig, settings.Capture),
		Sync:          services.NewSyncEngine(queue, submitter, probe, settings.Sync),
		Records:       services.NewRecordService(records),
		Invoices:      services.NewInvoiceService(records, queue, settingsService),
		Settings:      settingsService,
		CaptureConfig: captureConfigStore,
		ConfigWatcher: configfile.NewCaptureConfigWatcher(captureConfigStore),
	}, cleanup, nil
}
