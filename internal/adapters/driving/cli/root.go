// Package cli provides the cobra command tree for dealer-capture.
// It is a driving adapter: commands call into core services through the
// driving ports and never touch storage directly.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driving"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// skipInitAnnotation marks commands that run without wiring services.
const skipInitAnnotation = "skipInit"

// Options are the global flags passed to the initializer.
type Options struct {
	Verbose   bool
	DataDir   string
	ConfigDir string
}

// Services holds everything the commands call into.
type Services struct {
	Capture       driving.CaptureService
	Sync          driving.SyncService
	Records       driving.RecordService
	Invoices      driving.InvoiceService
	Settings      driving.SettingsService
	CaptureConfig driven.CaptureConfigStore
	ConfigWatcher driven.CaptureConfigWatcher
}

// Initializer builds the services for one invocation. The returned cleanup
// runs after the command finishes.
type Initializer func(opts Options) (*Services, func(), error)

var (
	captureService     driving.CaptureService
	syncService        driving.SyncService
	recordService      driving.RecordService
	invoiceService     driving.InvoiceService
	settingsService    driving.SettingsService
	captureConfigStore driven.CaptureConfigStore
	configWatcher      driven.CaptureConfigWatcher

	initializer Initializer
	cleanup     func()
	opts        Options
)

var rootCmd = &cobra.Command{
	Use:   "dealer-capture",
	Short: "Capture dealership sales from the FBR portal and sync invoices",
	Long: `dealer-capture opens the dealer portal in a browser, records the customer
and vehicle details entered into its forms, and keeps a local queue of FBR
invoices that is drained in the background whenever the network is up.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "print debug and info logs")
	flags.StringVar(&opts.DataDir, "data-dir", "", "directory for the database and session file (default ~/.dealer-capture/data)")
	flags.StringVar(&opts.ConfigDir, "config-dir", "", "directory for config.toml and capture_config.json (default ~/.dealer-capture)")
}

// SetServices installs services directly, bypassing the initializer.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	captureService = s.Capture
	syncService = s.Sync
	recordService = s.Records
	invoiceService = s.Invoices
	settingsService = s.Settings
	captureConfigStore = s.CaptureConfig
	configWatcher = s.ConfigWatcher
}

// SetInitializer registers the function that wires services from the
// global flags before each command runs.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// Execute runs the root command and releases whatever the initializer opened.
func Execute() error {
	defer runCleanup()
	return rootCmd.Execute()
}

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)

	if initializer == nil || cmd.Annotations[skipInitAnnotation] == "true" {
		return nil
	}

	s, done, err := initializer(opts)
	if err != nil {
		return err
	}
	SetServices(s)
	cleanup = done
	return nil
}

func runCleanup() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}
