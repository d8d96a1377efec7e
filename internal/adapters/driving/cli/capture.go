package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

var captureWithSync bool

var captureCmd = &cobra.Command{
	Use:   "capture [url]",
	Short: "Open the portal and capture form entries",
	Long: `Launches a browser on the dealer portal and records what is typed into the
customer and vehicle forms. Each saved form becomes a captured record keyed
by chassis number.

The URL defaults to the configured portal URL. The session ends when every
browser page is closed or on Ctrl+C. Edits to capture_config.json are picked
up for the next session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().BoolVar(&captureWithSync, "sync", true, "drain the invoice queue in the background while capturing")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	if captureService == nil {
		return errors.New("capture service not configured")
	}

	url, err := portalURL(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	captureService.SetStatusObserver(newCapturePrinter(cmd))

	if watcher := configWatcher; watcher != nil {
		apply := captureService.ApplyConfig
		go func() {
			if err := watcher.Watch(ctx, apply); err != nil && ctx.Err() == nil {
				logger.Warn("capture config watcher stopped: %v", err)
			}
		}()
	}

	if captureWithSync && syncService != nil {
		syncService.SetStatusObserver(func(online bool, pending int) {
			logger.Info("sync: %s, %d pending", onlineLabel(online), pending)
		})
		if err := syncService.Start(ctx); err != nil {
			return fmt.Errorf("starting sync: %w", err)
		}
		defer func() {
			if err := syncService.Stop(); err != nil {
				logger.Warn("stopping sync: %v", err)
			}
		}()
	}

	if err := captureService.Start(ctx, url); err != nil {
		return fmt.Errorf("starting capture: %w", err)
	}
	defer func() {
		if err := captureService.Stop(); err != nil {
			logger.Warn("stopping capture: %v", err)
		}
	}()

	cmd.Printf("Capturing from %s\n", url)
	cmd.Println("Close the browser or press Ctrl+C to finish.")

	if err := captureService.Wait(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("capture session: %w", err)
	}

	cmd.Println("Capture session ended.")
	return nil
}

// portalURL returns the URL argument or the configured portal URL.
func portalURL(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return "", fmt.Errorf("failed to get settings: %w", err)
		}
		if settings.Capture.PortalURL != "" {
			return settings.Capture.PortalURL, nil
		}
	}
	return "", fmt.Errorf("%w: no portal URL, pass one or run 'dealer-capture config set-portal'",
		domain.ErrInvalidInput)
}

// newCapturePrinter returns an observer that prints stored submissions and
// pipeline errors once each. Observation counts change too often to print.
func newCapturePrinter(cmd *cobra.Command) func(domain.CaptureStatus) {
	var (
		mu        sync.Mutex
		lastSaved string
		lastError string
	)
	return func(s domain.CaptureStatus) {
		mu.Lock()
		defer mu.Unlock()

		if s.LastSubmission != "" && s.LastSubmission != lastSaved {
			lastSaved = s.LastSubmission
			cmd.Printf("Captured record for chassis %s\n", s.LastSubmission)
		}
		if s.LastError != "" && s.LastError != lastError {
			cmd.Printf("Capture error: %s\n", s.LastError)
		}
		lastError = s.LastError
	}
}

func onlineLabel(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}
