package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/dealer-capture/internal/adapters/driving/tui"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// isTerminal reports whether stdout is a TTY. Swapped in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// runMonitorUI runs the interactive monitor. Swapped in tests.
var runMonitorUI = tui.Run

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the sync loop with a live status view",
	Long: `Starts the background sync loop and shows connectivity, pending invoice
count and the last cycle time.

On a terminal an interactive view is shown:
  s - Sync now
  r - Refresh
  ? - Toggle help
  q - Quit

Otherwise one status line is printed after each cycle until interrupted.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := isTerminal()
	if !interactive {
		logger.SetTimestamps(true)
		defer logger.SetTimestamps(false)
		syncService.SetStatusObserver(func(online bool, pending int) {
			cmd.Printf("%s  %d pending\n", onlineLabel(online), pending)
		})
	}

	if err := syncService.Start(ctx); err != nil {
		return fmt.Errorf("starting sync: %w", err)
	}
	defer func() {
		if err := syncService.Stop(); err != nil {
			logger.Warn("stopping sync: %v", err)
		}
	}()

	if interactive {
		return runMonitorUI(ctx, &tui.Ports{Sync: syncService, Invoices: invoiceService})
	}

	<-ctx.Done()
	return nil
}
