package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Submit queued invoices to FBR",
	Long: `Drains the PENDING invoice queue to FBR in insertion order.
Without a subcommand a single cycle is run.`,
	RunE: runSyncOnce,
}

var syncOnceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single sync cycle and exit",
	RunE:  runSyncOnce,
}

var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the background sync loop until interrupted",
	Long: `Runs sync cycles continuously. While online a cycle runs every online
interval; while offline the wait grows by the backoff factor up to the
configured maximum. Press Ctrl+C to stop.`,
	RunE: runSyncLoop,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show invoice queue counts",
	RunE:  runSyncStatus,
}

func init() {
	syncCmd.AddCommand(syncOnceCmd)
	syncCmd.AddCommand(syncRunCmd)
	syncCmd.AddCommand(syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSyncOnce(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	cmd.Println("Synchronising pending invoices...")

	result, err := syncService.TriggerNow(cmd.Context())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printCycleResult(cmd, result)
	return nil
}

func runSyncLoop(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	syncService.SetStatusObserver(func(online bool, pending int) {
		cmd.Printf("%s  %d pending\n", onlineLabel(online), pending)
	})

	if err := syncService.Start(ctx); err != nil {
		return fmt.Errorf("starting sync: %w", err)
	}
	cmd.Println("Sync loop running. Press Ctrl+C to stop.")

	<-ctx.Done()

	if err := syncService.Stop(); err != nil {
		return fmt.Errorf("stopping sync: %w", err)
	}
	cmd.Println("Sync loop stopped.")
	return nil
}

func runSyncStatus(cmd *cobra.Command, _ []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}

	invoices, err := invoiceService.List(cmd.Context(), "")
	if err != nil {
		return fmt.Errorf("failed to list invoices: %w", err)
	}

	counts := make(map[domain.InvoiceStatus]int)
	for i := range invoices {
		counts[invoices[i].Status]++
	}

	cmd.Println("Invoice Queue")
	cmd.Println("=============")
	cmd.Printf("  Pending: %d\n", counts[domain.InvoiceStatusPending])
	cmd.Printf("  Synced:  %d\n", counts[domain.InvoiceStatusSynced])
	cmd.Printf("  Failed:  %d\n", counts[domain.InvoiceStatusFailed])

	if syncService != nil {
		status := syncService.Status()
		if status.Running {
			cmd.Printf("  Engine:  running (%s)\n", status.State)
		}
	}
	return nil
}

func printCycleResult(cmd *cobra.Command, r domain.CycleResult) {
	switch {
	case !r.Online:
		cmd.Printf("Offline: %d invoices left pending.\n", r.Pending)
	case r.Aborted:
		cmd.Printf("Sync interrupted: %d synced, %d still pending.\n", r.Synced, r.Pending)
	default:
		cmd.Printf("Synced %d, retried %d, failed %d in %s.\n",
			r.Synced, r.Retried, r.Failed, r.Duration.Round(time.Millisecond))
	}
}
