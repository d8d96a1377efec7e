// Package messages defines Bubbletea message types for the sync monitor.
package messages

import (
	"fmt"
	"time"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// StatusPolled carries a fresh engine status snapshot.
type StatusPolled struct {
	Status domain.SyncStatus
}

// QueueCounted carries invoice counts per status.
type QueueCounted struct {
	Counts map[domain.InvoiceStatus]int
	Err    error
}

// CycleCompleted is sent when an out-of-band sync cycle returns.
type CycleCompleted struct {
	Result domain.CycleResult
	Err    error
}

// Summary renders the cycle outcome on one line.
func (c CycleCompleted) Summary() string {
	if c.Err != nil {
		return "sync failed: " + c.Err.Error()
	}
	r := c.Result
	switch {
	case r.Aborted:
		return fmt.Sprintf("sync aborted after %d synced", r.Synced)
	case !r.Online:
		return fmt.Sprintf("offline, %d pending", r.Pending)
	default:
		return fmt.Sprintf("%d synced, %d retried, %d failed in %s",
			r.Synced, r.Retried, r.Failed, r.Duration.Round(time.Millisecond))
	}
}
