// Package tui provides the terminal sync monitor for dealer-capture.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driving"
)

// Ports aggregates the driving ports the monitor reads from.
type Ports struct {
	// Sync provides the engine status and out-of-band cycles.
	Sync driving.SyncService

	// Invoices provides per-status queue counts. Optional.
	Invoices driving.InvoiceService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Sync == nil {
		return ErrMissingSyncService
	}
	return nil
}
