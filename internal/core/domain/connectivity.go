package domain

import "time"

// ConnectivityState is the sync engine's view of the network.
type ConnectivityState string

// Connectivity states. UNKNOWN is only the initial state.
const (
	ConnectivityUnknown ConnectivityState = "UNKNOWN"
	ConnectivityOnline  ConnectivityState = "ONLINE"
	ConnectivityOffline ConnectivityState = "OFFLINE"
)

// String returns the string representation.
func (s ConnectivityState) String() string {
	return string(s)
}

// SyncStatus is the display tuple exposed to the UI.
type SyncStatus struct {
	// Online is true when the last probe succeeded.
	Online bool

	// Pending is the number of PENDING invoices.
	Pending int

	// State is the connectivity state.
	State ConnectivityState

	// Running is true while the background loop is active.
	Running bool

	// CycleInProgress is true while a cycle holds the cycle lock.
	CycleInProgress bool

	// LastCycle is when the last cycle finished.
	LastCycle time.Time

	// NextWait is the wait scheduled after the last loop cycle.
	NextWait time.Duration
}

// CycleResult summarises one sync cycle.
type CycleResult struct {
	Online   bool
	Pending  int
	Synced   int
	Retried  int
	Failed   int
	Aborted  bool
	Duration time.Duration
}
