// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Two subsystems live here and share nothing but the stores:
// the capture side (CaptureController, SessionAggregator) and the
// sync side (SyncEngine). Both are explicitly constructed and owned
// by the caller; there are no package-level singletons.
package services
