// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SessionStore: durable session document (temp file + atomic rename)
//   - CapturedRecordStore: one record per chassis
//   - InvoiceQueue: FIFO queue of invoices with per-item commits
//   - InvoiceSubmitter: the FBR submit capability
//   - ConnectivityProbe: reachability check
//   - BrowserDriver / BrowserSession: browser automation
//   - ConfigStore / CaptureConfigStore: configuration persistence
//
// # Optional Interfaces
//
//   - CaptureConfigWatcher: reloads capture configuration on file change
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
