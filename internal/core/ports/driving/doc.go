// Package driving defines what the CLI and the monitor may ask of the core.
//
//   - CaptureService: one browser capture session at a time
//   - SyncService: the background drain loop and on-demand cycles
//   - RecordService / InvoiceService: captured records and the invoice queue
//   - SettingsService: resolved settings and the few operator-editable ones
//
// internal/core/services implements every interface here.
package driving
