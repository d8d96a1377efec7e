// Package domain defines the core business entities for the dealer capture tool.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SessionDocument: accumulated field observations for one browsing session
//   - MappedRecord: canonical fields reconciled from raw observations
//   - CapturedRecord: one persisted customer/vehicle record per chassis
//   - PendingInvoice: an FBR invoice queued for submission
//   - CaptureConfig / AppSettings: configuration with resolved defaults
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
