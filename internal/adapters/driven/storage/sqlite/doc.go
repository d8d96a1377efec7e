// Package sqlite provides the SQLite-backed record store and invoice queue.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements two store interfaces
// through a single database connection:
//
//   - CapturedRecordStore: captured customer/vehicle records keyed by chassis number
//   - InvoiceQueue: the FIFO queue of invoices awaiting FBR sync
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.dealer-capture/data/dealer.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Every queue mutation commits on its own.
package sqlite
