// Package sqlite provides a SQLite-backed implementation of the driven
// storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It implements two store
// interfaces through a single database connection:
//
//   - DocumentStore: Document and chunk persistence
//   - QueryHistoryStore: Append-only search history persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Embeddings are stored as little-endian float32 blobs
// alongside each chunk so the corpus survives a restart without re-embedding.
//
// # Data Location
//
// By default, the database is stored at ~/.quarry/data/quarry.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
