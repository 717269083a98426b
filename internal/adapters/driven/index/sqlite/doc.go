// Package sqlite provides the vector index: in-memory similarity search
// over child-chunk embeddings, durably snapshotted to SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation.
//
// # Layout
//
// The snapshot holds two tables that together form the persisted index:
// entries (vector data plus id-to-metadata mapping) and parents (the
// id-to-parent-chunk-text mapping). They are written in one transaction
// per batch and loaded together at startup; an entry whose parent row is
// missing is discarded on load so a partially-deleted document can never
// surface in search results.
//
// # Consistency
//
// Search runs against the in-memory state under a read lock. Upserts and
// deletes take the write lock, commit the SQLite transaction, then
// mutate memory, so a concurrent search observes all of a batch or none
// of it. Loss of writes after a crash is bounded to the batch being
// flushed (at-most-once durability).
//
// # Data Location
//
// By default, the snapshot is stored at ~/.askdocs/data/index.db
package sqlite
