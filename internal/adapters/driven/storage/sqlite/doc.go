// Package sqlite stores the published catalog as a single SQLite file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements the catalog ports:
//
//   - Builder: fills a shadow catalog file for one ingest run
//   - Publisher: atomically swaps a finished build into the published slot
//   - Reader: read-only queries against one catalog generation
//   - LiveCatalog: reference-counted readers that follow newly published files
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. The records table keeps every normalised field;
// records_fts is an FTS5 index over the searchable columns, filled once when
// the build is finished.
//
// # Data Location
//
// Within the data directory:
//
//   - catalog.db: the published generation
//   - catalog.db.bak: the previous generation, kept for one cycle
//   - catalog.db.tmp-<id>: builds in progress
//   - catalog.lock: held while a publish or rollback is in progress
//
// # Thread Safety
//
// Published files are never written in place; they are only replaced by
// rename. Readers therefore open them read-only and immutable, and many
// processes may serve the same data directory.
package sqlite
