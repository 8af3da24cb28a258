// Package database provides SQLite connection management and schema
// migrations for Grid Stat.
//
// The platform registries (config entries, devices, entities) persist
// through this package. SQLite is configured for a single writer with
// WAL mode and a busy timeout to tolerate concurrent readers.
//
// # Migrations
//
// Migration files are embedded into the binary by the top-level
// migrations package and applied on startup:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path})
//	if err != nil { ... }
//	if err := db.Migrate(ctx); err != nil { ... }
//
// Each migration runs in its own transaction; a failed migration rolls
// back alone and Migrate() can be re-run after the cause is fixed.
package database
