// Package sqlite provides the default backend: a single SQLite database file
// holding one "notes" collection.
//
// # Schema
//
// The schema is owned by goose migrations embedded in the binary. Version 1
// creates the notes table with an AUTOINCREMENT primary key, so ids are never
// reused after deletion, and three secondary indexes (by_title, by_created,
// by_updated) backing core.Indexed range scans.
//
// Timestamps are stored as Unix nanoseconds in UTC.
//
// # Concurrency
//
// The repository holds one *sql.DB with a single open connection. SQLite
// serializes writers anyway; a single connection also keeps ":memory:"
// databases coherent across calls.
//
// Typical Usage
//
//	repo := sqlite.NewRepository(sqlite.Config{DSN: "notes/swiftnote.db"})
//	store := core.NewStore(repo)
//	defer repo.Close()
package sqlite
