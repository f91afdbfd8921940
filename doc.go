// Package swiftnote is the composition root for SwiftNote, a local,
// single-user note store.
//
// It connects the core domain (Store and session cache) with the storage
// adapters using the hexagonal layout of pkg/core and pkg/adapters.
//
// Adapters:
//
//   - sqlite (default): a single swiftnote.db file, schema managed by migrations.
//   - fs: one Markdown file with YAML frontmatter per note, optional git
//     versioning and a change watcher.
//   - memory: process-local, for tests and throwaway sessions.
//
// Usage:
//
//	store, err := swiftnote.New("./notes", swiftnote.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	notes := swiftnote.NewSession(store, logger)
//	if err := notes.Load(ctx); err != nil {
//		return err
//	}
//	n, err := notes.Add(ctx, swiftnote.Draft{Title: "Groceries", Content: "Milk"})
package swiftnote
