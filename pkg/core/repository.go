package core

import (
	"context"
	"time"
)

// Repository defines the contract for the local persistent key-value backend.
// Adhering to this interface keeps the core independent of the underlying
// storage engine (SQLite, Markdown files, memory).
type Repository interface {
	// Initialize opens the backend and runs schema setup (collection and indexes).
	// It is called once by the Store before any other method.
	Initialize(ctx context.Context) error

	// Insert persists a new note under a backend-generated id and returns that id.
	// Ids are monotonically assigned and never reused after deletion.
	Insert(ctx context.Context, n Note) (int64, error)

	// Get retrieves a note by id. A missing id yields ErrNotFound.
	Get(ctx context.Context, id int64) (Note, error)

	// Put overwrites the note stored under n.ID.
	Put(ctx context.Context, n Note) error

	// Delete removes a note by id. Deleting a missing id is a no-op.
	Delete(ctx context.Context, id int64) error

	// List returns every stored note in no particular order.
	List(ctx context.Context) ([]Note, error)
}

// Index names shared by all adapters.
const (
	IndexTitle   = "by-title"
	IndexCreated = "by-created"
	IndexUpdated = "by-updated"
)

// Range bounds an index scan. Zero values leave that side open.
// Title bounds apply to IndexTitle, time bounds to the timestamp indexes.
// Lower bounds are inclusive, upper bounds exclusive.
type Range struct {
	FromTitle string
	ToTitle   string
	From      time.Time
	To        time.Time
}

// Indexed is implemented by backends that maintain the named secondary indexes.
type Indexed interface {
	// ListByIndex returns the notes within r, ordered ascending by the index key.
	ListByIndex(ctx context.Context, index string, r Range) ([]Note, error)
}

// Watchable is implemented by backends that can report external changes.
type Watchable interface {
	// Watch emits an Event for every change whose path matches pattern
	// until ctx is cancelled. The channel is closed on exit.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// InRange reports whether n falls within r for the given index.
// Adapters without a native index use it to filter a full scan.
func InRange(n Note, index string, r Range) bool {
	switch index {
	case IndexTitle:
		if r.FromTitle != "" && n.Title < r.FromTitle {
			return false
		}
		if r.ToTitle != "" && n.Title >= r.ToTitle {
			return false
		}
		return true
	case IndexCreated:
		return inTimeRange(n.CreatedAt, r)
	case IndexUpdated:
		return inTimeRange(n.UpdatedAt, r)
	default:
		return false
	}
}

func inTimeRange(t time.Time, r Range) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// IndexLess orders two notes by the given index key, breaking ties by id.
func IndexLess(index string, a, b Note) bool {
	switch index {
	case IndexTitle:
		if a.Title != b.Title {
			return a.Title < b.Title
		}
	case IndexCreated:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case IndexUpdated:
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
	}
	return a.ID < b.ID
}

// ValidIndex reports whether name is one of the known index names.
func ValidIndex(name string) bool {
	switch name {
	case IndexTitle, IndexCreated, IndexUpdated:
		return true
	}
	return false
}
