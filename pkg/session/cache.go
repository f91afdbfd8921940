// Package session holds the in-memory, recency-ordered view of notes that a
// user interface reads from. Every mutation goes through the Store and is then
// reconciled into the snapshot, so the view never needs a full reload to stay
// consistent with what was persisted.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/swiftnote/pkg/core"
)

// NoteStore is the subset of core.Store the cache depends on.
type NoteStore interface {
	ListAll(ctx context.Context) ([]core.Note, error)
	Create(ctx context.Context, d core.Draft) (core.Note, error)
	Apply(ctx context.Context, id int64, p core.Patch) (core.Note, error)
	Delete(ctx context.Context, id int64) error
}

// Status is the lifecycle state of the cache as a whole.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Cache is the session cache. It is safe for concurrent use; when mutations
// race, the snapshot reflects the one that completed last.
type Cache struct {
	store  NoteStore
	logger *slog.Logger

	mu      sync.RWMutex
	notes   []core.Note
	status  Status
	loading bool
	lastErr string
	query   string
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger for the cache.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty, uninitialized cache over store.
func New(store NoteStore, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the snapshot with every stored note, newest first.
// On failure the previous snapshot is kept and the error is recorded.
func (c *Cache) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.status = StatusLoading
	c.mu.Unlock()

	notes, err := c.store.ListAll(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.status = StatusError
		return c.fail("load notes", err)
	}

	sortByRecency(notes)
	c.notes = notes
	c.lastErr = ""
	c.status = StatusReady
	c.logger.Debug("snapshot loaded", "notes", len(notes))
	return nil
}

// Add creates a note through the store and inserts it into the snapshot.
// The created note is returned so the caller can select it.
func (c *Cache) Add(ctx context.Context, d core.Draft) (core.Note, error) {
	n, err := c.store.Create(ctx, d)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		return core.Note{}, c.fail("create note", err)
	}

	c.notes = append(c.notes, n)
	sortByRecency(c.notes)
	return n, nil
}

// Edit updates a note through the store, then replaces the matching snapshot
// entry with the persisted result and re-sorts. A note the snapshot does not
// hold is left out of it until the next Load.
func (c *Cache) Edit(ctx context.Context, id int64, p core.Patch) error {
	n, err := c.store.Apply(ctx, id, p)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		return c.fail("update note", err)
	}

	if replace(c.notes, n) {
		sortByRecency(c.notes)
	}
	return nil
}

// Remove deletes a note through the store and drops it from the snapshot
// whether or not it was present.
func (c *Cache) Remove(ctx context.Context, id int64) error {
	err := c.store.Delete(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		return c.fail("delete note", err)
	}

	c.notes = slices.DeleteFunc(c.notes, func(n core.Note) bool { return n.ID == id })
	return nil
}

// Search narrows the visible notes to those matching query and returns them.
// The snapshot itself is untouched; Search("") restores the full view.
func (c *Cache) Search(query string) []core.Note {
	c.mu.Lock()
	c.query = query
	c.mu.Unlock()
	return c.Notes()
}

// Query returns the active search filter.
func (c *Cache) Query() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

// Notes returns the visible notes: the snapshot filtered by the active query,
// newest first. The returned slice is a copy.
func (c *Cache) Notes() []core.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()

	visible := make([]core.Note, 0, len(c.notes))
	for _, n := range c.notes {
		if core.Matches(n, c.query) {
			visible = append(visible, n)
		}
	}
	return visible
}

// All returns a copy of the full snapshot, ignoring the active query.
func (c *Cache) All() []core.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.notes)
}

// Loading reports whether a Load is in flight.
func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// LastError returns the message of the most recent failure, or "" if none.
func (c *Cache) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Status returns the lifecycle state.
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// fail records err and returns it wrapped. Callers hold c.mu.
func (c *Cache) fail(action string, err error) error {
	wrapped := fmt.Errorf("failed to %s: %w", action, err)
	c.lastErr = wrapped.Error()
	c.logger.Warn("session operation failed", "action", action, "error", err)
	return wrapped
}
