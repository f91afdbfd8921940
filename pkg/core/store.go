package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store is the durable CRUD layer over a Repository.
// It is constructed once at startup and shared by reference; the backend is
// opened on first use and the same handle is reused for the life of the Store.
type Store struct {
	repo     Repository
	now      func() time.Time
	logger   *slog.Logger
	readOnly bool

	inits singleflight.Group

	mu           sync.RWMutex
	ready        bool
	initAttempts int
	lastInitErr  error
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for stamping notes.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReadOnly rejects every mutation with ErrReadOnly.
func WithReadOnly(enabled bool) StoreOption {
	return func(s *Store) {
		s.readOnly = enabled
	}
}

// NewStore creates a Store over repo. No I/O happens until the first call.
func NewStore(repo Repository, opts ...StoreOption) *Store {
	s := &Store{
		repo:   repo,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize opens the backend and sets up its schema.
// It is idempotent once it has succeeded. Concurrent callers share a single
// attempt, so the backend is never opened twice. A failed attempt is reported
// as ErrStorageUnavailable and the next call tries again.
func (s *Store) Initialize(ctx context.Context) error {
	if s.initialized() {
		return nil
	}

	_, err, _ := s.inits.Do("init", func() (any, error) {
		if s.initialized() {
			return nil, nil
		}

		err := s.repo.Initialize(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.initAttempts++
		s.lastInitErr = err
		if err != nil {
			s.logger.Error("backend initialization failed", "error", err, "attempt", s.initAttempts)
			return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		s.ready = true
		s.logger.Debug("backend initialized", "attempt", s.initAttempts)
		return nil, nil
	})
	return err
}

func (s *Store) initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// ListAll returns every stored note, unordered.
func (s *Store) ListAll(ctx context.Context) ([]Note, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// GetByID returns the note with the given id.
// A missing id is reported through the boolean, never as an error.
func (s *Store) GetByID(ctx context.Context, id int64) (Note, bool, error) {
	if err := s.Initialize(ctx); err != nil {
		return Note{}, false, err
	}
	n, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Note{}, false, nil
	}
	if err != nil {
		return Note{}, false, fmt.Errorf("failed to get note %d: %w", id, err)
	}
	return n, true, nil
}

// Create persists a new note and returns it with its assigned id.
// An empty title is stored as Untitled; both timestamps are set to now.
func (s *Store) Create(ctx context.Context, d Draft) (Note, error) {
	if s.readOnly {
		return Note{}, ErrReadOnly
	}
	if err := s.Initialize(ctx); err != nil {
		return Note{}, err
	}

	now := s.stamp(time.Time{})
	n := Note{
		Title:     NormalizeTitle(d.Title),
		Content:   d.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.Insert(ctx, n)
	if err != nil {
		return Note{}, fmt.Errorf("failed to create note: %w", err)
	}
	n.ID = id

	s.logger.Debug("note created", "id", id, "title", n.Title)
	return n, nil
}

// Update merges p over the stored note and stamps UpdatedAt.
// It fails with ErrNotFound when id does not exist.
func (s *Store) Update(ctx context.Context, id int64, p Patch) error {
	_, err := s.Apply(ctx, id, p)
	return err
}

// Apply is Update returning the merged note exactly as persisted.
func (s *Store) Apply(ctx context.Context, id int64, p Patch) (Note, error) {
	if s.readOnly {
		return Note{}, ErrReadOnly
	}
	if err := s.Initialize(ctx); err != nil {
		return Note{}, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Note{}, fmt.Errorf("failed to update note %d: %w", id, err)
	}

	merged := p.Merge(existing)
	merged.ID = id
	merged.UpdatedAt = s.stamp(existing.UpdatedAt)

	if err := s.repo.Put(ctx, merged); err != nil {
		return Note{}, fmt.Errorf("failed to update note %d: %w", id, err)
	}

	s.logger.Debug("note updated", "id", id)
	return merged, nil
}

// Delete removes the note. Deleting a missing id succeeds.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	s.logger.Debug("note deleted", "id", id)
	return nil
}

// Search returns the notes whose title or content contains query.
func (s *Store) Search(ctx context.Context, query string) ([]Note, error) {
	notes, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]Note, 0, len(notes))
	for _, n := range notes {
		if Matches(n, query) {
			matched = append(matched, n)
		}
	}
	return matched, nil
}

// ListByIndex scans one of the named secondary indexes.
func (s *Store) ListByIndex(ctx context.Context, index string, r Range) ([]Note, error) {
	if !ValidIndex(index) {
		return nil, fmt.Errorf("unknown index %q", index)
	}
	idx, ok := s.repo.(Indexed)
	if !ok {
		return nil, fmt.Errorf("index %s: %w", index, ErrUnsupported)
	}
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return idx.ListByIndex(ctx, index, r)
}

// Watch observes changes in the backend if supported.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, fmt.Errorf("watch: %w", ErrUnsupported)
	}
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return w.Watch(ctx, pattern)
}

// Close releases the backend when it holds OS resources (a database handle).
func (s *Store) Close() error {
	if c, ok := s.repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// stamp returns the current UTC time, bumped past prev so that successive
// edits always move UpdatedAt forward.
func (s *Store) stamp(prev time.Time) time.Time {
	t := s.now().UTC()
	if !prev.IsZero() && !t.After(prev) {
		t = prev.Add(time.Nanosecond)
	}
	return t
}
