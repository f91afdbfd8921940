// Package memory provides a process-local backend. Notes do not survive the
// process; it exists for tests and throwaway sessions.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/swiftnote/pkg/core"
)

// Repository implements core.Repository and core.Indexed in memory.
type Repository struct {
	mu    sync.RWMutex
	notes map[int64]core.Note
	seq   int64
	// InitErr, when set, is returned by Initialize. Used to simulate an
	// unavailable backend.
	InitErr error
	inits   int
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{notes: make(map[int64]core.Note)}
}

// Initialize counts calls and returns InitErr.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits++
	return r.InitErr
}

// Initializations returns how many times Initialize ran.
func (r *Repository) Initializations() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inits
}

func (r *Repository) Insert(ctx context.Context, n core.Note) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	n.ID = r.seq
	r.notes[n.ID] = n
	return n.ID, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (core.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notes[id]
	if !ok {
		return core.Note{}, fmt.Errorf("note %d: %w", id, core.ErrNotFound)
	}
	return n, nil
}

func (r *Repository) Put(ctx context.Context, n core.Note) error {
	if n.ID <= 0 {
		return fmt.Errorf("note has no ID")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[n.ID] = n
	if n.ID > r.seq {
		r.seq = n.ID
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notes, id)
	return nil
}

func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	notes := make([]core.Note, 0, len(r.notes))
	for _, n := range r.notes {
		notes = append(notes, n)
	}
	return notes, nil
}

// ListByIndex filters a full scan and sorts by the index key.
func (r *Repository) ListByIndex(ctx context.Context, index string, rg core.Range) ([]core.Note, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Note
	for _, n := range all {
		if core.InRange(n, index, rg) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return core.IndexLess(index, out[i], out[j])
	})
	return out, nil
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Notes    int   `json:"notes"`
	Sequence int64 `json:"sequence"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RepositoryState{Notes: len(r.notes), Sequence: r.seq}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "memory"
}

var (
	_ core.Repository              = (*Repository)(nil)
	_ core.Indexed                 = (*Repository)(nil)
	_ introspection.Introspectable = (*Repository)(nil)
	_ introspection.Component      = (*Repository)(nil)
)
