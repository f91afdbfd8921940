package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/swiftnote/pkg/adapters/memory"
	"github.com/aretw0/swiftnote/pkg/core"
)

// fakeClock returns a fixed instant that tests advance by hand.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// slowInitRepo blocks Initialize until released, to exercise concurrent setup.
type slowInitRepo struct {
	*memory.Repository
	release chan struct{}
}

func (r *slowInitRepo) Initialize(ctx context.Context) error {
	<-r.release
	return r.Repository.Initialize(ctx)
}

// failingRepo fails every write after initialization.
type failingRepo struct {
	*memory.Repository
	err error
}

func (r *failingRepo) Insert(ctx context.Context, n core.Note) (int64, error) {
	return 0, r.err
}

func (r *failingRepo) Put(ctx context.Context, n core.Note) error { return r.err }

func newStore(t *testing.T) (*core.Store, *memory.Repository, *fakeClock) {
	t.Helper()
	repo := memory.NewRepository()
	clock := newFakeClock()
	return core.NewStore(repo, core.WithClock(clock.Now)), repo, clock
}

func TestStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Assigns Id And Timestamps", func(t *testing.T) {
		store, _, clock := newStore(t)

		n, err := store.Create(ctx, core.Draft{Title: "Groceries", Content: "Milk, eggs"})
		require.NoError(t, err)
		assert.Positive(t, n.ID)
		assert.Equal(t, "Groceries", n.Title)
		assert.Equal(t, "Milk, eggs", n.Content)
		assert.True(t, n.CreatedAt.Equal(clock.Now()))
		assert.True(t, n.CreatedAt.Equal(n.UpdatedAt))

		got, ok, err := store.GetByID(ctx, n.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, n, got)
	})

	t.Run("Empty Title Becomes Untitled", func(t *testing.T) {
		store, _, _ := newStore(t)
		n, err := store.Create(ctx, core.Draft{Title: "", Content: "body"})
		require.NoError(t, err)
		assert.Equal(t, core.Untitled, n.Title)

		got, ok, err := store.GetByID(ctx, n.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, core.Untitled, got.Title)
	})

	t.Run("Whitespace Title Is Kept", func(t *testing.T) {
		store, _, _ := newStore(t)
		for _, title := range []string{"   ", "\t\n"} {
			n, err := store.Create(ctx, core.Draft{Title: title, Content: "body"})
			require.NoError(t, err)
			assert.Equal(t, title, n.Title)

			got, ok, err := store.GetByID(ctx, n.ID)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, title, got.Title)
		}
	})

	t.Run("Empty Content Is Accepted", func(t *testing.T) {
		store, _, _ := newStore(t)
		n, err := store.Create(ctx, core.Draft{})
		require.NoError(t, err)
		assert.Equal(t, core.Untitled, n.Title)
		assert.Equal(t, "", n.Content)
	})

	t.Run("Backend Failure Is Wrapped", func(t *testing.T) {
		boom := errors.New("disk full")
		store := core.NewStore(&failingRepo{Repository: memory.NewRepository(), err: boom})
		_, err := store.Create(ctx, core.Draft{Title: "x"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestStore_GetByID_Missing(t *testing.T) {
	store, _, _ := newStore(t)
	n, ok, err := store.GetByID(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, n)
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Moves UpdatedAt Forward And Keeps Unspecified Fields", func(t *testing.T) {
		store, _, clock := newStore(t)
		n, err := store.Create(ctx, core.Draft{Title: "Todo", Content: "Call dentist"})
		require.NoError(t, err)

		clock.Advance(time.Minute)
		require.NoError(t, store.Update(ctx, n.ID, core.Patch{Content: core.StringPtr("Call dentist at 9")}))

		got, ok, err := store.GetByID(ctx, n.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Todo", got.Title)
		assert.Equal(t, "Call dentist at 9", got.Content)
		assert.True(t, got.CreatedAt.Equal(n.CreatedAt))
		assert.True(t, got.UpdatedAt.After(n.UpdatedAt))
	})

	t.Run("Stamps Even When Nothing Changes", func(t *testing.T) {
		store, _, clock := newStore(t)
		n, err := store.Create(ctx, core.Draft{Title: "same"})
		require.NoError(t, err)

		clock.Advance(time.Second)
		require.NoError(t, store.Update(ctx, n.ID, core.Patch{}))

		got, _, err := store.GetByID(ctx, n.ID)
		require.NoError(t, err)
		assert.True(t, got.UpdatedAt.Equal(clock.Now()))
	})

	t.Run("Frozen Clock Still Advances UpdatedAt", func(t *testing.T) {
		store, _, _ := newStore(t)
		n, err := store.Create(ctx, core.Draft{Title: "fast"})
		require.NoError(t, err)

		first, err := store.Apply(ctx, n.ID, core.Patch{Content: core.StringPtr("1")})
		require.NoError(t, err)
		second, err := store.Apply(ctx, n.ID, core.Patch{Content: core.StringPtr("2")})
		require.NoError(t, err)

		assert.True(t, first.UpdatedAt.After(n.UpdatedAt))
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
		assert.False(t, second.UpdatedAt.Before(second.CreatedAt))
	})

	t.Run("Empty Title On Update Becomes Untitled", func(t *testing.T) {
		store, _, _ := newStore(t)
		n, err := store.Create(ctx, core.Draft{Title: "named"})
		require.NoError(t, err)

		merged, err := store.Apply(ctx, n.ID, core.Patch{Title: core.StringPtr("")})
		require.NoError(t, err)
		assert.Equal(t, core.Untitled, merged.Title)
	})

	t.Run("Missing Id Returns ErrNotFound", func(t *testing.T) {
		store, repo, _ := newStore(t)
		err := store.Update(ctx, 999, core.Patch{Title: core.StringPtr("x")})
		assert.ErrorIs(t, err, core.ErrNotFound)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Apply Returns Persisted Note", func(t *testing.T) {
		store, _, clock := newStore(t)
		n, err := store.Create(ctx, core.Draft{Title: "a", Content: "b"})
		require.NoError(t, err)

		clock.Advance(time.Hour)
		merged, err := store.Apply(ctx, n.ID, core.Patch{Title: core.StringPtr("c")})
		require.NoError(t, err)

		got, _, err := store.GetByID(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, got, merged)
	})
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newStore(t)

	n, err := store.Create(ctx, core.Draft{Title: "bye"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, n.ID))
	_, ok, err := store.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Delete(ctx, n.ID))
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newStore(t)

	groceries, err := store.Create(ctx, core.Draft{Title: "Groceries", Content: "Milk, eggs"})
	require.NoError(t, err)
	todo, err := store.Create(ctx, core.Draft{Title: "Todo", Content: "Call dentist"})
	require.NoError(t, err)
	_, err = store.Create(ctx, core.Draft{Title: "Ideas", Content: "milk the cow"})
	require.NoError(t, err)

	all, err := store.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	milk, err := store.Search(ctx, "Milk")
	require.NoError(t, err)
	require.Len(t, milk, 1)
	assert.Equal(t, groceries.ID, milk[0].ID)

	byTitle, err := store.Search(ctx, "odo")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, todo.ID, byTitle[0].ID)

	none, err := store.Search(ctx, "zebra")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("Concurrent Callers Open Once", func(t *testing.T) {
		repo := &slowInitRepo{Repository: memory.NewRepository(), release: make(chan struct{})}
		store := core.NewStore(repo)

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.ListAll(ctx)
				errs <- err
			}()
		}

		time.Sleep(20 * time.Millisecond)
		close(repo.release)
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}
		assert.Equal(t, 1, repo.Initializations())

		require.NoError(t, store.Initialize(ctx))
		assert.Equal(t, 1, repo.Initializations())
	})

	t.Run("Failure Is StorageUnavailable And Retried", func(t *testing.T) {
		repo := memory.NewRepository()
		repo.InitErr = errors.New("permission denied")
		store := core.NewStore(repo)

		_, err := store.ListAll(ctx)
		assert.ErrorIs(t, err, core.ErrStorageUnavailable)
		_, err = store.Create(ctx, core.Draft{Title: "x"})
		assert.ErrorIs(t, err, core.ErrStorageUnavailable)

		state := store.State().(core.StoreState)
		assert.False(t, state.Initialized)
		assert.Equal(t, "permission denied", state.LastInitError)

		repo.InitErr = nil
		_, err = store.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, repo.Initializations())
		assert.True(t, store.State().(core.StoreState).Initialized)
	})
}

func TestStore_ReadOnly(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	seed := core.NewStore(repo)
	n, err := seed.Create(ctx, core.Draft{Title: "existing"})
	require.NoError(t, err)

	store := core.NewStore(repo, core.WithReadOnly(true))

	_, err = store.Create(ctx, core.Draft{Title: "new"})
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.ErrorIs(t, store.Update(ctx, n.ID, core.Patch{}), core.ErrReadOnly)
	assert.ErrorIs(t, store.Delete(ctx, n.ID), core.ErrReadOnly)

	got, ok, err := store.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "existing", got.Title)
}

func TestStore_OptionalCapabilities(t *testing.T) {
	ctx := context.Background()
	store, _, clock := newStore(t)

	_, err := store.Watch(ctx, "*")
	assert.ErrorIs(t, err, core.ErrUnsupported)

	_, err = store.ListByIndex(ctx, "by-colour", core.Range{})
	assert.Error(t, err)

	first, err := store.Create(ctx, core.Draft{Title: "old"})
	require.NoError(t, err)
	clock.Advance(time.Hour)
	second, err := store.Create(ctx, core.Draft{Title: "new"})
	require.NoError(t, err)

	recent, err := store.ListByIndex(ctx, core.IndexUpdated, core.Range{From: first.UpdatedAt.Add(time.Minute)})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, second.ID, recent[0].ID)
}

func TestMatches(t *testing.T) {
	n := core.Note{Title: "Groceries", Content: "Milk, eggs"}
	assert.True(t, core.Matches(n, ""))
	assert.True(t, core.Matches(n, "Groc"))
	assert.True(t, core.Matches(n, "k, e"))
	assert.False(t, core.Matches(n, "milk"))
}
