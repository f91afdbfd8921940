// Package repotest holds the behavioural contract every core.Repository
// adapter must satisfy. Adapter packages call Run from their own tests.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/swiftnote/pkg/core"
)

// Factory returns a fresh, uninitialized repository.
type Factory func(t *testing.T) core.Repository

var base = time.Date(2024, 3, 1, 9, 30, 0, 123456789, time.UTC)

func note(title, content string, offset time.Duration) core.Note {
	ts := base.Add(offset)
	return core.Note{Title: title, Content: content, CreatedAt: ts, UpdatedAt: ts}
}

func open(t *testing.T, newRepo Factory) core.Repository {
	t.Helper()
	repo := newRepo(t)
	require.NoError(t, repo.Initialize(context.Background()))
	return repo
}

func assertSameNote(t *testing.T, want, got core.Note) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Content, got.Content)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt: want %v, got %v", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt: want %v, got %v", want.UpdatedAt, got.UpdatedAt)
}

// Run executes the contract suite against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("Initialize Is Idempotent", func(t *testing.T) {
		repo := open(t, newRepo)
		require.NoError(t, repo.Initialize(ctx))
	})

	t.Run("Insert Then Get Round Trips", func(t *testing.T) {
		repo := open(t, newRepo)
		n := note("Groceries", "Milk, eggs\nand bread", 0)

		id, err := repo.Insert(ctx, n)
		require.NoError(t, err)
		require.Positive(t, id)
		n.ID = id

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assertSameNote(t, n, got)
	})

	t.Run("Empty Content Survives", func(t *testing.T) {
		repo := open(t, newRepo)
		id, err := repo.Insert(ctx, note("Blank", "", 0))
		require.NoError(t, err)

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "", got.Content)
	})

	t.Run("Ids Increase And Are Not Reused", func(t *testing.T) {
		repo := open(t, newRepo)
		first, err := repo.Insert(ctx, note("a", "", 0))
		require.NoError(t, err)
		second, err := repo.Insert(ctx, note("b", "", time.Second))
		require.NoError(t, err)
		assert.Greater(t, second, first)

		require.NoError(t, repo.Delete(ctx, second))
		third, err := repo.Insert(ctx, note("c", "", 2*time.Second))
		require.NoError(t, err)
		assert.Greater(t, third, second)
	})

	t.Run("Get Missing Returns ErrNotFound", func(t *testing.T) {
		repo := open(t, newRepo)
		_, err := repo.Get(ctx, 999)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Put Overwrites", func(t *testing.T) {
		repo := open(t, newRepo)
		n := note("Todo", "Call dentist", 0)
		id, err := repo.Insert(ctx, n)
		require.NoError(t, err)

		n.ID = id
		n.Content = "Call dentist at 9"
		n.UpdatedAt = n.UpdatedAt.Add(time.Minute)
		require.NoError(t, repo.Put(ctx, n))

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assertSameNote(t, n, got)
	})

	t.Run("Delete Is Idempotent", func(t *testing.T) {
		repo := open(t, newRepo)
		id, err := repo.Insert(ctx, note("gone", "", 0))
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, id))
		_, err = repo.Get(ctx, id)
		assert.ErrorIs(t, err, core.ErrNotFound)

		require.NoError(t, repo.Delete(ctx, id))
		require.NoError(t, repo.Delete(ctx, 424242))
	})

	t.Run("List Returns Everything", func(t *testing.T) {
		repo := open(t, newRepo)
		empty, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		for i, title := range []string{"one", "two", "three"} {
			_, err := repo.Insert(ctx, note(title, "body", time.Duration(i)*time.Second))
			require.NoError(t, err)
		}

		all, err := repo.List(ctx)
		require.NoError(t, err)
		titles := make([]string, 0, len(all))
		for _, n := range all {
			titles = append(titles, n.Title)
		}
		assert.ElementsMatch(t, []string{"one", "two", "three"}, titles)
	})

	t.Run("Secondary Indexes", func(t *testing.T) {
		repo := open(t, newRepo)
		idx, ok := repo.(core.Indexed)
		if !ok {
			t.Skip("repository does not maintain secondary indexes")
		}

		_, err := repo.Insert(ctx, note("cherry", "", 2*time.Hour))
		require.NoError(t, err)
		_, err = repo.Insert(ctx, note("apple", "", 0))
		require.NoError(t, err)
		_, err = repo.Insert(ctx, note("banana", "", time.Hour))
		require.NoError(t, err)

		byTitle, err := idx.ListByIndex(ctx, core.IndexTitle, core.Range{})
		require.NoError(t, err)
		require.Len(t, byTitle, 3)
		assert.Equal(t, "apple", byTitle[0].Title)
		assert.Equal(t, "banana", byTitle[1].Title)
		assert.Equal(t, "cherry", byTitle[2].Title)

		prefix, err := idx.ListByIndex(ctx, core.IndexTitle, core.Range{FromTitle: "b", ToTitle: "c"})
		require.NoError(t, err)
		require.Len(t, prefix, 1)
		assert.Equal(t, "banana", prefix[0].Title)

		recent, err := idx.ListByIndex(ctx, core.IndexUpdated, core.Range{From: base.Add(30 * time.Minute)})
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "banana", recent[0].Title)
		assert.Equal(t, "cherry", recent[1].Title)

		early, err := idx.ListByIndex(ctx, core.IndexCreated, core.Range{To: base.Add(time.Hour)})
		require.NoError(t, err)
		require.Len(t, early, 1)
		assert.Equal(t, "apple", early[0].Title)
	})
}
