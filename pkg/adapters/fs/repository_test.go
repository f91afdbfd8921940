package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/swiftnote/internal/repotest"
	"github.com/aretw0/swiftnote/pkg/adapters/fs"
	"github.com/aretw0/swiftnote/pkg/core"
	"github.com/aretw0/swiftnote/pkg/git"
)

// setupRepo creates a repository in a fresh directory.
// It returns the repository and the notes directory.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	notesPath := filepath.Join(t.TempDir(), "notes")
	cfg := fs.Config{
		Path:     notesPath,
		AutoInit: true,
		Debounce: 10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return fs.NewRepository(cfg), notesPath
}

func TestRepositoryContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) core.Repository {
		repo, _ := setupRepo(t)
		return repo
	})
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates Directory if Missing", func(t *testing.T) {
		repo, path := setupRepo(t)
		require.NoError(t, repo.Initialize(ctx))

		info, err := os.Stat(filepath.Join(path, fs.DefaultSystemDir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		repo, _ := setupRepo(t, func(c *fs.Config) {
			c.MustExist = true
		})
		assert.Error(t, repo.Initialize(ctx))
	})

	t.Run("Fails if Path Is a File", func(t *testing.T) {
		repo, path := setupRepo(t, func(c *fs.Config) {
			c.MustExist = true
		})
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		assert.Error(t, repo.Initialize(ctx))
	})

	t.Run("Adopts Existing Files", func(t *testing.T) {
		first, path := setupRepo(t)
		require.NoError(t, first.Initialize(ctx))
		id, err := first.Insert(ctx, core.Note{Title: "kept", Content: "body"})
		require.NoError(t, err)

		// Lose the index entirely: ids must still continue past the files.
		require.NoError(t, os.RemoveAll(filepath.Join(path, fs.DefaultSystemDir)))

		second := fs.NewRepository(fs.Config{Path: path})
		require.NoError(t, second.Initialize(ctx))

		next, err := second.Insert(ctx, core.Note{Title: "new"})
		require.NoError(t, err)
		assert.Greater(t, next, id)

		state := second.State().(fs.RepositoryState)
		assert.Equal(t, 2, state.IndexSize)
		assert.Equal(t, next, state.Sequence)
	})
}

func TestNoteFileFormat(t *testing.T) {
	ctx := context.Background()
	repo, path := setupRepo(t)
	require.NoError(t, repo.Initialize(ctx))

	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	id, err := repo.Insert(ctx, core.Note{Title: "Groceries", Content: "Milk\n", CreatedAt: ts, UpdatedAt: ts})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(path, "1.md"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.True(t, strings.HasPrefix(string(raw), "---\n"))
	assert.Contains(t, string(raw), "title: Groceries\n")
	assert.Contains(t, string(raw), "2024-05-01T08:00:00Z")
	assert.True(t, strings.HasSuffix(string(raw), "---\nMilk\n"))
}

func TestExternalEdits(t *testing.T) {
	ctx := context.Background()
	repo, path := setupRepo(t)
	require.NoError(t, repo.Initialize(ctx))

	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for _, title := range []string{"banana", "apple"} {
		_, err := repo.Insert(ctx, core.Note{Title: title, CreatedAt: ts, UpdatedAt: ts})
		require.NoError(t, err)
	}

	t.Run("Index Picks Up Rewritten Files", func(t *testing.T) {
		file := filepath.Join(path, "1.md")
		raw, err := os.ReadFile(file)
		require.NoError(t, err)
		edited := strings.Replace(string(raw), "title: banana", "title: cherry", 1)
		require.NoError(t, os.WriteFile(file, []byte(edited), 0644))
		// Make sure the freshness check sees a different mtime.
		later := time.Now().Add(time.Minute)
		require.NoError(t, os.Chtimes(file, later, later))

		notes, err := repo.ListByIndex(ctx, core.IndexTitle, core.Range{})
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, "apple", notes[0].Title)
		assert.Equal(t, "cherry", notes[1].Title)
	})

	t.Run("Unreadable Files Are Skipped", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(path, "7.md"), []byte("no frontmatter"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(path, "readme.txt"), []byte("ignored"), 0644))

		notes, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, notes, 2)

		_, err = repo.Get(ctx, 7)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Removed Files Leave the Index", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(path, "2.md")))

		notes, err := repo.ListByIndex(ctx, core.IndexCreated, core.Range{})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, int64(1), notes[0].ID)
	})

	t.Run("Unknown Index", func(t *testing.T) {
		_, err := repo.ListByIndex(ctx, "by-color", core.Range{})
		assert.ErrorIs(t, err, core.ErrUnsupported)
	})
}

func TestVersioning(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()

	t.Run("Refuses Non-Repository Without AutoInit", func(t *testing.T) {
		repo, _ := setupRepo(t, func(c *fs.Config) {
			c.Versioning = true
			c.AutoInit = false
		})
		assert.Error(t, repo.Initialize(ctx))
	})

	t.Run("Commits Every Mutation", func(t *testing.T) {
		repo, path := setupRepo(t, func(c *fs.Config) {
			c.Versioning = true
		})
		require.NoError(t, repo.Initialize(ctx))

		ignore, err := os.ReadFile(filepath.Join(path, ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(ignore), fs.DefaultSystemDir+"/")

		id, err := repo.Insert(ctx, core.Note{Title: "first"})
		require.NoError(t, err)
		require.NoError(t, repo.Put(ctx, core.Note{ID: id, Title: "first", Content: "more"}))
		require.NoError(t, repo.Delete(ctx, id))

		client := git.NewClient(path, "", nil)
		subjects, err := client.Log(10)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"delete note 1.md",
			"update note 1.md",
			"create note 1.md",
			"chore: ignore " + fs.DefaultSystemDir,
		}, subjects)
	})
}
