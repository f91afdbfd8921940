package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/swiftnote/pkg/core"
	"github.com/aretw0/swiftnote/pkg/git"
)

// DefaultSystemDir holds index.json and the git lock inside a notes directory.
const DefaultSystemDir = ".swiftnote"

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path       string
	SystemDir  string // e.g. ".swiftnote"
	Versioning bool   // commit every mutation to a local git repository
	AutoInit   bool   // run "git init" when Versioning is set and Path is not a repository
	MustExist  bool
	Logger     *slog.Logger

	// ErrorHandler receives watcher failures that cannot be returned to a caller.
	ErrorHandler func(error)
	// Debounce coalesces bursts of events for the same note. Zero means 50ms.
	Debounce time.Duration
}

// Repository implements core.Repository as a directory of Markdown files,
// one "<id>.md" per note with the metadata in a YAML frontmatter block.
type Repository struct {
	Path   string
	config Config
	git    *git.Client
	index  *index

	// mu serializes mutations so the sequence and the files stay in step.
	mu sync.Mutex

	stateMu       sync.RWMutex
	initialized   bool
	watcherActive bool
	lastReconcile *time.Time
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	return &Repository{
		Path:   config.Path,
		config: config,
		git:    git.NewClient(config.Path, filepath.Join(config.SystemDir, "git.lock"), config.Logger),
		index:  newIndex(config.Path, config.SystemDir),
	}
}

// Initialize prepares the directory, rebuilds the index from the note files
// and, with versioning enabled, sets up the git repository.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isInitialized() {
		return nil
	}

	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("notes path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("notes path is not a directory: %s", r.Path)
		}
	} else if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(r.Path, r.config.SystemDir), 0755); err != nil {
		return fmt.Errorf("failed to create system directory: %w", err)
	}

	if err := r.index.Load(); err != nil {
		r.config.Logger.Warn("index unreadable, rebuilding", "error", err)
	}
	if err := r.reconcile(ctx); err != nil {
		return err
	}

	if r.config.Versioning {
		if err := r.initGit(); err != nil {
			return err
		}
	}

	r.stateMu.Lock()
	r.initialized = true
	r.stateMu.Unlock()

	r.config.Logger.Debug("fs repository ready", "path", r.Path, "notes", r.index.Len(), "sequence", r.index.Sequence())
	return nil
}

func (r *Repository) initGit() error {
	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if !r.git.IsRepo() {
		if !r.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", r.Path)
		}
		if err := r.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	mod, err := r.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}

	if mod && wasNewRepo {
		if err := r.git.Add(".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		if err := r.git.Commit(fmt.Sprintf("chore: ignore %s", r.config.SystemDir)); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}
	return nil
}

// ensureIgnore appends the system directory to .gitignore.
// It reports whether the file was modified.
func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	ignoreEntry := r.config.SystemDir + "/"

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	for line := range strings.SplitSeq(string(content), "\n") {
		if strings.TrimSpace(line) == ignoreEntry {
			return false, nil
		}
	}

	var buf strings.Builder
	buf.Write(content)
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(ignoreEntry + "\n")

	if err := writeFileAtomic(ignorePath, []byte(buf.String()), 0644); err != nil {
		return false, err
	}
	return true, nil
}

// reconcile brings the index in line with the note files on disk:
// stale entries are re-read, vanished ones pruned and the sequence raised
// past the highest id found. Callers hold r.mu.
func (r *Repository) reconcile(ctx context.Context) error {
	files, err := r.noteFiles()
	if err != nil {
		return err
	}

	seen := make(map[int64]bool, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, _ := parseNoteFile(name)
		seen[id] = true
		r.index.Observe(id)

		full := filepath.Join(r.Path, name)
		info, err := os.Stat(full)
		if err != nil {
			continue
		}
		if _, fresh := r.index.Get(id, info.ModTime()); fresh {
			continue
		}
		n, err := r.readNote(id)
		if err != nil {
			r.config.Logger.Warn("skipping unreadable note", "file", name, "error", err)
			continue
		}
		r.index.Set(n, info.ModTime())
	}
	r.index.Prune(seen)

	if err := r.index.Save(); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	now := time.Now()
	r.stateMu.Lock()
	r.lastReconcile = &now
	r.stateMu.Unlock()
	return nil
}

// noteFiles lists the note file names in the root of the notes directory.
func (r *Repository) noteFiles() ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(r.Path), "*"+noteExt)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	files := matches[:0]
	for _, name := range matches {
		if _, ok := parseNoteFile(name); ok {
			files = append(files, name)
		}
	}
	slices.Sort(files)
	return files, nil
}

func (r *Repository) readNote(id int64) (core.Note, error) {
	data, err := os.ReadFile(filepath.Join(r.Path, noteFile(id)))
	if os.IsNotExist(err) {
		return core.Note{}, fmt.Errorf("note %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Note{}, err
	}
	n, err := decodeNote(data)
	if err != nil {
		return core.Note{}, fmt.Errorf("failed to parse note %d: %w", id, err)
	}
	// The file name is authoritative.
	n.ID = id
	return n, nil
}

// writeNote stores n and refreshes its index entry. Callers hold r.mu.
func (r *Repository) writeNote(n core.Note) error {
	data, err := encodeNote(n)
	if err != nil {
		return err
	}
	full := filepath.Join(r.Path, noteFile(n.ID))
	if err := writeFileAtomic(full, data, 0644); err != nil {
		return fmt.Errorf("failed to write note: %w", err)
	}
	info, err := os.Stat(full)
	if err != nil {
		return err
	}
	r.index.Set(n, info.ModTime())
	return r.index.Save()
}

func (r *Repository) commit(msg string, stage func() error) error {
	if !r.config.Versioning {
		return nil
	}
	unlock, err := r.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := stage(); err != nil {
		return err
	}
	if err := r.git.Commit(msg); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

// Insert assigns the next id and writes the note file.
func (r *Repository) Insert(ctx context.Context, n core.Note) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = r.index.Next()
	if err := r.writeNote(n); err != nil {
		// Keep the consumed id reserved.
		_ = r.index.Save()
		return 0, err
	}

	name := noteFile(n.ID)
	if err := r.commit("create note "+name, func() error { return r.git.Add(name) }); err != nil {
		return 0, err
	}
	return n.ID, nil
}

// Get reads a note file.
func (r *Repository) Get(ctx context.Context, id int64) (core.Note, error) {
	if err := ctx.Err(); err != nil {
		return core.Note{}, err
	}
	if id <= 0 {
		return core.Note{}, fmt.Errorf("note %d: %w", id, core.ErrNotFound)
	}
	return r.readNote(id)
}

// Put overwrites the file of n.ID.
func (r *Repository) Put(ctx context.Context, n core.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.ID <= 0 {
		return fmt.Errorf("note has no ID")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writeNote(n); err != nil {
		return err
	}
	name := noteFile(n.ID)
	return r.commit("update note "+name, func() error { return r.git.Add(name) })
}

// Delete removes the note file. A missing file is not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	name := noteFile(id)
	err := os.Remove(filepath.Join(r.Path, name))
	if errors.Is(err, os.ErrNotExist) {
		r.index.Delete(id)
		return r.index.Save()
	}
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	r.index.Delete(id)
	if err := r.index.Save(); err != nil {
		return err
	}
	return r.commit("delete note "+name, func() error { return r.git.Rm(name) })
}

// List reads every note file, refreshing stale index entries on the way.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	files, err := r.noteFiles()
	if err != nil {
		return nil, err
	}

	notes := make([]core.Note, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, _ := parseNoteFile(name)
		n, err := r.readNote(id)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			r.config.Logger.Warn("skipping unreadable note", "file", name, "error", err)
			continue
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// ListByIndex selects and orders notes from index.json, reading only the
// files that fall within rng.
func (r *Repository) ListByIndex(ctx context.Context, index string, rng core.Range) ([]core.Note, error) {
	if !core.ValidIndex(index) {
		return nil, fmt.Errorf("index %s: %w", index, core.ErrUnsupported)
	}

	r.mu.Lock()
	err := r.reconcile(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var selected []core.Note
	for _, n := range r.index.Notes() {
		if core.InRange(n, index, rng) {
			selected = append(selected, n)
		}
	}
	slices.SortFunc(selected, func(a, b core.Note) int {
		switch {
		case core.IndexLess(index, a, b):
			return -1
		case core.IndexLess(index, b, a):
			return 1
		}
		return 0
	})

	out := make([]core.Note, 0, len(selected))
	for _, meta := range selected {
		n, err := r.readNote(meta.ID)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *Repository) isInitialized() bool {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.initialized
}

var (
	_ core.Repository = (*Repository)(nil)
	_ core.Indexed    = (*Repository)(nil)
	_ core.Watchable  = (*Repository)(nil)
)
