package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/swiftnote/pkg/core"
)

// Watch reports changes to note files whose names match pattern (doublestar
// syntax, e.g. "*.md" or "1*.md"). An empty pattern matches every note.
// The returned channel is closed once ctx is cancelled.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(r.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", r.Path, err)
	}

	files, err := r.noteFiles()
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}
	known := make(map[int64]bool, len(files))
	for _, name := range files {
		id, _ := parseNoteFile(name)
		known[id] = true
	}

	events := make(chan core.Event, 16)
	w := &watchLoop{
		repo:    r,
		pattern: pattern,
		watcher: watcher,
		known:   known,
		events:  events,
	}
	w.debouncer = newDebouncer(r.config.Debounce, func(e core.Event) { w.send(ctx, e) })

	r.setWatcherActive(true)
	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		r.reportError(fmt.Errorf("watcher: %w", err))
	}))

	return events, nil
}

type watchLoop struct {
	repo      *Repository
	pattern   string
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	known     map[int64]bool // ids present on disk, owned by run
	events    chan core.Event
}

func (w *watchLoop) run(ctx context.Context) error {
	defer close(w.events)
	defer w.debouncer.stopAndWait()
	defer w.repo.setWatcherActive(false)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("events channel closed")
			}
			if e, ok := w.translate(event); ok {
				w.debouncer.add(e)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("errors channel closed")
			}
			w.repo.config.Logger.Error("fsnotify error", "error", err)
			w.repo.reportError(err)
		}
	}
}

// translate maps a raw fsnotify event to a note event. Files other than
// notes, temp files from atomic writes and the system directory are ignored.
func (w *watchLoop) translate(event fsnotify.Event) (core.Event, bool) {
	name := filepath.Base(event.Name)
	if name == w.repo.config.SystemDir || isTempFile(name) {
		return core.Event{}, false
	}
	id, ok := parseNoteFile(name)
	if !ok {
		return core.Event{}, false
	}

	var typ core.EventType
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		typ = core.EventDelete
		delete(w.known, id)
	case event.Has(fsnotify.Create):
		// Atomic rewrites of an existing note arrive as a create of the target.
		typ = core.EventCreate
		if w.known[id] {
			typ = core.EventModify
		}
		w.known[id] = true
	case event.Has(fsnotify.Write):
		typ = core.EventModify
	default:
		return core.Event{}, false
	}

	if w.pattern != "" {
		if match, _ := doublestar.Match(w.pattern, name); !match {
			return core.Event{}, false
		}
	}

	w.repo.config.Logger.Debug("note changed", "file", name, "type", typ)
	return core.Event{Type: typ, ID: id, Timestamp: time.Now().Unix()}, true
}

func (w *watchLoop) send(ctx context.Context, e core.Event) {
	select {
	case w.events <- e:
	case <-ctx.Done():
	}
}

func (r *Repository) reportError(err error) {
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
		return
	}
	r.config.Logger.Error("watch failure", "error", err)
}
