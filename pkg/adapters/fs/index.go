package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/swiftnote/pkg/core"
)

const indexVersion = 1

// indexEntry is the metadata kept for one note file.
type indexEntry struct {
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastModified time.Time `json:"last_modified"`
}

// indexFile is the persisted shape of index.json.
type indexFile struct {
	Version  int                   `json:"version"`
	Sequence int64                 `json:"sequence"`
	Entries  map[int64]*indexEntry `json:"entries"`
}

// index holds the id sequence and the secondary-index metadata of every note.
// It lives in {path}/{systemDir}/index.json and is rebuilt from the note files
// whenever an entry is missing or older than its file.
type index struct {
	path  string
	mu    sync.RWMutex
	data  indexFile
	dirty bool
}

func newIndex(vaultPath, systemDir string) *index {
	return &index{
		path: filepath.Join(vaultPath, systemDir, "index.json"),
		data: indexFile{
			Version: indexVersion,
			Entries: make(map[int64]*indexEntry),
		},
	}
}

// Load reads the index from disk. A missing or corrupt file yields an empty
// index; entries are then rebuilt from the note files.
func (x *index) Load() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	raw, err := os.ReadFile(x.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	var data indexFile
	if err := json.Unmarshal(raw, &data); err != nil || data.Version != indexVersion {
		// The sequence survives only if it decoded.
		x.data.Sequence = max(x.data.Sequence, data.Sequence)
		x.dirty = true
		return nil
	}
	if data.Entries == nil {
		data.Entries = make(map[int64]*indexEntry)
	}
	x.data = data
	x.dirty = false
	return nil
}

// Save persists the index if it changed since the last Load or Save.
func (x *index) Save() error {
	x.mu.RLock()
	if !x.dirty {
		x.mu.RUnlock()
		return nil
	}
	raw, err := json.MarshalIndent(x.data, "", "  ")
	x.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(x.path), 0755); err != nil {
		return err
	}
	if err := writeFileAtomic(x.path, raw, 0644); err != nil {
		return err
	}

	x.mu.Lock()
	x.dirty = false
	x.mu.Unlock()
	return nil
}

// Next reserves and returns the next id. Ids are never handed out twice,
// even after the note that held one is deleted.
func (x *index) Next() int64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.data.Sequence++
	x.dirty = true
	return x.data.Sequence
}

// Observe raises the sequence to at least id.
func (x *index) Observe(id int64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if id > x.data.Sequence {
		x.data.Sequence = id
		x.dirty = true
	}
}

// Sequence returns the last id handed out.
func (x *index) Sequence() int64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.data.Sequence
}

// Get returns the entry for id if it is at least as new as mtime.
func (x *index) Get(id int64, mtime time.Time) (*indexEntry, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	entry, ok := x.data.Entries[id]
	if !ok || !entry.LastModified.Equal(mtime) {
		return nil, false
	}
	return entry, true
}

// Set records n with the modification time of its file.
func (x *index) Set(n core.Note, mtime time.Time) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.data.Entries[n.ID] = &indexEntry{
		Title:        n.Title,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
		LastModified: mtime,
	}
	if n.ID > x.data.Sequence {
		x.data.Sequence = n.ID
	}
	x.dirty = true
}

// Delete drops the entry for id.
func (x *index) Delete(id int64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.data.Entries[id]; ok {
		delete(x.data.Entries, id)
		x.dirty = true
	}
}

// Prune removes entries whose ids are not in keep.
func (x *index) Prune(keep map[int64]bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for id := range x.data.Entries {
		if !keep[id] {
			delete(x.data.Entries, id)
			x.dirty = true
		}
	}
}

// Notes returns the indexed metadata as notes without content.
func (x *index) Notes() []core.Note {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]core.Note, 0, len(x.data.Entries))
	for id, e := range x.data.Entries {
		out = append(out, core.Note{
			ID:        id,
			Title:     e.Title,
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		})
	}
	return out
}

// Len returns the number of indexed notes.
func (x *index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.data.Entries)
}
