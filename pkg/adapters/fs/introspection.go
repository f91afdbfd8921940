package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string     `json:"path"`
	SystemDir     string     `json:"system_dir"`
	Initialized   bool       `json:"initialized"`
	IndexSize     int        `json:"index_size"`
	Sequence      int64      `json:"sequence"`
	Versioning    bool       `json:"versioning"`
	WatcherActive bool       `json:"watcher_active"`
	LastReconcile *time.Time `json:"last_reconcile,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()

	return RepositoryState{
		Path:          r.Path,
		SystemDir:     r.config.SystemDir,
		Initialized:   r.initialized,
		IndexSize:     r.index.Len(),
		Sequence:      r.index.Sequence(),
		Versioning:    r.config.Versioning,
		WatcherActive: r.watcherActive,
		LastReconcile: r.lastReconcile,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) setWatcherActive(active bool) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.watcherActive = active
}
