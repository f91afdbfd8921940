package swiftnote

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/swiftnote/internal/platform"
	"github.com/aretw0/swiftnote/pkg/core"
	"github.com/aretw0/swiftnote/pkg/session"
)

// --- Types ---

// Note is a single stored note.
type Note = core.Note

// Draft carries the fields of a note to be created.
type Draft = core.Draft

// Patch carries the fields to change on an existing note. Nil fields are kept.
type Patch = core.Patch

// Store is the durable CRUD layer.
type Store = core.Store

// Session is the recency-ordered in-memory view over a Store.
type Session = session.Cache

// Event is a change reported by a watchable backend.
type Event = core.Event

// Errors callers match with errors.Is.
var (
	ErrStorageUnavailable = core.ErrStorageUnavailable
	ErrNotFound           = core.ErrNotFound
	ErrReadOnly           = core.ErrReadOnly
	ErrUnsupported        = core.ErrUnsupported
)

// Adapter names accepted by WithAdapter.
const (
	AdapterSQLite = platform.AdapterSQLite
	AdapterFS     = platform.AdapterFS
	AdapterMemory = platform.AdapterMemory
)

// --- Configuration ---

// Option defines a functional option for configuring SwiftNote.
type Option = platform.Option

// WithAdapter selects the storage backend by name ("sqlite", "fs", "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithRepository injects a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithLogger sets the logger for the store and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithClock overrides the time source used for note timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithReadOnly rejects every mutation with ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithVersioning commits every mutation to git (fs adapter only).
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithAutoInit allows creating the git repository when versioning is on.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithMustExist requires the data directory to exist already.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithForceTemp forces the data directory into the dev sandbox.
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithSystemDir sets the hidden directory name of the fs adapter.
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithWatcherErrorHandler receives runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a Store. The backend is opened on first use.
func New(path string, opts ...Option) (*Store, error) {
	return platform.New(path, opts...)
}

// Open creates a Store and opens its backend right away.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	return platform.Init(ctx, path, opts...)
}

// NewSession creates an empty session cache over store. Call Load to fill it.
func NewSession(store *Store, logger *slog.Logger) *Session {
	return session.New(store, session.WithLogger(logger))
}

// --- Config & Utils ---

// ConfigFileName is the optional configuration file looked up in the data directory.
const ConfigFileName = platform.ConfigFileName

// FileConfig mirrors swiftnote.yaml.
type FileConfig = platform.FileConfig

// LoadConfig reads a swiftnote.yaml file. A missing file yields an empty config.
func LoadConfig(path string) (FileConfig, error) {
	return platform.LoadConfig(path)
}

// FindRoot looks upwards from startDir for a SwiftNote data directory.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// ResolveDataPath applies the dev sandbox rules to a data directory.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun reports whether the process runs via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}
