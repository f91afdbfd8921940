package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/swiftnote/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterSQLite = "sqlite"
	AdapterFS     = "fs"
	AdapterMemory = "memory"
)

// options holds the internal configuration for a SwiftNote store.
type options struct {
	repository core.Repository
	logger     *slog.Logger
	adapter    string
	clock      func() time.Time

	readOnly   bool
	versioning bool
	autoInit   bool
	mustExist  bool
	forceTemp  bool
	devSafety  bool
	systemDir  string

	watcherErrorHandler func(error)
}

// Option defines a functional option for configuring SwiftNote.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:   AdapterSQLite,
		autoInit:  true,
		devSafety: true,
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// WithAdapter selects the storage backend by name: "sqlite" (default), "fs" or "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithRepository injects a custom storage adapter.
// If provided, WithAdapter is ignored.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithLogger sets the logger shared by the store and the adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock overrides the time source used for note timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithReadOnly enables read-only mode.
// Mutations return core.ErrReadOnly and the dev sandbox is bypassed.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithVersioning commits every mutation to a local git repository.
// Only the fs adapter supports it.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.versioning = enabled
	}
}

// WithAutoInit allows the fs adapter to run "git init" when versioning is on.
// Enabled by default.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithMustExist requires the data directory to exist already.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithForceTemp forces the data directory into the dev sandbox.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) data lands in a temporary directory so a dev run never
// touches real notes.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithSystemDir sets the hidden directory used by the fs adapter (default ".swiftnote").
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithWatcherErrorHandler receives runtime watcher failures (e.g. permission denied)
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.watcherErrorHandler = fn
	}
}
