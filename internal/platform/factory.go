package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/swiftnote/pkg/adapters/fs"
	"github.com/aretw0/swiftnote/pkg/adapters/memory"
	"github.com/aretw0/swiftnote/pkg/adapters/sqlite"
	"github.com/aretw0/swiftnote/pkg/core"
)

// New builds a Store over the adapter selected by opts. The backend is opened
// lazily by the first Store operation.
// The uri is adapter-specific: a data directory for "sqlite" and "fs"
// (":memory:" or a *.db path also work for sqlite), ignored for "memory".
func New(uri string, opts ...Option) (*core.Store, error) {
	o := apply(opts)

	repo, err := NewRepository(uri, o)
	if err != nil {
		return nil, err
	}

	storeOpts := []core.StoreOption{
		core.WithLogger(o.logger),
		core.WithReadOnly(o.readOnly),
	}
	if o.clock != nil {
		storeOpts = append(storeOpts, core.WithClock(o.clock))
	}
	return core.NewStore(repo, storeOpts...), nil
}

// Init builds a Store and opens its backend immediately.
func Init(ctx context.Context, uri string, opts ...Option) (*core.Store, error) {
	store, err := New(uri, opts...)
	if err != nil {
		return nil, err
	}
	if err := store.Initialize(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// NewRepository selects and configures the backend without opening it.
func NewRepository(uri string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	if o.versioning && o.adapter != AdapterFS {
		return nil, fmt.Errorf("versioning requires the %s adapter, not %s", AdapterFS, o.adapter)
	}

	switch o.adapter {
	case AdapterSQLite:
		return newSQLite(uri, o), nil
	case AdapterFS:
		return newFS(uri, o), nil
	case AdapterMemory:
		return memory.NewRepository(), nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

// dataPath applies the dev sandbox rules to a user supplied directory.
func dataPath(uri string, o *options) string {
	bypass := o.readOnly || !o.devSafety
	useTemp := o.forceTemp || (IsDevRun() && !bypass)
	resolved := ResolveDataPath(uri, useTemp)

	if useTemp && resolved != filepath.Clean(uri) {
		o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", uri, "resolved_path", resolved)
	} else if IsDevRun() && bypass {
		o.logger.Debug("dev sandbox bypassed", "path", resolved, "read_only", o.readOnly)
	}
	return resolved
}

func newSQLite(uri string, o *options) *sqlite.Repository {
	dsn := uri
	switch {
	case uri == sqlite.MemoryDSN:
	case strings.HasSuffix(uri, ".db"):
		dir := dataPath(filepath.Dir(uri), o)
		dsn = filepath.Join(dir, filepath.Base(uri))
	default:
		dsn = filepath.Join(dataPath(uri, o), sqlite.DefaultFile)
	}
	return sqlite.NewRepository(sqlite.Config{DSN: dsn, Logger: o.logger})
}

func newFS(uri string, o *options) *fs.Repository {
	return fs.NewRepository(fs.Config{
		Path:         dataPath(uri, o),
		SystemDir:    o.systemDir,
		Versioning:   o.versioning,
		AutoInit:     o.autoInit,
		MustExist:    o.mustExist || o.readOnly,
		Logger:       o.logger,
		ErrorHandler: o.watcherErrorHandler,
	})
}
