package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/aretw0/swiftnote/pkg/core"
)

//go:embed migrations/*.sql
var embedded embed.FS

// DefaultFile is the database file name used inside a data directory.
const DefaultFile = "swiftnote.db"

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Config holds the configuration for the SQLite repository.
type Config struct {
	DSN    string // File path or ":memory:"
	Logger *slog.Logger
}

// Repository implements core.Repository on SQLite.
type Repository struct {
	config Config

	mu            sync.RWMutex
	db            *sql.DB
	schemaVersion int64
}

// NewRepository creates a repository. The database is opened by Initialize.
func NewRepository(config Config) *Repository {
	return &Repository{config: config}
}

// Initialize opens the database and applies pending migrations.
// Calling it again on an open repository does nothing.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return nil
	}

	dsn := r.config.DSN
	if dsn == "" {
		return fmt.Errorf("sqlite: empty DSN")
	}
	if dsn != MemoryDSN && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to open database: %w", err)
	}

	version, err := migrate(ctx, db)
	if err != nil {
		_ = db.Close()
		return err
	}

	r.db = db
	r.schemaVersion = version
	if r.config.Logger != nil {
		r.config.Logger.Debug("sqlite database ready", "dsn", dsn, "schema_version", version)
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB) (int64, error) {
	fsys, err := fs.Sub(embedded, "migrations")
	if err != nil {
		return 0, err
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return 0, fmt.Errorf("failed to migrate schema: %w", err)
	}
	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Repository) conn() (*sql.DB, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.db == nil {
		return nil, fmt.Errorf("sqlite: repository not initialized")
	}
	return r.db, nil
}

// Insert adds a note and returns the id SQLite assigned.
func (r *Repository) Insert(ctx context.Context, n core.Note) (int64, error) {
	db, err := r.conn()
	if err != nil {
		return 0, err
	}

	query := `INSERT INTO notes (title, content, created_at, updated_at) VALUES (?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, query, n.Title, n.Content, n.CreatedAt.UnixNano(), n.UpdatedAt.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return id, nil
}

// Get returns a single note.
func (r *Repository) Get(ctx context.Context, id int64) (core.Note, error) {
	db, err := r.conn()
	if err != nil {
		return core.Note{}, err
	}

	query := `SELECT id, title, content, created_at, updated_at FROM notes WHERE id = ?`
	n, err := scanNote(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Note{}, fmt.Errorf("note %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Note{}, fmt.Errorf("query row scan failed: %w", err)
	}
	return n, nil
}

// Put upserts a note by id. On conflict every column but id is replaced.
func (r *Repository) Put(ctx context.Context, n core.Note) error {
	if n.ID <= 0 {
		return fmt.Errorf("note has no ID")
	}
	db, err := r.conn()
	if err != nil {
		return err
	}

	query := `INSERT INTO notes (id, title, content, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET title = excluded.title,
				content = excluded.content,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at
	`
	_, err = db.ExecContext(ctx, query, n.ID, n.Title, n.Content, n.CreatedAt.UnixNano(), n.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	return nil
}

// Delete removes a note. Zero affected rows is not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// List scans the whole collection.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	return r.query(ctx, `SELECT id, title, content, created_at, updated_at FROM notes`)
}

var indexColumns = map[string]string{
	core.IndexTitle:   "title",
	core.IndexCreated: "created_at",
	core.IndexUpdated: "updated_at",
}

// ListByIndex runs a range scan over one of the secondary indexes.
func (r *Repository) ListByIndex(ctx context.Context, index string, rg core.Range) ([]core.Note, error) {
	column, ok := indexColumns[index]
	if !ok {
		return nil, fmt.Errorf("unknown index %q", index)
	}

	var (
		where []string
		args  []any
	)
	if index == core.IndexTitle {
		if rg.FromTitle != "" {
			where = append(where, column+" >= ?")
			args = append(args, rg.FromTitle)
		}
		if rg.ToTitle != "" {
			where = append(where, column+" < ?")
			args = append(args, rg.ToTitle)
		}
	} else {
		if !rg.From.IsZero() {
			where = append(where, column+" >= ?")
			args = append(args, rg.From.UnixNano())
		}
		if !rg.To.IsZero() {
			where = append(where, column+" < ?")
			args = append(args, rg.To.UnixNano())
		}
	}

	query := `SELECT id, title, content, created_at, updated_at FROM notes`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + column + ", id"

	return r.query(ctx, query, args...)
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]core.Note, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []core.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (core.Note, error) {
	var (
		n                core.Note
		created, updated int64
	)
	if err := s.Scan(&n.ID, &n.Title, &n.Content, &created, &updated); err != nil {
		return core.Note{}, err
	}
	n.CreatedAt = time.Unix(0, created).UTC()
	n.UpdatedAt = time.Unix(0, updated).UTC()
	return n, nil
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	DSN           string `json:"dsn"`
	Open          bool   `json:"open"`
	SchemaVersion int64  `json:"schema_version"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RepositoryState{
		DSN:           r.config.DSN,
		Open:          r.db != nil,
		SchemaVersion: r.schemaVersion,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "sqlite"
}

var (
	_ core.Repository              = (*Repository)(nil)
	_ core.Indexed                 = (*Repository)(nil)
	_ introspection.Introspectable = (*Repository)(nil)
	_ introspection.Component      = (*Repository)(nil)
)
