// Package sqlite provides a SQLite-backed implementation of storage.Store.
//
// Each collection is a table of two columns: the primary key and the record
// as a JSON document. Secondary indexes are expression indexes over
// json_extract, so the document shape stays the single source of truth.
// The key field is stripped from the stored document and re-injected on
// read, which keeps key assignment (sequence or UUID) in one place.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/vky3831/thryv/internal/storage"
)

// Ensure Engine implements storage.Store
var _ storage.Store = (*Engine)(nil)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Engine implements storage.Store using SQLite.
type Engine struct {
	ops
	db     *sql.DB
	schema storage.Schema
	logger *slog.Logger
}

// Open creates or opens the database at the given path and ensures every
// collection and index in the schema exists. Opening an existing database
// already at the schema's version re-runs no creation logic. Parent
// directories are created as needed.
//
// Failures to open or configure the underlying database are reported as
// storage.ErrUnavailable; they are fatal to the application.
func Open(path string, schema storage.Schema) (*Engine, error) {
	if err := validateSchema(schema); err != nil {
		return nil, err
	}

	if !strings.Contains(path, ":memory:") {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("%w: creating database directory: %v", storage.ErrUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", storage.ErrUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to database: %v", storage.ErrUnavailable, err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY and makes every read see a consistent snapshot.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: executing %q: %v", storage.ErrUnavailable, pragma, err)
		}
	}

	cols := make(map[string]storage.Collection, len(schema.Collections))
	for _, col := range schema.Collections {
		cols[col.Name] = col
	}

	e := &Engine{
		ops:    ops{q: db, cols: cols},
		db:     db,
		schema: schema,
		logger: slog.Default().With("component", "store"),
	}

	if err := e.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", storage.ErrUnavailable, err)
	}

	e.logger.Info("object store ready", "path", path, "collections", len(schema.Collections))
	return e, nil
}

// Close closes the database connection.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Update runs fn inside a single transaction spanning any collections it
// touches. fn returning an error rolls everything back.
func (e *Engine) Update(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(engineTx{ops{q: tx, cols: e.cols}}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// engineTx adapts the shared operation set to storage.Tx within a sql.Tx.
type engineTx struct {
	ops
}

var _ storage.Tx = engineTx{}

// createSchema creates missing tables and indexes. Guarded by the SQLite
// user_version so a database already at the current version skips DDL.
func (e *Engine) createSchema() error {
	var version int
	if err := e.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading user_version: %w", err)
	}
	if version == e.schema.Version {
		return nil
	}

	for _, col := range e.schema.Collections {
		keyType := "TEXT PRIMARY KEY"
		if col.Keys == storage.KeySequence {
			keyType = "INTEGER PRIMARY KEY AUTOINCREMENT"
		}
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (k %s, doc TEXT NOT NULL)", col.Name, keyType)
		if _, err := e.db.Exec(ddl); err != nil {
			return fmt.Errorf("creating collection %s: %w", col.Name, err)
		}
		for _, field := range col.Indexes {
			ddl := fmt.Sprintf(
				"CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (json_extract(doc, '$.%s'))",
				col.Name, field, col.Name, field,
			)
			if _, err := e.db.Exec(ddl); err != nil {
				return fmt.Errorf("creating index %s.%s: %w", col.Name, field, err)
			}
		}
	}

	if _, err := e.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", e.schema.Version)); err != nil {
		return fmt.Errorf("setting user_version: %w", err)
	}
	return nil
}

func validateSchema(schema storage.Schema) error {
	if schema.Version < 1 {
		return fmt.Errorf("schema version must be at least 1, got %d", schema.Version)
	}
	if len(schema.Collections) == 0 {
		return fmt.Errorf("schema has no collections")
	}
	seen := make(map[string]bool)
	for _, col := range schema.Collections {
		if !identPattern.MatchString(col.Name) {
			return fmt.Errorf("invalid collection name %q", col.Name)
		}
		if seen[col.Name] {
			return fmt.Errorf("duplicate collection name %q", col.Name)
		}
		seen[col.Name] = true
		if !identPattern.MatchString(col.KeyPath) {
			return fmt.Errorf("collection %s: invalid key path %q", col.Name, col.KeyPath)
		}
		for _, field := range col.Indexes {
			if !identPattern.MatchString(field) {
				return fmt.Errorf("collection %s: invalid index field %q", col.Name, field)
			}
			if field == col.KeyPath {
				return fmt.Errorf("collection %s: key path %q cannot also be an index", col.Name, field)
			}
		}
	}
	return nil
}
