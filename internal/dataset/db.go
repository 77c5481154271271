package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"

	_ "modernc.org/sqlite"
)

// ErrNoDatabase is returned by Load when the database file does not exist.
var ErrNoDatabase = errors.New("calibration database not found")

// DB wraps a SQLite calibration database.
type DB struct {
	*sql.DB
}

// writePragmas are applied to databases opened by Create.
var writePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA foreign_keys=ON",
}

// readPragmas must not change the database file: no journal_mode or
// synchronous, and query_only rejects writes on the connection.
var readPragmas = []string{
	"PRAGMA busy_timeout=5000",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA query_only=ON",
}

// Open opens an existing calibration database read-only. The file, its
// journal mode and its schema are left as they are.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoDatabase)
		}
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro"
	return open(dsn, readPragmas)
}

// Create opens (creating if needed) a calibration database and migrates it to
// the latest schema version.
func Create(path string) (*DB, error) {
	db, err := open(path, writePragmas)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func open(dsn string, pragmas []string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return &DB{db}, nil
}

// hasTable reports whether the named table exists. Databases written by
// older tooling may lack the calibration tables entirely.
func (db *DB) hasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check for table %s: %w", name, err)
	}
	return n > 0, nil
}
