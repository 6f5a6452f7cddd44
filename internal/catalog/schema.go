// Package catalog provides the SQLite-backed store of book records.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/shelf/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS books (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	title  TEXT NOT NULL,
	author TEXT NOT NULL,
	tags   TEXT NOT NULL DEFAULT ''
);
`

// DB wraps a sql.DB with book store operations.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, storageErr("create db dir", err)
		}
	}
	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, storageErr("open db", err)
	}
	// One writer at a time; a single pinned connection keeps every
	// operation serialized.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, storageErr("ping", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, storageErr("apply schema", err)
	}
	return &DB{conn: conn, path: path}, nil
}

// Path returns the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}

// Ping verifies the database is still reachable.
func (db *DB) Ping() error {
	if err := db.conn.Ping(); err != nil {
		return storageErr("ping", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// uriEscaper escapes the characters that would end the path part of an
// SQLite file: URI early.
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// dsn turns a filesystem path into a file: URI carrying the connection options.
func dsn(path string) string {
	return "file:" + uriEscaper.Replace(path) + "?_journal_mode=WAL&_busy_timeout=5000"
}

func storageErr(op string, err error) error {
	return fmt.Errorf("catalog: %s: %w: %w", op, apperr.ErrStorage, err)
}
