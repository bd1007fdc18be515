package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const defaultSQLitePath = "lagerapp.db"

// NewSQLiteStore wraps an open SQLite handle.
func NewSQLiteStore(db *sql.DB) *SQLStore {
	return newSQLStore(db, sqliteDialect)
}

// OpenSQLite opens (creating if needed) the database file at path. ":memory:"
// gives a private in-memory database. Writes are funnelled through a single
// connection, which is how SQLite serializes them anyway.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return NewSQLiteStore(db), nil
}

func sqliteDSN(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
}
