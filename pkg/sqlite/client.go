package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Config - location of the SQLite database file.
type Config struct {
	// Path of the database file; parent directories are created. ":memory:" is accepted.
	Path string
	// Schema is executed once after the connection is verified.
	Schema string
}

// NewClient opens the database, pings it and applies the schema.
func NewClient(cfg Config) (*sql.DB, error) {
	path := cfg.Path
	if path == "" {
		path = filepath.Join("data", "sergic.db")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite allows one writer; a single connection avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}
	if cfg.Schema != "" {
		if _, err := db.Exec(cfg.Schema); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return db, nil
}
