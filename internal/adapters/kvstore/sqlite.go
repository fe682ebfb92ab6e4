package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"

	sq "github.com/Masterminds/squirrel"
)

// SQLiteStore persists blobs in the kv_store table of a local SQLite file.
type SQLiteStore struct {
	db    *sql.DB
	stmts statements
	now   func() time.Time
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sql.DB cannot be nil")
	}
	return &SQLiteStore{db: db, stmts: newStatements(sq.Question), now: time.Now}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := s.stmts.get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	var value string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrKeyNotFound
		}
		s.logger(ctx, "Get").Error("Failed to read key", err, port.Fields{"key": key})
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := s.stmts.upsert(key, value, s.now())
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		s.logger(ctx, "Set").Error("Failed to write key", err, port.Fields{"key": key})
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := s.stmts.delete(keys)
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		s.logger(ctx, "Delete").Error("Failed to delete keys", err, port.Fields{"keys": keys})
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

func (s *SQLiteStore) logger(ctx context.Context, method string) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "SQLiteStore",
		"method":    method,
	})
}
