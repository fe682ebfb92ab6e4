package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists blobs in the kv_store table, for deployments sharing one cache.
type PostgresStore struct {
	pool  *pgxpool.Pool
	stmts statements
	now   func() time.Time
}

// NewPostgresStore creates the table if needed.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return &PostgresStore{pool: pool, stmts: newStatements(sq.Dollar), now: time.Now}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	repoLogger := s.logger(ctx, "Get", key)

	query, args, err := s.stmts.get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	var value string
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKeyNotFound
		}
		repoLogger.Error("Failed to read key", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return []byte(value), nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	repoLogger := s.logger(ctx, "Set", key)

	query, args, err := s.stmts.upsert(key, value, s.now())
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		repoLogger.Error("Failed to write key", err, port.Fields{"query": query})
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	repoLogger.Debug("Key written.", port.Fields{"bytes": len(value)})
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := s.stmts.delete(keys)
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	cmdTag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		s.logger(ctx, "Delete", "").Error("Failed to delete keys", err, port.Fields{"keys": keys})
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	s.logger(ctx, "Delete", "").Debug("Keys deleted.", port.Fields{"rows": cmdTag.RowsAffected()})
	return nil
}

func (s *PostgresStore) logger(ctx context.Context, method, key string) port.LoggerPort {
	fields := port.Fields{
		"component": "PostgresStore",
		"method":    method,
	}
	if key != "" {
		fields["key"] = key
	}
	return contextkeys.LoggerFromContext(ctx).WithFields(fields)
}
