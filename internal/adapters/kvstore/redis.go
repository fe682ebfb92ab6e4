package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps blobs as plain redis strings, without expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore prefixes every key with prefix (may be empty).
func NewRedisStore(client redis.UniversalClient, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("GET failed", err, port.Fields{"component": "RedisStore", "key": key})
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return b, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("SET failed", err, port.Fields{"component": "RedisStore", "key": key})
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("DEL failed", err, port.Fields{"component": "RedisStore", "keys": keys})
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
