package port

import "context"

// KeyValueStorePort - string-keyed blob storage backing the offline cache and the registry.
// Get returns domain.ErrKeyNotFound when the key is absent; every other error is a storage failure.
type KeyValueStorePort interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
