package contracts

import (
	"context"
	"errors"
	"fmt"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
)

// ErrContractViolation marks a blob that does not match its schema.
var ErrContractViolation = errors.New("storage contract violation")

// ValidatingStore checks blobs of known keys against their schema on both read and write.
// A bad blob on read is reported as a storage error, so callers treat it as absent.
type ValidatingStore struct {
	next     port.KeyValueStorePort
	registry *Registry
}

func NewValidatingStore(next port.KeyValueStorePort, registry *Registry) *ValidatingStore {
	return &ValidatingStore{next: next, registry: registry}
}

func (s *ValidatingStore) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Validate(key, blob); err != nil {
		contextkeys.LoggerFromContext(ctx).Warn("Stored blob rejected by schema.", port.Fields{
			"component": "ValidatingStore",
			"key":       key,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrContractViolation, err)
	}
	return blob, nil
}

func (s *ValidatingStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.registry.Validate(key, value); err != nil {
		return fmt.Errorf("%w: %w", ErrContractViolation, err)
	}
	return s.next.Set(ctx, key, value)
}

func (s *ValidatingStore) Delete(ctx context.Context, keys ...string) error {
	return s.next.Delete(ctx, keys...)
}
