package domain

import "errors"

// Errors returned by the use cases and ports.
var (
	ErrNotAvailableOffline = errors.New("listing is not available offline")
	ErrNotAvailable        = errors.New("listing is not available")
	ErrKeyNotFound         = errors.New("key not found")
	ErrUnknownCategory     = errors.New("unknown listing category")
	ErrListingNotFound     = errors.New("listing not found")
)
