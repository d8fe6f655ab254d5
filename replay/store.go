package replay

import (
	"context"
	"time"
)

// Lock values stored per transaction identifier.
const (
	ValuePending = "pending"
	ValueUsed    = "used"
)

// Store is the shared replay-lock store keyed by transaction identifier.
// Implementations coordinate concurrent requests across processes; per-key
// expiration is the only cleanup mechanism.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put writes value under key with the given expiration, overwriting
	// any existing value.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// PutIfAbsent writes value under key with the given expiration only
	// if the key does not already exist. It returns true if the write
	// happened.
	PutIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
