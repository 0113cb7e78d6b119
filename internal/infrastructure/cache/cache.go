package cache

import (
	"context"
	"time"
)

// Store is a TTL key-value cache for serialized read-through values.
// Implementations must be safe for concurrent use; a last-writer-wins Set
// is acceptable since cached reads already tolerate staleness.
type Store interface {
	// Get returns the cached bytes for key, or found=false on a miss.
	// An entry past its expiry is a miss and must never be returned.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key, replacing any previous value and
	// resetting the expiry to now+ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key from the cache
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store
	Close() error
}
