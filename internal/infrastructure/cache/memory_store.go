package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// MemoryStore implements Store with in-process storage. Eviction is
// entirely lazy: an expired entry stays in memory until the next Get for
// its key, which removes it and reports a miss. Expired entries are never
// served, so the only cost of laziness is memory held between reads.
type MemoryStore struct {
	entries sync.Map // map[string]*memoryEntry
	logger  *zap.Logger

	hits   int64
	misses int64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// NewMemoryStore creates an in-process TTL cache
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{logger: logger}
}

// Get returns the cached value if present and not expired
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if v, ok := s.entries.Load(key); ok {
		entry := v.(*memoryEntry)
		if !entry.expired() {
			atomic.AddInt64(&s.hits, 1)
			return entry.value, true, nil
		}
		// Expired, remove on read
		s.entries.Delete(key)
	}
	atomic.AddInt64(&s.misses, 1)
	return nil, false, nil
}

// Set stores the value and resets the expiry
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.entries.Store(key, &memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
	s.logger.Debug("Cached value", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// Delete removes the key
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}

// Close implements Store; a memory store holds no external resources
func (s *MemoryStore) Close() error {
	return nil
}

// Stats returns hit/miss counters
func (s *MemoryStore) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&s.hits), atomic.LoadInt64(&s.misses)
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
