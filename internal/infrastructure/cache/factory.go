package cache

import (
	"fmt"

	"go.uber.org/zap"
)

// Backend selects the cache implementation
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)

// FactoryConfig holds cache construction settings
type FactoryConfig struct {
	Backend Backend
	Redis   RedisConfig
}

// NewStore builds a cache store for the configured backend. Memory is the
// default for a single storefront instance; Redis shares the cache across
// instances.
func NewStore(cfg FactoryConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStore(logger), nil
	case BackendRedis:
		return NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}
