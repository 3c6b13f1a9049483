package cache

import (
	"log/slog"
	"time"
)

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects the Redis backend when set.
	// Example: redis://localhost:6379/0
	RedisURL string

	// Prefix is the key prefix for Redis
	Prefix string

	DefaultTTL      time.Duration
	MaxSize         int // Maximum entries for the memory cache (0 = unlimited)
	CleanupInterval time.Duration
}

// New creates a Redis cache when a URL is configured and the server answers,
// otherwise an in-memory cache. A Redis failure is logged and never fatal.
func New(cfg Config) Cache {
	if cfg.RedisURL != "" {
		opts := DefaultRedisCacheOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}

		rc, err := NewRedisCache(opts)
		if err == nil {
			slog.Info("using redis cache", "prefix", opts.Prefix)
			return rc
		}
		slog.Warn("redis cache unavailable, falling back to memory cache", "error", err)
	}

	cleanup := cfg.CleanupInterval
	if cleanup == 0 {
		cleanup = time.Minute
	}
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cleanup,
	})
}
