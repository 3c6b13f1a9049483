package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Typed provides JSON-encoded caching of one value type on top of a Cache.
// A nil *Typed is valid and never caches, so callers need not check whether
// caching is enabled.
type Typed[T any] struct {
	cache Cache
	ttl   time.Duration
}

// NewTyped wraps c. A nil c or non-positive ttl yields a nil *Typed.
func NewTyped[T any](c Cache, ttl time.Duration) *Typed[T] {
	if c == nil || ttl <= 0 {
		return nil
	}
	return &Typed[T]{cache: c, ttl: ttl}
}

// Get returns the cached value for key.
func (t *Typed[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T
	if t == nil {
		return value, false
	}

	data, err := t.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			slog.Debug("cache get failed", "key", key, "error", err)
		}
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		slog.Debug("cache entry undecodable", "key", key, "error", err)
		return value, false
	}
	return value, true
}

// Set stores value under key. Failures are logged and otherwise ignored.
func (t *Typed[T]) Set(ctx context.Context, key string, value T) {
	if t == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		slog.Debug("cache entry unencodable", "key", key, "error", err)
		return
	}
	if err := t.cache.Set(ctx, key, data, t.ttl); err != nil {
		slog.Debug("cache set failed", "key", key, "error", err)
	}
}

// GetOrFetch returns the cached value for key, or calls fetch and caches its result.
// Errors from fetch are returned as is and never cached.
func (t *Typed[T]) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	if value, ok := t.Get(ctx, key); ok {
		return value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}
	t.Set(ctx, key, value)
	return value, nil
}

// Invalidate removes every key starting with prefix.
func (t *Typed[T]) Invalidate(ctx context.Context, prefix string) {
	if t == nil {
		return
	}
	if err := t.cache.DeleteByPrefix(ctx, prefix); err != nil {
		slog.Warn("cache invalidation failed", "prefix", prefix, "error", err)
	}
}
