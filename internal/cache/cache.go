// Package cache provides the article side-cache: a TTL key-value store with
// prefix sweeps for list invalidation.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss indicates the key is not present. Any other error from a Cache
// is an infrastructure failure; callers are expected to swallow those on the
// read-through and invalidation paths.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the key-value store consumed by the article service.
type Cache interface {
	// Get returns the raw value for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) (string, error)
	// SetTTL stores value under key with an expiry.
	SetTTL(ctx context.Context, key, value string, ttl time.Duration) error
	// Del removes keys and returns how many existed. Deleting nothing is a no-op.
	Del(ctx context.Context, keys ...string) (int64, error)
	// Keys lists keys matching a glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
}
