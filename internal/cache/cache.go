// Package cache provides the read-through cache used by tariff resolution.
// The store is strategy-injected so services stay cache-agnostic: Redis in
// production, an in-memory map in tests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Cache is a minimal string cache. A zero ttl means no expiry; mutators are
// expected to bust the exact keys they touch.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
