// Package cache defines a small byte-oriented cache used for provider
// response caching.
package cache

import (
	"context"
	"time"
)

// Store is a TTL cache keyed by string. Implementations must treat a missing
// key as serviceerr.ErrNotFound.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
