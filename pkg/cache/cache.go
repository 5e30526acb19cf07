package cache

import (
	"context"
	"time"
)

// Store is a TTL key/value store for small opaque values such as remembered
// API responses.
type Store interface {
	// Get returns the value and true, or false on a miss or expired entry.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
