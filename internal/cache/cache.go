package cache

import (
	"context"
	"time"
)

// Store is the TTL key-value surface the auth core needs. Backed by Redis
// in production; tests use an in-memory fake.
type Store interface {
	// Get returns the value for key, or ok=false when the key is absent
	// or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// SetWithTTL stores value under key, expiring after ttl.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Incr atomically increments the counter at key and returns the new
	// count. The window TTL is attached when the counter is created so a
	// fixed window expires as a whole.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}
