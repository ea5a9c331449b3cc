// Package kvstore is a minimal counter store: get/incr/decr/expire.
// Anything that can count with a TTL can back it, which keeps callers
// free of any particular client library's store interface.
package kvstore

import (
	"context"
	"time"
)

type Store interface {
	// Get returns the current value and whether the key exists.
	Get(ctx context.Context, key string) (int64, bool, error)
	// Incr adds one and returns the new value, creating the key at 1.
	Incr(ctx context.Context, key string) (int64, error)
	// Decr subtracts one and returns the new value. Keys that reach zero
	// or below are removed.
	Decr(ctx context.Context, key string) (int64, error)
	// Expire sets the key's time-to-live.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
