package cache

import (
	"context"
	"time"
)

// Store is a string key/value store with per-entry expiry.
// Get reports ok=false on a miss or an expired entry.
// SetNX stores value only when key is absent and reports whether it did;
// the check and the write are atomic across every client of the store.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}
