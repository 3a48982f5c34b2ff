package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetJSON is a typed convenience wrapper over Cache.Get for the
// structured values (JobStatus, ConsumerStatus, ...) the cache is meant
// the cache transparently serializes.
func GetJSON(ctx context.Context, c Cache, key string, out interface{}) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON is the typed convenience wrapper over Cache.Set.
func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}

// Once implements the "should_process = cache.once(key, ttl)" pattern
// Once implements the dedup-gate contract consumers need: true iff the caller is the
// first to claim key within the TTL window.
func Once(ctx context.Context, c Cache, key string, ttl time.Duration) (bool, error) {
	return c.SetIfAbsent(ctx, key, []byte("1"), ttl)
}
