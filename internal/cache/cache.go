// Package cache implements the shared, TTL'd key-value contract that
// the Job Scheduler, the Consumer Framework and the notification fan-out
// use for status caching and dedup: a narrow interface in front of a
// production (Redis) and an in-memory implementation, so tests never
// need a real Redis instance.
package cache

import (
	"context"
	"time"
)

// Cache is the minimal contract this repository requires. Values are
// opaque []byte; callers serialize their own structured values (see
// codec.go) so the interface stays backend-agnostic.
type Cache interface {
	// Get returns the stored bytes and true, or nil/false if absent or
	// expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key with the given ttl. ttl <= 0 means no
	// expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetIfAbsent atomically stores value under key only if key is
	// currently absent, returning true iff this caller won the race.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Key namespacing helpers, matching the dedup-key convention used throughout.
func JobStatusKey(service, job string) string {
	return "job_status:" + service + ":" + job
}

func ConsumerStatusKey(queue string) string {
	return "consumer_status:" + queue
}

func DedupKey(kind, id string) string {
	return "dedup:" + kind + ":" + id
}

func OnceKey(kind, id string) string {
	return "once:" + kind + ":" + id
}
