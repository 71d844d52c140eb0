package storage

import (
	"context"
	"errors"
	"time"
)

var ErrURLNotProvided = errors.New("redis storage URL not provided")

// Store is the key-value command surface the repositories are built on:
// hash records for entities, plain string keys for secondary index entries,
// and a pipelined increment for rate-limit counters.
type Store interface {
	// HSet writes fields into the hash at key, creating it if absent.
	HSet(ctx context.Context, key string, fields map[string]string) error
	// HGetAll returns every field of the hash at key.
	// An absent key yields an empty map, not an error.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// Keys lists keys matching pattern. Full key-space scan; acceptable
	// only for small-to-moderate collections.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Get returns the string value at key, or "" if the key does not exist.
	Get(ctx context.Context, key string) (string, error)
	// Set stores a string value. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Del removes keys. Deleting an absent key is not an error.
	Del(ctx context.Context, keys ...string) error

	// IncrWithExpire increments the integer at key and (re)applies ttl,
	// both issued as one atomic pipeline. The expiry is refreshed on every
	// call, so the window slides with traffic.
	IncrWithExpire(ctx context.Context, key string, ttl time.Duration) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
