// Package interfaces defines the core interfaces used throughout the client.
// These interfaces allow for dependency injection and make the dispatcher testable.
package interfaces

import (
	"context"
	"errors"
	"time"
)

// Cache defines the interface for cache operations.
// The dispatcher uses it to keep the last good body of idempotent reads so a
// sleeping backend can be answered with stale data.
//
// Example usage:
//
//	cache := someCache // implements Cache interface
//
//	// Store a page of posts
//	err := cache.Set(ctx, "quill:GET /api/allpost?page=1", body, 10*time.Minute)
//
//	// Retrieve it again
//	data, err := cache.Get(ctx, "quill:GET /api/allpost?page=1")
//	if err != nil {
//		// handle error or cache miss
//	}
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns the cached data as []byte or an error if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the given key and TTL.
	// If ttl is 0, the value should be stored indefinitely.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error
}

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")
