// Package cache stores packed layouts and rendered artifacts keyed by
// content hash, so repeated conversions of an unchanged document skip the
// load and pack stages.
//
// Three backends implement [Cache]:
//   - [FileCache] for the CLI, one JSON file per entry under the user cache dir
//   - [RedisCache] for servers sharing a cache between instances
//   - [NullCache] when caching is disabled
//
// Keys come from a [Keyer], so callers never build key strings by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLs per cached stage.
const (
	// TTLLayout keeps packed layouts for a week; they only change when the
	// source content or padding changes, and both are part of the key.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact keeps rendered outputs for a day.
	TTLArtifact = 24 * time.Hour
)
