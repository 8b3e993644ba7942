// Package cache provides a small byte-oriented cache abstraction with
// file, Redis and no-op backends.
//
// The CLI uses [FileCache] under the user's cache directory so repeated
// resolutions do not hit the registry again. A shared deployment of the
// HTTP API uses [RedisCache] so every instance sees the same registry
// responses and loading graphs. Tests and `--no-cache` use [NullCache].
//
// Keys are produced by a [Keyer], never assembled by hand, so different
// cache users cannot collide:
//
//	keyer := cache.NewDefaultKeyer()
//	data, hit, err := c.Get(ctx, keyer.HTTPKey("registry:", id))
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// TTLs for the different kinds of cached data.
const (
	// TTLHTTP bounds how long a registry response (version list, metadata)
	// is reused before the registry is asked again.
	TTLHTTP = 24 * time.Hour

	// TTLResolve bounds how long a computed loading graph is served for an
	// identical request.
	TTLResolve = time.Hour
)

// Cache stores opaque byte values under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value stored under key. A miss is reported as
	// hit == false with a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DefaultDir returns the directory the CLI caches into:
// $XDG_CACHE_HOME/cdnlock, falling back to ~/.cache/cdnlock.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "cdnlock"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "cdnlock"), nil
}

// NullCache stores nothing. Every Get misses. It backs --no-cache and the
// "none" backend.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error { return nil }
func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
