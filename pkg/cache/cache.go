// Package cache stores rendered artifacts keyed by catalog content.
//
// Rendering a catalog through Graphviz is the only expensive operation in
// hivegraph, and its output depends only on the catalog digest and the
// render options. Keys built by a [Keyer] capture both, so entries never go
// stale: a changed catalog simply produces new keys.
//
// Three backends are provided:
//
//   - [NullCache]: stores nothing (caching disabled)
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for server deployments
//
// Wrap any backend with [Instrument] to report hits and misses through
// the observability hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with optional expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// NullCache is a no-op cache that never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(context.Context, string) ([]byte, bool, error)          { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Clear(context.Context) error                              { return nil }
func (NullCache) Close() error                                             { return nil }

var (
	_ Cache   = NullCache{}
	_ Clearer = NullCache{}
)

// GetOrCompute returns the cached value for key, or calls compute, stores
// its result with ttl and returns it. Cache read and write failures are not
// fatal: the value is computed (or returned) anyway, and the first cache
// error is reported alongside it so the caller can log it.
func GetOrCompute(ctx context.Context, c Cache, key string, ttl time.Duration, compute func() ([]byte, error)) (data []byte, cacheErr, err error) {
	data, hit, cacheErr := c.Get(ctx, key)
	if hit {
		return data, nil, nil
	}
	data, err = compute()
	if err != nil {
		return nil, cacheErr, err
	}
	if setErr := c.Set(ctx, key, data, ttl); setErr != nil && cacheErr == nil {
		cacheErr = setErr
	}
	return data, cacheErr, nil
}
