package cache

import (
	"context"
	"time"

	"github.com/hyperhive/hivegraph/pkg/observability"
)

// instrumented reports every operation of the wrapped cache to the
// registered observability cache hooks.
type instrumented struct {
	Cache
}

// Instrument wraps c so that hits, misses, writes and errors are reported
// through [observability.Cache]. The key type label comes from [KeyType].
func Instrument(c Cache) Cache {
	if _, ok := c.(instrumented); ok {
		return c
	}
	return instrumented{Cache: c}
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	hooks := observability.Cache()
	switch {
	case err != nil:
		hooks.OnCacheError(ctx, KeyType(key), err)
	case hit:
		hooks.OnCacheHit(ctx, KeyType(key))
	default:
		hooks.OnCacheMiss(ctx, KeyType(key))
	}
	return data, hit, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err != nil {
		observability.Cache().OnCacheError(ctx, KeyType(key), err)
		return err
	}
	observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	return nil
}

// Clear forwards to the wrapped cache when it supports clearing.
func (c instrumented) Clear(ctx context.Context) error {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}
