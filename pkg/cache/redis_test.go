package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

func newOfflineRedis(prefix string) *RedisCache {
	// Nothing listens on port 1; these tests never reach the network.
	return NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), prefix)
}

func TestRedisCacheClearNeedsPrefix(t *testing.T) {
	c := newOfflineRedis("")
	defer c.Close()

	if err := c.Clear(context.Background()); err == nil {
		t.Error("Clear without prefix should refuse")
	}
}

func TestRedisCacheWrap(t *testing.T) {
	c := newOfflineRedis("p:")
	defer c.Close()

	if c.wrap("get", nil) != nil {
		t.Error("wrap(nil) should be nil")
	}

	err := c.wrap("get", errors.New("connection refused"))
	if !IsRetryable(err) || !errors.Is(err, ErrBackend) {
		t.Errorf("wrap(conn error) = %v, want retryable ErrBackend", err)
	}

	for _, ctxErr := range []error{context.Canceled, context.DeadlineExceeded} {
		if err := c.wrap("get", ctxErr); IsRetryable(err) || !errors.Is(err, ctxErr) {
			t.Errorf("wrap(%v) = %v, want the context error unchanged", ctxErr, err)
		}
	}
}

func TestRedisCacheCancelledContext(t *testing.T) {
	c := newOfflineRedis("p:")
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, hit, err := c.Get(ctx, "k"); hit || err == nil {
		t.Errorf("Get with cancelled context: hit=%v err=%v, want error", hit, err)
	}
}
