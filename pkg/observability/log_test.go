package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	h.OnCatalogLoad(ctx, "builtin", 20, time.Millisecond, nil)
	h.OnQuery(ctx, QueryChain, 17, time.Microsecond)
	h.OnCacheMiss(ctx, "artifact")
	h.OnCacheSet(ctx, "artifact", 512)
	h.OnCacheError(ctx, "artifact", errors.New("connection refused"))

	out := buf.String()
	for _, want := range []string{
		"catalog load", "source=builtin", "features=20",
		"query", "kind=chain", "results=17",
		"cache miss", "cache set", "bytes=512",
		"cache error", "connection refused",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output lacks %q:\n%s", want, out)
		}
	}
}

func TestLogHooksQuietAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))

	h.OnQuery(context.Background(), QueryFilter, 3, time.Microsecond)
	h.OnCacheHit(context.Background(), "artifact")
	if buf.Len() != 0 {
		t.Errorf("debug events should be dropped at info level, got %q", buf.String())
	}
}
