package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes query and cache events to a logger at debug level. The
// CLI registers it in verbose mode.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks { return &LogHooks{Logger: l} }

func (h *LogHooks) OnCatalogLoad(_ context.Context, source string, features int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("catalog load failed", "source", source, "duration", d, "error", err)
		return
	}
	h.Logger.Debug("catalog load", "source", source, "features", features, "duration", d)
}

func (h *LogHooks) OnQuery(_ context.Context, kind string, results int, d time.Duration) {
	h.Logger.Debug("query", "kind", kind, "results", results, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnCacheError(_ context.Context, keyType string, err error) {
	h.Logger.Warn("cache error", "type", keyType, "error", err)
}

var (
	_ QueryHooks = (*LogHooks)(nil)
	_ CacheHooks = (*LogHooks)(nil)
)
