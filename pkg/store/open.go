package store

import (
	"context"

	"github.com/charmbracelet/log"

	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Dir is the directory for the file and badger backends.
	Dir   string
	Mongo MongoOptions
}

// Open returns the backend named by cfg.Backend. An empty backend means
// [BackendFile].
func Open(ctx context.Context, cfg Config, logger *log.Logger) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendBadger:
		return OpenBadger(BadgerOptions{Dir: cfg.Dir, Logger: logger})
	case BackendMongo:
		return OpenMongo(ctx, cfg.Mongo)
	}
	return nil, herrors.New(herrors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
}
