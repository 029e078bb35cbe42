// Package cli implements the hivegraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hyperhive/hivegraph/pkg/buildinfo"
	"github.com/hyperhive/hivegraph/pkg/cache"
	"github.com/hyperhive/hivegraph/pkg/catalog"
	"github.com/hyperhive/hivegraph/pkg/catalog/hyperhive"
	"github.com/hyperhive/hivegraph/pkg/config"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
	"github.com/hyperhive/hivegraph/pkg/graph"
	"github.com/hyperhive/hivegraph/pkg/observability"
	"github.com/hyperhive/hivegraph/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// sourceBuiltin names the embedded catalog in logs and metrics.
	sourceBuiltin = "builtin"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config config.Config

	// Env looks up environment overrides. Tests replace it.
	Env func(string) (string, bool)

	configPath  string
	catalogPath string
	lenient     bool
	noCache     bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		Env:    os.LookupEnv,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "hivegraph explores the HyperHive feature catalog",
		Long:              `hivegraph loads a catalog of infrastructure features, validates its dependency graph, and lets you search it, trace dependency chains, render diagrams and serve it over HTTP.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/hivegraph/config.toml)")
	pf.StringVar(&c.catalogPath, "catalog", "", "catalog file (.toml, .json or .yaml); default is the built-in catalog")
	pf.BoolVar(&c.lenient, "lenient", false, "treat depends_on/feeds_into mismatches as warnings")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable the render cache")

	root.AddCommand(c.layersCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.chainCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.pullCommand())
	root.AddCommand(c.catalogsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and applies persistent flags on top of it.
// The config log level can raise verbosity but never lowers --verbose.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath, c.Env)
	if err != nil {
		return err
	}
	if c.catalogPath != "" {
		cfg.Catalog.Path = c.catalogPath
	}
	if c.lenient {
		cfg.Catalog.Lenient = true
	}
	if c.noCache {
		cfg.Cache.Backend = "none"
	}
	c.Config = cfg

	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil && lvl < c.Logger.GetLevel() {
		c.Logger.SetLevel(lvl)
	}
	if c.Logger.GetLevel() <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetQueryHooks(hooks)
		observability.SetCacheHooks(hooks)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Catalog Loading
// =============================================================================

func (c *CLI) catalogOptions() []catalog.Option {
	opts := []catalog.Option{catalog.WithLogger(c.Logger)}
	if c.Config.Catalog.Lenient {
		opts = append(opts, catalog.WithLenientSymmetry())
	}
	return opts
}

// catalogSource returns the configured catalog path, or "builtin".
func (c *CLI) catalogSource() string {
	if c.Config.Catalog.Path == "" {
		return sourceBuiltin
	}
	return c.Config.Catalog.Path
}

// loadCatalog builds the configured catalog. The file format follows the
// extension: .json and .yaml documents as written by export, anything else
// is read as a TOML catalog.
func (c *CLI) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	return loadCatalogFrom(ctx, c.catalogSource(), c.catalogOptions()...)
}

func loadCatalogFrom(ctx context.Context, source string, opts ...catalog.Option) (*catalog.Catalog, error) {
	start := time.Now()
	var (
		cat *catalog.Catalog
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(source)); {
	case source == sourceBuiltin:
		cat, err = hyperhive.Load(opts...)
	case ext == ".json":
		cat, err = graph.ReadFile(source, opts...)
	case ext == ".yaml" || ext == ".yml":
		cat, err = readYAMLFile(source, opts...)
	default:
		cat, err = catalog.LoadFile(source, opts...)
	}

	features := 0
	if cat != nil {
		features = cat.Len()
	}
	observability.Query().OnCatalogLoad(ctx, source, features, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("catalog loaded", "source", source, "features", features, "digest", cat.Digest()[:12])
	return cat, nil
}

// observe reports a query that started at start to the query hooks.
func observe(ctx context.Context, kind string, start time.Time, results int) {
	observability.Query().OnQuery(ctx, kind, results, time.Since(start))
}

func readYAMLFile(path string, opts ...catalog.Option) (*catalog.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, herrors.Wrap(herrors.ErrCodeCatalogNotFound, err, "open %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return graph.ReadYAML(f, opts...)
}

// =============================================================================
// Backend Factories
// =============================================================================

// newCache opens the configured render cache, instrumented for metrics.
// A Redis cache that cannot be reached degrades to no caching.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	cfg := c.Config.Cache
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.Prefix,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.RedisAddr, "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.Instrument(rc), nil
	default:
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return cache.Instrument(fc), nil
	}
}

// openStore opens the configured catalog store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Store
	return store.Open(ctx, store.Config{
		Backend: cfg.Backend,
		Dir:     cfg.Dir,
		Mongo: store.MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		},
	}, c.Logger)
}
