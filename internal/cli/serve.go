package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hyperhive/hivegraph/pkg/api"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
	"github.com/hyperhive/hivegraph/pkg/observability"
	"github.com/hyperhive/hivegraph/pkg/watch"
)

const shutdownTimeout = 5 * time.Second

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		watchFile bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over a JSON HTTP API",
		Long: `Serve the catalog over a read-only JSON HTTP API with Prometheus
metrics at /metrics.

With --watch, a file catalog is reloaded whenever it changes on disk. A
reload that fails validation is logged and the previous catalog keeps
serving.`,
		Example: `  hivegraph serve
  hivegraph serve --catalog ./catalog.toml --watch --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				c.Config.Server.Watch = watchFile
			}
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&watchFile, "watch", false, "reload the catalog file when it changes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	cfg := c.Config.Server
	if cfg.Watch && c.catalogSource() == sourceBuiltin {
		return herrors.New(herrors.ErrCodeInvalidConfig, "--watch needs a catalog file (--catalog)")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)
	observability.SetQueryHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	cat, err := c.loadCatalog(ctx)
	if err != nil {
		return err
	}

	ch, err := c.newCache(ctx)
	if err != nil {
		return err
	}
	defer ch.Close()

	srv := api.New(cat, api.Options{
		Logger:    c.Logger,
		Cache:     ch,
		CacheTTL:  c.Config.Cache.TTL,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})
	defer srv.Close()

	var w *watch.Watcher
	if cfg.Watch {
		if w, err = watch.New(c.catalogSource(), c.reloader(srv), watch.WithLogger(c.Logger)); err != nil {
			return err
		}
		defer w.Close()
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.Logger.Info("serving", "addr", "http://"+ln.Addr().String(), "features", cat.Len(), "source", c.catalogSource())
		if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		srv.Close()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if w != nil {
		g.Go(func() error { return w.Run(gctx) })
		c.Logger.Info("watching", "path", w.Path())
	}

	err = g.Wait()
	c.Logger.Info("server stopped")
	return err
}

// reloader returns the watch callback that rebuilds the catalog and swaps
// it into srv. A catalog that fails to load leaves srv untouched.
func (c *CLI) reloader(srv *api.Server) func(context.Context) {
	return func(ctx context.Context) {
		prog := newProgress(c.Logger)
		cat, err := loadCatalogFrom(ctx, c.catalogSource(), c.catalogOptions()...)
		if err != nil {
			c.Logger.Error("reload failed, keeping previous catalog", "error", herrors.UserMessage(err))
			return
		}
		srv.Swap(cat)
		prog.done("Reloaded " + c.catalogSource())
	}
}
