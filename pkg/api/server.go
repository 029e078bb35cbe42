// Package api serves a catalog over a read-only JSON HTTP API.
//
// Routes:
//
//	GET /healthz
//	GET /v1/layers
//	GET /v1/layers/{layer}/features
//	GET /v1/features?q=&layer=
//	GET /v1/features/{id}
//	GET /v1/features/{id}/chain?direction=upstream|downstream
//	GET /v1/features/{id}/related
//	GET /v1/order
//	GET /v1/graph
//	GET /v1/graph.dot
//	GET /v1/graph.svg
//	GET /v1/events    (websocket, reload notifications)
//	GET /metrics      (when a metrics handler is configured)
//
// The served catalog can be replaced while the server runs with
// [Server.Swap]; each request sees exactly one catalog.
package api

import (
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hyperhive/hivegraph/pkg/cache"
	"github.com/hyperhive/hivegraph/pkg/catalog"
)

// Options configures a [Server]. The zero value serves without caching,
// rate limiting or metrics.
type Options struct {
	Logger *log.Logger

	// Cache stores rendered diagrams. Nil disables caching.
	Cache    cache.Cache
	Keyer    cache.Keyer
	CacheTTL time.Duration

	// RateLimit is the sustained requests per second allowed per client
	// IP, with bursts of up to Burst. Zero disables limiting.
	RateLimit float64
	Burst     int

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
}

// Server is the HTTP API. Create one with [New].
type Server struct {
	current atomic.Pointer[catalog.Catalog]

	logger  *log.Logger
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	limiter *ipLimiter
	events  *hub
	metrics http.Handler
	router  chi.Router
}

// New creates a server for c.
func New(c *catalog.Catalog, opts Options) *Server {
	s := &Server{
		logger:  opts.Logger,
		cache:   opts.Cache,
		keyer:   opts.Keyer,
		ttl:     opts.CacheTTL,
		metrics: opts.Metrics,
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	if opts.RateLimit > 0 {
		s.limiter = newIPLimiter(opts.RateLimit, opts.Burst)
	}
	s.events = newHub(s.logger)
	s.current.Store(c)
	s.router = s.routes()
	return s
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Catalog returns the catalog currently being served.
func (s *Server) Catalog() *catalog.Catalog { return s.current.Load() }

// Swap replaces the served catalog and notifies /v1/events subscribers.
// Requests already in flight finish against the previous catalog.
func (s *Server) Swap(c *catalog.Catalog) {
	prev := s.current.Swap(c)
	if prev != nil && prev.Digest() == c.Digest() {
		return
	}
	s.logger.Info("catalog swapped", "features", c.Len(), "digest", c.Digest()[:12])
	s.events.broadcast(Event{Type: EventReload, Digest: c.Digest(), Features: c.Len()})
}

// Close disconnects event subscribers. It does not stop an
// [http.Server] serving s.
func (s *Server) Close() { s.events.close() }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	if s.limiter != nil {
		r.Use(s.limiter.middleware)
	}

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/layers", s.handleLayers)
		r.Get("/layers/{layer}/features", s.handleLayerFeatures)
		r.Get("/features", s.handleFeatures)
		r.Get("/features/{id}", s.handleFeature)
		r.Get("/features/{id}/chain", s.handleChain)
		r.Get("/features/{id}/related", s.handleRelated)
		r.Get("/order", s.handleOrder)
		r.Get("/graph", s.handleGraph)
		r.Get("/graph.dot", s.handleDiagram)
		r.Get("/graph.svg", s.handleDiagram)
		r.Get("/events", s.handleEvents)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errMethodNotAllowed(r))
	})
	return r
}
