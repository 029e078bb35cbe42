package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hyperhive/hivegraph/pkg/cache"
	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
	"github.com/hyperhive/hivegraph/pkg/graph"
	"github.com/hyperhive/hivegraph/pkg/observability"
	"github.com/hyperhive/hivegraph/pkg/render/nodelink"
)

// =============================================================================
// Response Types
// =============================================================================

// Health is the body of /healthz.
type Health struct {
	Status   string `json:"status"`
	Features int    `json:"features"`
	Digest   string `json:"digest"`
}

// LayerSummary is a layer with its feature count.
type LayerSummary struct {
	catalog.LayerInfo
	Count int `json:"count"`
}

// LayerFeatures is the body of /v1/layers/{layer}/features.
type LayerFeatures struct {
	Layer    catalog.LayerInfo `json:"layer"`
	Features []catalog.Feature `json:"features"`
}

// FeatureDetail is a feature with its cross references resolved. Ids that
// no longer name a feature are listed in Stale.
type FeatureDetail struct {
	Feature   catalog.Feature   `json:"feature"`
	DependsOn []catalog.Feature `json:"dependsOn"`
	FeedsInto []catalog.Feature `json:"feedsInto"`
	Stale     []string          `json:"stale"`
}

// Chain is the body of /v1/features/{id}/chain.
type Chain struct {
	ID        string            `json:"id"`
	Direction catalog.Direction `json:"direction"`
	Features  []catalog.Feature `json:"features"`
}

// Related is the body of /v1/features/{id}/related.
type Related struct {
	ID       string            `json:"id"`
	Features []catalog.Feature `json:"features"`
}

// Order is the body of /v1/order.
type Order struct {
	Features []catalog.Feature `json:"features"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	c := s.Catalog()
	writeJSON(w, http.StatusOK, Health{Status: "ok", Features: c.Len(), Digest: c.Digest()})
}

func (s *Server) handleLayers(w http.ResponseWriter, r *http.Request) {
	c := s.Catalog()
	out := make([]LayerSummary, 0, len(c.Layers()))
	for _, info := range c.Layers() {
		out = append(out, LayerSummary{LayerInfo: info, Count: len(c.ByLayer(info.ID))})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLayerFeatures(w http.ResponseWriter, r *http.Request) {
	l, err := catalog.ParseLayer(chi.URLParam(r, "layer"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	c := s.Catalog()
	features := timed(r.Context(), observability.QueryLayer, func() []catalog.Feature {
		return c.ByLayer(l)
	})
	writeJSON(w, http.StatusOK, LayerFeatures{Layer: l.Info(), Features: features})
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c := s.Catalog()
	start := time.Now()
	res := c.Filter(q)
	observability.Query().OnQuery(r.Context(), observability.QueryFilter, len(res.Features), time.Since(start))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFeature(w http.ResponseWriter, r *http.Request) {
	c, f, ok := s.lookup(w, r)
	if !ok {
		return
	}
	d := FeatureDetail{Feature: f}
	var stale []string
	d.DependsOn, stale = c.Resolve(f.DependsOn)
	d.Stale = append(d.Stale, stale...)
	d.FeedsInto, stale = c.Resolve(f.FeedsInto)
	d.Stale = append(d.Stale, stale...)
	if d.Stale == nil {
		d.Stale = []string{}
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	dir := catalog.Upstream
	if v := r.URL.Query().Get("direction"); v != "" {
		var err error
		if dir, err = catalog.ParseDirection(v); err != nil {
			writeError(w, r, err)
			return
		}
	}
	c, f, ok := s.lookup(w, r)
	if !ok {
		return
	}
	features := timed(r.Context(), observability.QueryChain, func() []catalog.Feature {
		return c.Chain(f.ID, dir)
	})
	writeJSON(w, http.StatusOK, Chain{ID: f.ID, Direction: dir, Features: features})
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	c, f, ok := s.lookup(w, r)
	if !ok {
		return
	}
	features := timed(r.Context(), observability.QueryRelated, func() []catalog.Feature {
		return c.Related(f.ID)
	})
	writeJSON(w, http.StatusOK, Related{ID: f.ID, Features: features})
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	c := s.Catalog()
	start := time.Now()
	features, err := c.InstallOrder()
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.Query().OnQuery(r.Context(), observability.QueryOrder, len(features), time.Since(start))
	writeJSON(w, http.StatusOK, Order{Features: features})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, graph.FromCatalog(s.Catalog()))
}

// handleDiagram serves /v1/graph.dot and /v1/graph.svg. Query parameters
// detailed=true and layer=<id> (repeatable) select what is drawn.
func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	format := nodelink.FormatDOT
	if strings.HasSuffix(r.URL.Path, ".svg") {
		format = nodelink.FormatSVG
	}

	opts, err := parseDiagramOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c := s.Catalog()
	key := s.keyer.ArtifactKey(c.Digest(), cache.ArtifactKeyOpts{
		Format:   string(format),
		Detailed: opts.Detailed,
		Layers:   layerStrings(opts.Layers),
	})
	etag := strconv.Quote(cache.Hash([]byte(key))[:16])
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	data, cacheErr, err := cache.GetOrCompute(r.Context(), s.cache, key, s.ttl, func() ([]byte, error) {
		return nodelink.Render(r.Context(), nodelink.ToDOT(c, opts), format)
	})
	if cacheErr != nil {
		s.logger.Warn("diagram cache", "key", key, "error", cacheErr)
	}
	if err != nil {
		writeError(w, r, herrors.Wrap(herrors.ErrCodeInternal, err, "render %s", format))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// =============================================================================
// Helpers
// =============================================================================

// etagMatches reports whether an If-None-Match header lists etag. Weak
// validators compare equal to their strong form.
func etagMatches(header, etag string) bool {
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "W/")
		if tag == "*" || tag == etag {
			return true
		}
	}
	return false
}

// lookup resolves the {id} URL parameter, writing an error response when
// the id is malformed or unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*catalog.Catalog, catalog.Feature, bool) {
	id := chi.URLParam(r, "id")
	if err := herrors.ValidateFeatureID(id); err != nil {
		writeError(w, r, err)
		return nil, catalog.Feature{}, false
	}
	c := s.Catalog()
	start := time.Now()
	f, ok := c.Get(id)
	results := 0
	if ok {
		results = 1
	}
	observability.Query().OnQuery(r.Context(), observability.QueryGet, results, time.Since(start))
	if !ok {
		writeError(w, r, errFeatureNotFound(id))
		return nil, catalog.Feature{}, false
	}
	return c, f, true
}

func timed(ctx context.Context, kind string, fn func() []catalog.Feature) []catalog.Feature {
	start := time.Now()
	out := fn()
	observability.Query().OnQuery(ctx, kind, len(out), time.Since(start))
	return out
}

func parseQuery(r *http.Request) (catalog.Query, error) {
	v := r.URL.Query()
	text := v.Get("q")
	if err := herrors.ValidateQueryText(text); err != nil {
		return catalog.Query{}, err
	}
	layers, err := catalog.ParseLayers(splitList(v["layer"]))
	if err != nil {
		return catalog.Query{}, err
	}
	return catalog.Query{Text: text, Layers: layers}, nil
}

func parseDiagramOptions(r *http.Request) (nodelink.Options, error) {
	v := r.URL.Query()
	var opts nodelink.Options
	if d := v.Get("detailed"); d != "" {
		b, err := strconv.ParseBool(d)
		if err != nil {
			return opts, herrors.New(herrors.ErrCodeInvalidInput, "detailed must be a boolean, got %q", d)
		}
		opts.Detailed = b
	}
	layers, err := catalog.ParseLayers(splitList(v["layer"]))
	if err != nil {
		return opts, err
	}
	opts.Layers = layers
	return opts, nil
}

// splitList accepts both ?layer=a&layer=b and ?layer=a,b.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

func layerStrings(ls []catalog.Layer) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = string(l)
	}
	return out
}
