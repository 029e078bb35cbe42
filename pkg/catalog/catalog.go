package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/hyperhive/hivegraph/pkg/dag"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// Catalog is an immutable, validated set of features.
//
// A Catalog is built once by [New] and never mutated afterwards, so it can be
// shared between goroutines without synchronization. Every accessor returns
// copies of the stored features.
type Catalog struct {
	features []Feature
	index    map[string]int
	byLayer  map[Layer][]int
	graph    *dag.DAG
	cycles   [][]string
	warnings []error
	digest   string
}

type options struct {
	lenientSymmetry bool
	logger          *log.Logger
}

// Option configures catalog construction.
type Option func(*options)

// WithLenientSymmetry downgrades depends_on/feeds_into mismatches from
// construction errors to warnings. The edge set used for traversal is then
// the union of both lists.
func WithLenientSymmetry() Option {
	return func(o *options) { o.lenientSymmetry = true }
}

// WithLogger logs construction warnings (cycles, lenient asymmetries).
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New validates features and builds a catalog from them. The input slice is
// copied, so later changes to it do not affect the catalog.
//
// Any integrity violation (bad ids, duplicates, unknown layers or icons,
// unsafe links, dangling or self references, asymmetric edges) fails
// construction with an INVALID_CATALOG error joining every violation.
// Dependency cycles do not fail construction; they are available from
// [Catalog.Cycles] and [Catalog.Warnings].
func New(features []Feature, opts ...Option) (*Catalog, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	owned := make([]Feature, len(features))
	for i, f := range features {
		owned[i] = f.normalized()
	}

	v := validateFeatures(owned, o)
	if v.failed() {
		return nil, herrors.Wrap(herrors.ErrCodeInvalidCatalog, v.joined(),
			"catalog has %d violation(s)", v.count())
	}

	c := &Catalog{
		features: owned,
		index:    make(map[string]int, len(owned)),
		byLayer:  make(map[Layer][]int),
		graph:    dag.New(),
	}
	for i, f := range owned {
		c.index[f.ID] = i
		c.byLayer[f.Layer] = append(c.byLayer[f.Layer], i)
		if err := c.graph.AddNode(dag.Node{ID: f.ID, Row: f.Layer.Rank()}); err != nil {
			return nil, herrors.Wrap(herrors.ErrCodeInternal, err, "index feature %s", f.ID)
		}
	}
	for _, f := range owned {
		for _, dep := range f.DependsOn {
			if err := c.graph.AddEdge(dag.Edge{From: dep, To: f.ID}); err != nil {
				return nil, herrors.Wrap(herrors.ErrCodeInternal, err, "index edge %s→%s", dep, f.ID)
			}
		}
		for _, feed := range f.FeedsInto {
			if err := c.graph.AddEdge(dag.Edge{From: f.ID, To: feed}); err != nil {
				return nil, herrors.Wrap(herrors.ErrCodeInternal, err, "index edge %s→%s", f.ID, feed)
			}
		}
	}

	c.warnings = v.warnings
	c.cycles = c.graph.Cycles()
	for _, cyc := range c.cycles {
		c.warnings = append(c.warnings, herrors.New(herrors.ErrCodeCycle,
			"dependency cycle: %s → %s", strings.Join(cyc, " → "), cyc[0]))
	}
	if o.logger != nil {
		for _, w := range c.warnings {
			o.logger.Warn("catalog", "warning", herrors.UserMessage(w), "code", herrors.GetCode(w))
		}
	}

	digest, err := computeDigest(owned)
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInternal, err, "compute digest")
	}
	c.digest = digest
	return c, nil
}

// MustNew is like [New] but panics on error. It is intended for catalogs
// declared in tests and examples.
func MustNew(features []Feature, opts ...Option) *Catalog {
	c, err := New(features, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func computeDigest(features []Feature) (string, error) {
	data, err := json.Marshal(features)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Len returns the number of features.
func (c *Catalog) Len() int { return len(c.features) }

// Features returns every feature in catalog (insertion) order.
func (c *Catalog) Features() []Feature {
	return c.collect(nil)
}

// Get returns the feature with the given id. Absence is reported through the
// boolean and is never an error: callers routinely resolve stale ids.
func (c *Catalog) Get(id string) (Feature, bool) {
	i, ok := c.index[id]
	if !ok {
		return Feature{}, false
	}
	return c.features[i].clone(), true
}

// Has reports whether a feature with the given id exists.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// ByLayer returns the features of one layer in catalog order. Layers outside
// the enumeration, and layers without features, yield an empty slice.
func (c *Catalog) ByLayer(l Layer) []Feature {
	idx := c.byLayer[l]
	out := make([]Feature, len(idx))
	for i, j := range idx {
		out[i] = c.features[j].clone()
	}
	return out
}

// Layers returns the layer enumeration in declared order.
func (c *Catalog) Layers() []LayerInfo { return AllLayers() }

// LayerIDs returns the layer ids in declared order.
func (c *Catalog) LayerIDs() []Layer {
	out := make([]Layer, len(layers))
	for i, info := range layers {
		out[i] = info.ID
	}
	return out
}

// Cycles returns the dependency cycles found at construction, each as a
// path whose last node depends back on the first. Nil for an acyclic catalog.
func (c *Catalog) Cycles() [][]string {
	out := make([][]string, len(c.cycles))
	for i, cyc := range c.cycles {
		out[i] = append([]string(nil), cyc...)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Warnings returns non-fatal findings from construction: cycles and, with
// [WithLenientSymmetry], asymmetric edges.
func (c *Catalog) Warnings() []error {
	return append([]error(nil), c.warnings...)
}

// Digest returns a SHA-256 hex digest of the catalog content. Equal
// catalogs have equal digests, which makes it suitable as a cache key.
func (c *Catalog) Digest() string { return c.digest }

// Graph returns a copy of the catalog's dependency graph. Edges point from a
// prerequisite to the feature it enables; node rows are layer ranks.
func (c *Catalog) Graph() *dag.DAG {
	g := dag.New()
	for _, n := range c.graph.Nodes() {
		_ = g.AddNode(dag.Node{ID: n.ID, Row: n.Row})
	}
	for _, e := range c.graph.Edges() {
		_ = g.AddEdge(dag.Edge{From: e.From, To: e.To})
	}
	return g
}

// collect clones features by id, in the order given. A nil ids slice means
// every feature in catalog order. Unknown ids are skipped.
func (c *Catalog) collect(ids []string) []Feature {
	if ids == nil {
		out := make([]Feature, len(c.features))
		for i, f := range c.features {
			out[i] = f.clone()
		}
		return out
	}
	out := make([]Feature, 0, len(ids))
	for _, id := range ids {
		if i, ok := c.index[id]; ok {
			out = append(out, c.features[i].clone())
		}
	}
	return out
}
