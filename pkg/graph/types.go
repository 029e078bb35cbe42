package graph

import (
	"slices"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// FormatVersion is bumped whenever the document layout changes in a way
// older readers cannot handle.
const FormatVersion = 1

// =============================================================================
// Document - Catalog Export Format
// =============================================================================

// Document is the canonical serialization of a catalog. It is used for JSON
// exports, API responses, and documents stored in MongoDB.
//
// Features carry the full catalog content and are enough to rebuild it.
// Layers and Graph are derived views for consumers that draw the catalog
// without re-implementing its indexing.
type Document struct {
	Version  int                 `json:"version" yaml:"version" bson:"version"`
	Digest   string              `json:"digest" yaml:"digest" bson:"digest"`
	Layers   []catalog.LayerInfo `json:"layers" yaml:"layers" bson:"layers"`
	Features []catalog.Feature   `json:"features" yaml:"features" bson:"features"`
	Graph    Graph               `json:"graph" yaml:"graph" bson:"graph"`
}

// =============================================================================
// Graph - Node-Link View
// =============================================================================

// Graph is the node-link view of the catalog's relations.
//
//	{
//	  "nodes": [{"id": "nfs", "label": "NFS", "layer": "layer1", "row": 1}],
//	  "edges": [{"from": "btrfs-raids", "to": "nfs"}]
//	}
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges" bson:"edges"`
}

// Node is one feature in the node-link view.
type Node struct {
	ID    string        `json:"id" yaml:"id" bson:"id"`
	Label string        `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Layer catalog.Layer `json:"layer" yaml:"layer" bson:"layer"`
	Row   int           `json:"row" yaml:"row" bson:"row"` // layer rank, 0 at the foundation
	Icon  catalog.Icon  `json:"icon,omitempty" yaml:"icon,omitempty" bson:"icon,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge points from a prerequisite to the feature that depends on it.
type Edge struct {
	From string `json:"from" yaml:"from" bson:"from"`
	To   string `json:"to" yaml:"to" bson:"to"`
}

// =============================================================================
// Catalog ↔ Document Conversion
// =============================================================================

// FromCatalog converts a catalog to its serialization format. Features and
// nodes keep catalog order; edges keep the order in which the catalog
// discovered them, so the output is deterministic.
func FromCatalog(c *catalog.Catalog) Document {
	features := c.Features()
	g := c.Graph()

	doc := Document{
		Version:  FormatVersion,
		Digest:   c.Digest(),
		Layers:   c.Layers(),
		Features: features,
		Graph: Graph{
			Nodes: make([]Node, len(features)),
			Edges: make([]Edge, 0, g.EdgeCount()),
		},
	}
	for i, f := range features {
		doc.Graph.Nodes[i] = Node{
			ID:    f.ID,
			Label: f.Name,
			Layer: f.Layer,
			Row:   f.Layer.Rank(),
			Icon:  f.Icon,
		}
	}
	for _, e := range g.Edges() {
		doc.Graph.Edges = append(doc.Graph.Edges, Edge{From: e.From, To: e.To})
	}
	return doc
}

// ToCatalog rebuilds the catalog described by doc. The derived Layers and
// Graph sections are ignored. A non-empty Digest must match the rebuilt
// catalog, which catches documents edited without re-exporting.
func ToCatalog(doc Document, opts ...catalog.Option) (*catalog.Catalog, error) {
	if doc.Version > FormatVersion {
		return nil, herrors.New(herrors.ErrCodeUnsupported,
			"document version %d is newer than supported version %d", doc.Version, FormatVersion)
	}
	c, err := catalog.New(doc.Features, opts...)
	if err != nil {
		return nil, err
	}
	if doc.Digest != "" && doc.Digest != c.Digest() {
		return nil, herrors.New(herrors.ErrCodeInvalidCatalog,
			"digest mismatch: document says %s, content hashes to %s", short(doc.Digest), short(c.Digest()))
	}
	return c, nil
}

// NodeIDs returns the node ids in document order.
func (g Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// HasEdge reports whether the edge from→to is present.
func (g Graph) HasEdge(from, to string) bool {
	return slices.Contains(g.Edges, Edge{From: from, To: to})
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
