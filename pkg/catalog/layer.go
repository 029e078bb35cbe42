package catalog

import (
	"strings"

	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// Layer classifies a feature by its role in the infrastructure stack.
type Layer string

// The fixed layer enumeration, in declared order.
const (
	LayerStorage        Layer = "layer0"
	LayerNetworkStorage Layer = "layer1"
	LayerCompute        Layer = "layer2"
	LayerEdge           Layer = "edge"
	LayerAccess         Layer = "access"
	LayerOperations     Layer = "operations"
	LayerAssets         Layer = "assets"
)

// LayerInfo carries the display data for a layer.
type LayerInfo struct {
	ID          Layer  `json:"id" yaml:"id" bson:"id"`
	Label       string `json:"label" yaml:"label" bson:"label"`
	Description string `json:"description" yaml:"description" bson:"description"`
	Color       string `json:"color" yaml:"color" bson:"color"`
}

// layers is the declared order used for top-to-bottom rendering, from the
// storage foundation up to operations, with assets last.
var layers = [...]LayerInfo{
	{LayerStorage, "Layer 0 - Storage Foundation", "Where storage becomes reliable", "#803030"},
	{LayerNetworkStorage, "Layer 1 - Network Storage", "How storage reaches the cluster", "#389088"},
	{LayerCompute, "Layer 2 - Compute", "Where workloads run", "#4A90E2"},
	{LayerEdge, "Edge - Routing", "How services are exposed", "#9B59B6"},
	{LayerAccess, "Secure Access", "How access is protected", "#E67E22"},
	{LayerOperations, "Operations", "How the stack is maintained and recovered", "#95A5A6"},
	{LayerAssets, "Assets", "Resources that power compute", "#F39C12"},
}

var layerAliases = map[string]Layer{
	"storage-foundation": LayerStorage,
	"storage":            LayerStorage,
	"network-storage":    LayerNetworkStorage,
	"compute":            LayerCompute,
	"edge-routing":       LayerEdge,
	"secure-access":      LayerAccess,
	"ops":                LayerOperations,
}

// AllLayers returns the layer enumeration in declared order.
// The returned slice is a copy.
func AllLayers() []LayerInfo {
	out := make([]LayerInfo, len(layers))
	copy(out, layers[:])
	return out
}

// Valid reports whether l is part of the enumeration.
func (l Layer) Valid() bool {
	return l.Rank() >= 0
}

// Rank returns the position of l in the declared order, or -1.
func (l Layer) Rank() int {
	for i, info := range layers {
		if info.ID == l {
			return i
		}
	}
	return -1
}

// Info returns the display data for l. The zero LayerInfo is returned
// for layers outside the enumeration.
func (l Layer) Info() LayerInfo {
	if r := l.Rank(); r >= 0 {
		return layers[r]
	}
	return LayerInfo{}
}

// String returns the layer id.
func (l Layer) String() string { return string(l) }

// ParseLayer converts user input to a Layer. Matching is case-insensitive
// and accepts descriptive aliases such as "network-storage" or "compute".
func ParseLayer(s string) (Layer, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if l := Layer(key); l.Valid() {
		return l, nil
	}
	if l, ok := layerAliases[key]; ok {
		return l, nil
	}
	return "", herrors.New(herrors.ErrCodeInvalidLayer, "unknown layer %q", s)
}

// ParseLayers parses each entry of ss, skipping empty strings.
func ParseLayers(ss []string) ([]Layer, error) {
	var out []Layer
	for _, s := range ss {
		if strings.TrimSpace(s) == "" {
			continue
		}
		l, err := ParseLayer(s)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
