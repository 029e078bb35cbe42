package catalog

import (
	"slices"
	"strings"

	"github.com/hyperhive/hivegraph/pkg/dag"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// Query selects features for the explorer. The zero Query applies no filter.
type Query struct {
	// Text is matched case-insensitively as a substring of the name, the
	// short description, or any keyword. Surrounding whitespace is ignored.
	Text string
	// Layers keeps only features in one of these layers when non-empty.
	Layers []Layer
}

// IsZero reports whether q applies no filter at all.
func (q Query) IsZero() bool {
	return strings.TrimSpace(q.Text) == "" && len(q.Layers) == 0
}

// Result is the outcome of [Catalog.Filter].
type Result struct {
	// Features that matched, in catalog order.
	Features []Feature `json:"features"`
	// Total is the size of the whole catalog.
	Total int `json:"total"`
	// Filtered is false when the query applied no filter. An empty
	// Features slice with Filtered set means nothing matched.
	Filtered bool `json:"filtered"`
}

// Filter applies q to the catalog. The layer and text conditions are ANDed.
// Results keep catalog order and are not ranked. An empty result is a valid
// outcome, not an error.
func (c *Catalog) Filter(q Query) Result {
	res := Result{Total: len(c.features), Filtered: !q.IsZero()}
	text := strings.ToLower(strings.TrimSpace(q.Text))

	res.Features = make([]Feature, 0, len(c.features))
	for _, f := range c.features {
		if len(q.Layers) > 0 && !slices.Contains(q.Layers, f.Layer) {
			continue
		}
		if text != "" && !matchText(f, text) {
			continue
		}
		res.Features = append(res.Features, f.clone())
	}
	return res
}

// matchText expects text to be lowercased already.
func matchText(f Feature, text string) bool {
	if strings.Contains(strings.ToLower(f.Name), text) {
		return true
	}
	if strings.Contains(strings.ToLower(f.ShortDescription), text) {
		return true
	}
	return slices.ContainsFunc(f.Keywords, func(k string) bool {
		return strings.Contains(strings.ToLower(k), text)
	})
}

// Direction selects which relation a dependency chain follows.
type Direction string

const (
	// Upstream walks depends_on edges toward the foundation.
	Upstream Direction = "upstream"
	// Downstream walks feeds_into edges toward consumers.
	Downstream Direction = "downstream"
)

// ParseDirection converts user input to a Direction. "up"/"down" and
// "dependencies"/"dependents" are accepted as aliases.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upstream", "up", "dependencies":
		return Upstream, nil
	case "downstream", "down", "dependents":
		return Downstream, nil
	}
	return "", herrors.New(herrors.ErrCodeInvalidDirection,
		"unknown direction %q (want upstream or downstream)", s)
}

func (d Direction) walk() dag.Direction {
	if d == Upstream {
		return dag.Backward
	}
	return dag.Forward
}

// Chain resolves the transitive dependency chain of a feature. Upstream
// returns everything the feature needs, downstream everything that relies
// on it, nearest first (breadth-first). The feature itself is not included
// and each feature appears at most once, so the walk terminates even when
// the catalog contains a cycle. An unknown id yields an empty chain.
func (c *Catalog) Chain(id string, dir Direction) []Feature {
	return c.collect(orEmpty(c.graph.Walk(id, dir.walk())))
}

// Related returns the direct neighbours of a feature: its prerequisites
// followed by its consumers, without duplicates. An unknown id yields an
// empty slice.
func (c *Catalog) Related(id string) []Feature {
	var ids []string
	seen := map[string]bool{}
	for _, group := range [][]string{c.graph.Parents(id), c.graph.Children(id)} {
		for _, n := range group {
			if !seen[n] {
				seen[n] = true
				ids = append(ids, n)
			}
		}
	}
	return c.collect(orEmpty(ids))
}

// Resolve looks up a list of cross references. Features found are returned
// in input order; ids with no feature are returned in missing. This is how
// a details view renders references that may have gone stale.
func (c *Catalog) Resolve(ids []string) (found []Feature, missing []string) {
	found = make([]Feature, 0, len(ids))
	for _, id := range ids {
		if f, ok := c.Get(id); ok {
			found = append(found, f)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}

// InstallOrder returns every feature ordered so that prerequisites come
// before the features that depend on them. Ties keep catalog order.
// A cycle makes the order undefined and yields a CYCLE error.
func (c *Catalog) InstallOrder() ([]Feature, error) {
	ids, err := c.graph.TopoSort()
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeCycle, err,
			"catalog has %d dependency cycle(s)", len(c.cycles))
	}
	return c.collect(ids), nil
}

// Roots returns the features that depend on nothing, in catalog order.
func (c *Catalog) Roots() []Feature {
	return c.collect(orEmpty(dag.NodeIDs(c.graph.Sources())))
}

// Leaves returns the features nothing depends on, in catalog order.
func (c *Catalog) Leaves() []Feature {
	return c.collect(orEmpty(dag.NodeIDs(c.graph.Sinks())))
}

// orEmpty keeps collect from treating "no ids" as "all features".
func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
