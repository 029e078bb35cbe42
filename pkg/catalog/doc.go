// Package catalog holds the HyperHive feature catalog: a fixed set of
// infrastructure features, grouped into layers and linked by dependency
// relations.
//
// # Model
//
// A [Feature] names one unit of functionality. Each feature belongs to one
// [Layer] and lists the features it needs (DependsOn) and the features that
// consume it (FeedsInto). The two lists are mirror images: if A feeds into
// B then B depends on A. [New] enforces this unless [WithLenientSymmetry]
// is given.
//
// # Queries
//
// A [Catalog] is immutable once built. Lookups return copies:
//
//	c, err := catalog.LoadFile("features.toml")
//	if err != nil {
//	    return err
//	}
//	res := c.Filter(catalog.Query{Text: "nfs", Layers: []catalog.Layer{catalog.LayerNetworkStorage}})
//	for _, f := range res.Features {
//	    fmt.Println(f.Name)
//	}
//
// [Catalog.Chain] walks the relation graph transitively. Each feature is
// visited at most once, so chains terminate even if the data contains a
// cycle. Cycles are reported by [Catalog.Cycles] rather than rejected.
//
// # Files
//
// Catalogs are stored as TOML with one [[feature]] table per feature; see
// [Decode] and [Encode]. The built-in catalog lives in the hyperhive
// subpackage.
package catalog
