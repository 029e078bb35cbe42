// Package graph provides the serialization format for feature catalogs.
//
// A [Document] is what leaves the process: JSON exports, API responses and
// documents stored in MongoDB all share it. It embeds the full feature list,
// which is enough to rebuild the catalog, plus two derived views:
//
//   - Layers: the layer enumeration with labels and colors
//   - Graph: a node-link view with one node per feature and one edge per
//     prerequisite relation
//
// Common operations:
//
//	data, _ := graph.Marshal(c)             // Catalog → []byte
//	graph.WriteFile(c, "catalog.json")      // Catalog → File
//	c, _ = graph.ReadFile("catalog.json")   // File → Catalog
//	doc, _ := graph.Unmarshal(data)         // []byte → Document
//
// The Digest field ties a document to the content it was exported from.
// [ToCatalog] rejects documents whose features no longer hash to it.
package graph
