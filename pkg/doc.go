// Package pkg provides the libraries behind hivegraph, the HyperHive feature
// catalog explorer.
//
// # Overview
//
// A catalog is a set of infrastructure features grouped into layers, each
// feature naming the features it depends on and the ones it feeds into. The
// pkg directory is organized around that catalog:
//
//  1. [catalog] - Feature and layer types, validation, filtering, dependency chains
//  2. [dag] - The directed graph the catalog traverses and orders
//  3. [graph] - JSON and YAML node-link documents for exchanging catalogs
//  4. [render/nodelink] - Graphviz diagrams of the catalog
//  5. [api] - A read-only HTTP API with reload notifications
//
// # Architecture
//
// The typical data flow:
//
//	TOML / JSON / YAML catalog
//	         ↓
//	    [catalog] package (validate, index, build the dependency graph)
//	         ↓
//	    queries: Filter, Chain, Related, InstallOrder
//	         ↓
//	    CLI output, [api] responses, [render/nodelink] diagrams
//
// # Quick Start
//
//	import (
//	    "github.com/hyperhive/hivegraph/pkg/catalog"
//	    "github.com/hyperhive/hivegraph/pkg/catalog/hyperhive"
//	)
//
//	c := hyperhive.MustLoad()
//	storage := c.Filter(catalog.Query{Text: "storage"})
//	needs := c.Chain("nfs", catalog.Upstream)
//	order, err := c.InstallOrder()
//
// # Supporting Packages
//
// [catalog/hyperhive] - The built-in HyperHive catalog, embedded at build time.
//
// [errors] - Coded errors shared by every package. Codes map to HTTP statuses
// in [api] and to exit messages in the CLI.
//
// [cache] - Byte caches for rendered diagrams: file, Redis and a no-op cache,
// with observability hooks.
//
// [store] - Named catalog storage on disk, in Badger or in MongoDB.
//
// [config] - TOML configuration with environment overrides and validation.
//
// [watch] - Debounced file watching used to hot-reload a served catalog.
//
// [observability] - Hook interfaces and their Prometheus implementation.
//
// [buildinfo] - Version information set at build time.
package pkg
