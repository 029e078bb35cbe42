// Package dag provides the directed graph behind the feature catalog.
//
// # Overview
//
// Features depend on one another across infrastructure layers. This package
// stores those relations as a directed graph whose nodes carry a row (the
// layer rank) and whose edges point from a prerequisite to the feature it
// enables.
//
// The graph is meant to be acyclic, but the data that feeds it is hand
// authored. Rather than refusing to build, the graph accepts cycles and lets
// callers find them with [DAG.Cycles]. Every traversal is guarded so that a
// malformed edge set can never hang a query.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "btrfs-raids", Row: 0})
//	g.AddNode(dag.Node{ID: "nfs", Row: 1})
//	g.AddEdge(dag.Edge{From: "btrfs-raids", To: "nfs"})
//
//	g.Walk("nfs", dag.Backward) // ["btrfs-raids"]
//
// # Traversal
//
//   - [DAG.Walk]: breadth-first reachability with a visited set
//   - [DAG.Cycles]: one path per back edge, for diagnostics
//   - [DAG.TopoSort]: stable topological order, insertion order as tie break
//
// # Concurrency
//
// DAG instances are not safe for concurrent mutation. A fully built graph
// that is no longer modified can be read from any number of goroutines.
package dag
