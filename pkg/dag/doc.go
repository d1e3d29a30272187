// Package dag provides the directed acyclic graph that underlies causal models.
//
// # Overview
//
// A causal model is, structurally, a DAG over named variables. This package
// keeps that structure and nothing else: no probabilities, no latent
// bookkeeping. Higher layers ([github.com/matzehuels/causeway/pkg/bn] and
// [github.com/matzehuels/causeway/pkg/causal]) add those.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and arcs with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "Smoking"})
//	g.AddNode(dag.Node{ID: "Cancer"})
//	g.AddEdge(dag.Edge{From: "Smoking", To: "Cancer"})
//
// Query the structure with [DAG.Parents], [DAG.Children], [DAG.Ancestors],
// [DAG.Descendants] and [DAG.TopologicalOrder].
//
// # Acyclicity
//
// [DAG.AddEdge] rejects any arc that would close a directed cycle with
// [ErrGraphHasCycle], so a DAG built through this API is always acyclic.
// [DAG.Validate] re-checks the invariant with a white/gray/black DFS.
//
// # Determinism
//
// Adjacency lists are stored sorted, [DAG.NodeIDs] is sorted and
// [DAG.TopologicalOrder] breaks ties lexicographically. Algorithms built on
// top of this package inherit reproducible output for free.
//
// # Undirected Graphs
//
// [UGraph] is the transient undirected graph used by moralization and by
// c-component detection. [UGraph.Connected] is the reachability test behind
// d-separation; [UGraph.Components] yields connected components.
//
// # Concurrency
//
// DAG is not safe for concurrent mutation. Concurrent readers are fine, and
// [DAG.Clone] / [DAG.Induced] produce independent copies for parallel work.
package dag
