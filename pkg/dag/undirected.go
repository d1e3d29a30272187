package dag

import (
	"slices"

	"github.com/matzehuels/causeway/pkg/nodeset"
)

// UGraph is a simple undirected graph: a node set plus symmetric adjacency.
// It is the working structure of moralization and c-component detection and
// is rebuilt per query rather than kept around.
type UGraph struct {
	adj map[string]nodeset.Set
}

// NewUGraph returns an undirected graph over the given nodes, without edges.
func NewUGraph(nodes ...string) *UGraph {
	g := &UGraph{adj: make(map[string]nodeset.Set, len(nodes))}
	for _, n := range nodes {
		g.AddNode(n)
	}
	return g
}

// AddNode inserts n if it is not already present.
func (g *UGraph) AddNode(n string) {
	if _, ok := g.adj[n]; !ok {
		g.adj[n] = nodeset.New(0)
	}
}

// AddEdge connects a and b, adding missing endpoints. Self-loops are ignored.
func (g *UGraph) AddEdge(a, b string) {
	g.AddNode(a)
	g.AddNode(b)
	if a == b {
		return
	}
	g.adj[a].Add(b)
	g.adj[b].Add(a)
}

// RemoveNode deletes n and its incident edges.
func (g *UGraph) RemoveNode(n string) {
	for m := range g.adj[n] {
		g.adj[m].Remove(n)
	}
	delete(g.adj, n)
}

// HasNode reports whether n is a node of g.
func (g *UGraph) HasNode(n string) bool {
	_, ok := g.adj[n]
	return ok
}

// HasEdge reports whether a and b are adjacent.
func (g *UGraph) HasEdge(a, b string) bool {
	return g.adj[a].Has(b)
}

// Nodes returns the node names in lexicographic order.
func (g *UGraph) Nodes() []string {
	ids := make([]string, 0, len(g.adj))
	for n := range g.adj {
		ids = append(ids, n)
	}
	slices.Sort(ids)
	return ids
}

// Neighbours returns the sorted neighbours of n.
func (g *UGraph) Neighbours(n string) []string {
	return g.adj[n].Sorted()
}

// Connected reports whether some node of xs is joined by a path to some node
// of ys. Nodes of either set that are absent from g are ignored.
func (g *UGraph) Connected(xs, ys nodeset.Set) bool {
	seen := nodeset.New(len(g.adj))
	var stack []string
	for x := range xs {
		if g.HasNode(x) {
			stack = append(stack, x)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen.Has(n) {
			continue
		}
		if ys.Has(n) {
			return true
		}
		seen.Add(n)
		for m := range g.adj[n] {
			if !seen.Has(m) {
				stack = append(stack, m)
			}
		}
	}
	return false
}

// Components returns the connected components of g. Components are ordered
// by their smallest member.
func (g *UGraph) Components() []nodeset.Set {
	var comps []nodeset.Set
	seen := nodeset.New(len(g.adj))
	for _, start := range g.Nodes() {
		if seen.Has(start) {
			continue
		}
		comp := nodeset.New(0)
		stack := []string{start}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen.Has(n) {
				continue
			}
			seen.Add(n)
			comp.Add(n)
			for m := range g.adj[n] {
				if !seen.Has(m) {
					stack = append(stack, m)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// Skeleton returns the undirected version of d: same nodes, one edge per arc.
func (d *DAG) Skeleton() *UGraph {
	g := NewUGraph(d.NodeIDs()...)
	for from, children := range d.outgoing {
		for _, to := range children {
			g.AddEdge(from, to)
		}
	}
	return g
}
