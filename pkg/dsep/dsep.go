// Package dsep decides d-separation in DAGs and prunes graphs before
// separation-heavy searches.
//
// All tests go through moralization: the subgraph induced by the ancestors of
// X ∪ Y ∪ Z (plus those sets) is turned into an undirected graph by linking
// every node to its parents and marrying co-parents; X and Y are d-separated
// by Z exactly when removing Z disconnects them.
//
// Two direction-restricted variants serve the door criteria:
// [IsDSeparatedThroughParents] ignores the arcs leaving X, so only paths that
// enter X through a parent (backdoor paths) count, and
// [IsDSeparatedThroughChildren] ignores the arcs entering X.
//
// Every function is pure. Unknown node names fail with NOT_FOUND.
package dsep

import (
	"github.com/matzehuels/causeway/pkg/dag"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/nodeset"
)

// ChainThreshold is the node count above which [Reduce] also strips dangling
// chains. Below it the extra pass costs more than it saves.
const ChainThreshold = 170

// Check fails with NOT_FOUND when a member of sets is not a node of g.
func Check(g *dag.DAG, sets ...nodeset.Set) error {
	for _, s := range sets {
		for _, n := range s.Sorted() {
			if !g.HasNode(n) {
				return errors.New(errors.ErrCodeNotFound, "unknown node %q", n)
			}
		}
	}
	return nil
}

// moralize builds the moral graph of the subgraph induced by nodes. Parents
// in skip are ignored for every node; nodes in noParents get neither parent
// links nor marriages.
func moralize(g *dag.DAG, nodes, skip, noParents nodeset.Set) *dag.UGraph {
	u := dag.NewUGraph(nodes.Sorted()...)
	for b := range nodes {
		if noParents.Has(b) {
			continue
		}
		var ps []string
		for _, p := range g.Parents(b) {
			if nodes.Has(p) && !skip.Has(p) {
				ps = append(ps, p)
			}
		}
		for i, p := range ps {
			u.AddEdge(p, b)
			for _, q := range ps[i+1:] {
				u.AddEdge(p, q)
			}
		}
	}
	return u
}

func ancestral(g *dag.DAG, sets ...nodeset.Set) nodeset.Set {
	all := nodeset.New(0).Union(sets...)
	return g.Ancestors(all.Sorted()...).Union(all)
}

// MoralizedAncestralGraph returns the moral graph of the ancestral closure of
// x ∪ y ∪ z.
func MoralizedAncestralGraph(g *dag.DAG, x, y, z nodeset.Set) (*dag.UGraph, error) {
	if err := Check(g, x, y, z); err != nil {
		return nil, err
	}
	return moralize(g, ancestral(g, x, y, z), nil, nil), nil
}

func separated(u *dag.UGraph, x, y, z nodeset.Set) bool {
	for n := range z {
		u.RemoveNode(n)
	}
	return !u.Connected(x.Minus(z), y.Minus(z))
}

// IsDSeparated reports whether x and y are d-separated given z.
func IsDSeparated(g *dag.DAG, x, y, z nodeset.Set) (bool, error) {
	if err := Check(g, x, y, z); err != nil {
		return false, err
	}
	u := moralize(g, ancestral(g, x, y, z), nil, nil)
	return separated(u, x, y, z), nil
}

// IsDSeparatedThroughParents reports whether z blocks every path from x to y
// that starts with an arc pointing into x. Arcs leaving x are ignored, so
// causal paths out of x never count. This is the backdoor test.
func IsDSeparatedThroughParents(g *dag.DAG, x, y, z nodeset.Set) (bool, error) {
	if err := Check(g, x, y, z); err != nil {
		return false, err
	}
	u := moralize(g, ancestral(g, x, y, z), x, nil)
	return separated(u, x, y, z), nil
}

// IsDSeparatedThroughChildren reports whether z blocks every path from x to y
// that starts with an arc leaving x. Arcs entering x are ignored and only the
// ancestors of y ∪ z (plus x) take part.
func IsDSeparatedThroughChildren(g *dag.DAG, x, y, z nodeset.Set) (bool, error) {
	if err := Check(g, x, y, z); err != nil {
		return false, err
	}
	nodes := ancestral(g, y, z).Union(x)
	u := moralize(g, nodes, nil, x)
	return separated(u, x, y, z), nil
}

// MinimalConditioningSet shrinks given to a subset that still screens vars
// off from the rest: each member z, in lexicographic order, is dropped when
// vars and z are d-separated by the members kept so far minus z. The result
// satisfies P(vars | given) = P(vars | result) in any distribution that g
// represents.
func MinimalConditioningSet(g *dag.DAG, vars, given nodeset.Set) (nodeset.Set, error) {
	if err := Check(g, vars, given); err != nil {
		return nil, err
	}
	cur := given.Minus(vars)
	for _, z := range cur.Sorted() {
		rest := cur.Minus(nodeset.Of(z))
		u := moralize(g, ancestral(g, vars, nodeset.Of(z), rest), nil, nil)
		if separated(u, vars, nodeset.Of(z), rest) {
			cur = rest
		}
	}
	return cur, nil
}
