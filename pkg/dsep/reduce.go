package dsep

import (
	"github.com/matzehuels/causeway/pkg/dag"
	"github.com/matzehuels/causeway/pkg/nodeset"
)

// BarrenNodes returns the nodes outside interest that cannot influence any
// separation question about interest: childless nodes, then recursively every
// node whose children are all barren.
func BarrenNodes(g *dag.DAG, interest nodeset.Set) (nodeset.Set, error) {
	if err := Check(g, interest); err != nil {
		return nil, err
	}
	return barren(g, interest), nil
}

func barren(g *dag.DAG, interest nodeset.Set) nodeset.Set {
	s := nodeset.New(0)
	var visit func(x string)
	visit = func(x string) {
		if interest.Has(x) || s.Has(x) {
			return
		}
		s.Add(x)
		for _, b := range g.Parents(x) {
			if nodeset.Of(g.Children(b)...).SubsetOf(s) {
				visit(b)
			}
		}
	}
	for _, x := range g.Sinks() {
		visit(x)
	}
	return s
}

// ChainNodes returns the dangling chains of g outside interest: starting from
// a parentless node with a single child, and following single-child
// descendants whose parents are all in the chain already, and symmetrically
// from childless nodes with a single parent upwards. Such nodes have one
// neighbour once the chain is gone, so no path between other nodes crosses
// them.
func ChainNodes(g *dag.DAG, interest nodeset.Set) (nodeset.Set, error) {
	if err := Check(g, interest); err != nil {
		return nil, err
	}
	return chains(g, interest), nil
}

func chains(g *dag.DAG, interest nodeset.Set) nodeset.Set {
	s := nodeset.New(0)
	down := func(x string) bool {
		return !interest.Has(x) && !s.Has(x) && len(g.Children(x)) == 1 &&
			nodeset.Of(g.Parents(x)...).SubsetOf(s)
	}
	up := func(x string) bool {
		return !interest.Has(x) && !s.Has(x) && len(g.Parents(x)) == 1 &&
			nodeset.Of(g.Children(x)...).SubsetOf(s)
	}
	for _, x := range g.Sources() {
		for cur := x; down(cur); {
			s.Add(cur)
			cur = g.Children(cur)[0]
		}
	}
	for _, x := range g.Sinks() {
		for cur := x; up(cur); {
			s.Add(cur)
			cur = g.Parents(cur)[0]
		}
	}
	return s
}

// Reduce returns the subgraph of g relevant to separation questions about
// interest: barren nodes are dropped and, for graphs above [ChainThreshold]
// nodes, dangling chains as well.
func Reduce(g *dag.DAG, interest nodeset.Set) (*dag.DAG, error) {
	if err := Check(g, interest); err != nil {
		return nil, err
	}
	return reduce(g, interest), nil
}

func reduce(g *dag.DAG, interest nodeset.Set) *dag.DAG {
	r := g.Induced(g.NodeSet().Minus(barren(g, interest)))
	if r.NodeCount() <= ChainThreshold {
		return r
	}
	for n := range chains(r, interest) {
		_ = r.RemoveNode(n)
	}
	return r
}
