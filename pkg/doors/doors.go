package doors

import (
	"iter"

	"github.com/matzehuels/causeway/pkg/dag"
	"github.com/matzehuels/causeway/pkg/dsep"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/nodeset"
)

func checkPair(g *dag.DAG, x, y string) error {
	for _, n := range []string{x, y} {
		if !g.HasNode(n) {
			return errors.New(errors.ErrCodeNotFound, "unknown node %q", n)
		}
	}
	if x == y {
		return errors.New(errors.ErrCodeInvalidArgument, "cause and effect are both %q", x)
	}
	return nil
}

func fail(err error) iter.Seq2[nodeset.Set, error] {
	return func(yield func(nodeset.Set, error) bool) { yield(nil, err) }
}

func none(func(nodeset.Set, error) bool) {}

// Backdoor returns the minimal sets satisfying the backdoor criterion for
// (cause, effect). Nodes in excluded, typically latent variables, are never
// part of a candidate.
func Backdoor(g *dag.DAG, cause, effect string, excluded nodeset.Set) iter.Seq2[nodeset.Set, error] {
	if err := checkPair(g, cause, effect); err != nil {
		return fail(err)
	}
	if len(g.Parents(cause)) == 0 || g.HasEdge(effect, cause) {
		return none
	}

	interest := nodeset.Of(cause, effect)
	r, err := dsep.Reduce(g, interest)
	if err != nil {
		return fail(err)
	}
	desc := g.Descendants(cause)

	// Components that stay disconnected from cause and effect once the
	// descendants of cause are gone cannot carry a backdoor path.
	rest := r.Induced(r.NodeSet().Minus(desc))
	for _, comp := range rest.Skeleton().Components() {
		if !comp.Intersects(interest) {
			for n := range comp {
				_ = r.RemoveNode(n)
			}
		}
	}

	pool := r.NodeSet().Minus(desc, interest, excluded)
	c, e := nodeset.Of(cause), nodeset.Of(effect)
	return minimal(pool, func(s nodeset.Set) (bool, error) {
		return dsep.IsDSeparatedThroughParents(r, c, e, s)
	})
}

// Frontdoor returns the minimal sets satisfying the frontdoor criterion for
// (cause, effect). When no directed path joins cause to effect, every
// eligible node is returned on its own.
func Frontdoor(g *dag.DAG, cause, effect string, excluded nodeset.Set) iter.Seq2[nodeset.Set, error] {
	if err := checkPair(g, cause, effect); err != nil {
		return fail(err)
	}
	if g.HasEdge(cause, effect) {
		return none
	}

	pool := NodesOnDirectedPath(g, cause, effect)
	noPath := pool == nil
	if noPath {
		pool = g.NodeSet().Minus(nodeset.Of(cause, effect))
	}
	pool = pool.Minus(BackdoorReach(g, cause), excluded)

	r, err := dsep.Reduce(g, nodeset.Of(cause, effect).Union(pool))
	if err != nil {
		return fail(err)
	}
	x, y := nodeset.Of(cause), nodeset.Of(effect)
	for _, z := range pool.Sorted() {
		ok, err := dsep.IsDSeparatedThroughParents(r, nodeset.Of(z), y, x)
		if err != nil {
			return fail(err)
		}
		if !ok {
			pool.Remove(z)
		}
	}

	if noPath {
		return func(yield func(nodeset.Set, error) bool) {
			for _, z := range pool.Sorted() {
				if !yield(nodeset.Of(z), nil) {
					return
				}
			}
		}
	}
	return minimal(pool, func(s nodeset.Set) (bool, error) {
		return !ExistsUnblockedDirectedPath(g, cause, effect, s), nil
	})
}

// IsBackdoor reports whether z satisfies the backdoor criterion for (x, y):
// no member of z descends from x and z blocks every path entering x.
func IsBackdoor(g *dag.DAG, x, y string, z nodeset.Set) (bool, error) {
	if err := checkPair(g, x, y); err != nil {
		return false, err
	}
	if g.Descendants(x).Intersects(z) {
		return false, nil
	}
	return dsep.IsDSeparatedThroughParents(g, nodeset.Of(x), nodeset.Of(y), z)
}

// IsFrontdoor reports whether z satisfies the frontdoor criterion for (x, y).
func IsFrontdoor(g *dag.DAG, x, y string, z nodeset.Set) (bool, error) {
	if err := checkPair(g, x, y); err != nil {
		return false, err
	}
	if err := dsep.Check(g, z); err != nil {
		return false, err
	}
	if ExistsUnblockedDirectedPath(g, x, y, z) {
		return false, nil
	}
	if z.Intersects(BackdoorReach(g, x)) {
		return false, nil
	}
	r, err := dsep.Reduce(g, z.Union(nodeset.Of(x, y)))
	if err != nil {
		return false, err
	}
	xs, ys := nodeset.Of(x), nodeset.Of(y)
	for _, n := range z.Sorted() {
		ok, err := dsep.IsDSeparatedThroughParents(r, nodeset.Of(n), ys, xs)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// ExistsUnblockedDirectedPath reports whether some directed path from x to y
// avoids every node of z.
func ExistsUnblockedDirectedPath(g *dag.DAG, x, y string, z nodeset.Set) bool {
	seen := nodeset.New(0)
	var walk func(n string) bool
	walk = func(n string) bool {
		for _, c := range g.Children(n) {
			if c == y {
				return true
			}
			if z.Has(c) || seen.Has(c) {
				continue
			}
			seen.Add(c)
			if walk(c) {
				return true
			}
		}
		return false
	}
	return walk(x)
}

// NodesOnDirectedPath returns the nodes lying strictly between x and y on
// some directed path, or nil when y cannot be reached from x. A direct arc
// alone gives an empty, non-nil set.
func NodesOnDirectedPath(g *dag.DAG, x, y string) nodeset.Set {
	memo := make(map[string]nodeset.Set)
	var inner func(a string) nodeset.Set
	inner = func(a string) nodeset.Set {
		if a == y {
			return nodeset.New(0)
		}
		if s, ok := memo[a]; ok {
			return s
		}
		var found nodeset.Set
		for _, c := range g.Children(a) {
			if s := inner(c); s != nil {
				if found == nil {
					found = nodeset.Of(a)
				}
				found.Add(s.Sorted()...)
			}
		}
		memo[a] = found
		return found
	}
	r := inner(x)
	if r == nil {
		return nil
	}
	r = r.Clone()
	r.Remove(x)
	return r
}

// BackdoorReach returns the nodes reachable from a along paths that start
// with an arc into a, without crossing a collider.
func BackdoorReach(g *dag.DAG, a string) nodeset.Set {
	up := nodeset.Of(a)
	up.Add(g.Parents(a)...)
	down := nodeset.Of(a)

	var walk func(n string, headToTail bool)
	walk = func(n string, headToTail bool) {
		for _, c := range g.Children(n) {
			if up.Has(c) || down.Has(c) {
				continue
			}
			down.Add(c)
			walk(c, true)
		}
		if headToTail {
			return
		}
		for _, p := range g.Parents(n) {
			if up.Has(p) {
				continue
			}
			up.Add(p)
			walk(p, false)
		}
	}
	for _, p := range g.Parents(a) {
		walk(p, false)
	}
	r := up.Union(down)
	r.Remove(a)
	return r
}
