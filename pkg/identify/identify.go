package identify

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/causeway/pkg/ast"
	"github.com/matzehuels/causeway/pkg/causal"
	"github.com/matzehuels/causeway/pkg/dsep"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/nodeset"
)

// Options configures an [Identifier].
type Options struct {
	// Parallel identifies the c-components of a decomposable query
	// concurrently.
	Parallel bool
	// Logger receives one debug line per recursion step. Nil discards.
	Logger *log.Logger
}

// Identifier runs identification queries. It is safe for concurrent use.
type Identifier struct {
	opts Options
}

// New returns an identifier with the given options.
func New(opts Options) *Identifier {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Identifier{opts: opts}
}

// Identify returns an expression for P(y | do(x)) over the observed
// variables of m. p is the distribution over those variables the expression
// is built from; nil stands for the observational joint.
//
// A non-identifiable query fails with a *errors.HedgeError.
func (id *Identifier) Identify(ctx context.Context, m *causal.Model, y, x nodeset.Set, p ast.Tree) (ast.Tree, error) {
	if err := m.Check(y.Union(x).Sorted()...); err != nil {
		return nil, err
	}
	return id.identify(ctx, m, y, x, p, 0)
}

func (id *Identifier) identify(ctx context.Context, m *causal.Model, y, x nodeset.Set, p ast.Tree, depth int) (ast.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v := m.Observed()
	logger := id.opts.Logger.With("depth", depth)

	// No intervention: marginalize.
	if x.Empty() {
		logger.Debug("identify: no intervention", "y", y)
		return marginal(p, v.Minus(y), y), nil
	}

	// Restrict to the ancestors of y.
	anY := m.Ancestors(y.Sorted()...).Union(y).Intersect(v)
	if !anY.Equal(v) {
		logger.Debug("identify: ancestral restriction", "keep", anY)
		sub, err := m.InducedSubModel(anY)
		if err != nil {
			return nil, err
		}
		var q ast.Tree
		if p != nil {
			q = ast.NewSum(v.Minus(anY), p)
		}
		return id.identify(ctx, sub, y, x.Intersect(anY), q, depth+1)
	}

	// Variables with no causal path to y once x is fixed act as interventions.
	cut := m.Mutilated(x, nil)
	w := v.Minus(x, cut.Ancestors(y.Sorted()...), y)
	if !w.Empty() {
		logger.Debug("identify: extra interventions", "w", w)
		return id.identify(ctx, m, y, x.Union(w), p, depth+1)
	}

	rest, err := m.InducedSubModel(v.Minus(x))
	if err != nil {
		return nil, err
	}
	comps := rest.CComponents()

	// Several c-components: identify each against everything else.
	if len(comps) > 1 {
		logger.Debug("identify: c-component factorization", "components", len(comps))
		terms, err := id.components(ctx, m, v, comps, p, depth)
		if err != nil {
			return nil, err
		}
		return ast.NewSum(v.Minus(x, y), ast.ProductOfTrees(terms)), nil
	}
	s := comps[0]

	whole := m.CComponents()
	if len(whole) == 1 && whole[0].Equal(v) {
		logger.Debug("identify: hedge", "s", s)
		return nil, errors.NewHedge(v.Sorted(), s.Sorted())
	}

	order := m.TopologicalOrder()
	for _, c := range whole {
		if c.Equal(s) {
			logger.Debug("identify: direct factorization", "s", s)
			prod, err := id.factorize(m, v, order, s, p)
			if err != nil {
				return nil, err
			}
			return ast.NewSum(s.Minus(y), prod), nil
		}
	}

	for _, c := range whole {
		if !s.SubsetOf(c) {
			continue
		}
		logger.Debug("identify: nested factorization", "s", s, "superset", c)
		prod, err := id.factorize(m, v, order, c, p)
		if err != nil {
			return nil, err
		}
		sub, err := m.InducedSubModel(c)
		if err != nil {
			return nil, err
		}
		return id.identify(ctx, sub, y, x.Intersect(c), prod, depth+1)
	}

	// Unreachable on a consistent model: every c-component of G[V\X] lies in
	// one of G.
	return nil, errors.New(errors.ErrCodeUnidentifiable, "no c-component of the model contains %v", s)
}

// components identifies each component against the rest of v, keeping the
// results in component order.
func (id *Identifier) components(ctx context.Context, m *causal.Model, v nodeset.Set, comps []nodeset.Set, p ast.Tree, depth int) ([]ast.Tree, error) {
	terms := make([]ast.Tree, len(comps))
	branch := func(ctx context.Context, i int) error {
		var q ast.Tree
		if p != nil {
			q = p.Clone()
		}
		t, err := id.identify(ctx, m, comps[i], v.Minus(comps[i]), q, depth+1)
		if err != nil {
			return err
		}
		terms[i] = t
		return nil
	}

	if !id.opts.Parallel {
		for i := range comps {
			if err := branch(ctx, i); err != nil {
				return nil, err
			}
		}
		return terms, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range comps {
		g.Go(func() error { return branch(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return terms, nil
}

// factorize builds the product over s, in topological order, of each
// variable's distribution given all the variables before it.
func (id *Identifier) factorize(m *causal.Model, v nodeset.Set, order []string, s nodeset.Set, p ast.Tree) (ast.Tree, error) {
	var terms []ast.Tree
	pred := nodeset.New(0)
	for _, n := range order {
		if s.Has(n) {
			t, err := id.conditional(m, v, n, pred, p)
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		}
		pred.Add(n)
	}
	return ast.ProductOfTrees(terms), nil
}

// conditional returns the expression for P(n | pred) under p.
func (id *Identifier) conditional(m *causal.Model, v nodeset.Set, n string, pred nodeset.Set, p ast.Tree) (ast.Tree, error) {
	vars := nodeset.Of(n)
	if p == nil {
		given, err := dsep.MinimalConditioningSet(m.Observational().DAG(), vars, pred)
		if err != nil {
			return nil, err
		}
		if given.Empty() {
			return ast.NewJoint(vars), nil
		}
		return ast.NewPosterior(vars, given), nil
	}
	num := ast.NewSum(v.Minus(pred, vars), p.Clone())
	if pred.Empty() {
		return num, nil
	}
	return &ast.Quotient{Left: num, Right: ast.NewSum(v.Minus(pred), p.Clone())}, nil
}

// marginal sums vars out of p, or returns the joint of keep when p is the
// observational joint.
func marginal(p ast.Tree, vars, keep nodeset.Set) ast.Tree {
	if p == nil {
		return ast.NewJoint(keep)
	}
	return ast.NewSum(vars, p)
}

// Identify runs [Identifier.Identify] with default options.
func Identify(ctx context.Context, m *causal.Model, y, x nodeset.Set, p ast.Tree) (ast.Tree, error) {
	return New(Options{}).Identify(ctx, m, y, x, p)
}
