package identify

import (
	"context"

	"github.com/matzehuels/causeway/pkg/ast"
	"github.com/matzehuels/causeway/pkg/causal"
	"github.com/matzehuels/causeway/pkg/dsep"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/nodeset"
)

// checkQuery rejects unknown and latent variables.
func checkQuery(m *causal.Model, sets ...nodeset.Set) error {
	for _, s := range sets {
		for _, n := range s.Sorted() {
			if err := m.Check(n); err != nil {
				return err
			}
			if m.IsLatent(n) {
				return errors.New(errors.ErrCodeInvalidArgument, "%q is latent and cannot appear in a query", n)
			}
		}
	}
	return nil
}

// DoCalculus identifies P(on | do(doing)).
func (id *Identifier) DoCalculus(ctx context.Context, m *causal.Model, on, doing nodeset.Set) (*Formula, error) {
	if err := checkQuery(m, on, doing); err != nil {
		return nil, err
	}
	t, err := id.identify(ctx, m, on, doing, nil, 0)
	if err != nil {
		return nil, err
	}
	return NewFormula(m, t, on.Sorted(), doing.Sorted(), nil), nil
}

// DoCalculusWithObservation identifies P(on | do(doing), knowing).
//
// An observed variable that is separated from on once the interventions are
// fixed is moved into doing, trying candidates in lexicographic order and
// skipping any move that leads to a hedge. When no move succeeds the answer
// is the quotient P(on, knowing | do(doing)) / P(knowing | do(doing)).
func (id *Identifier) DoCalculusWithObservation(ctx context.Context, m *causal.Model, on, doing, knowing nodeset.Set) (*Formula, error) {
	if err := checkQuery(m, on, doing, knowing); err != nil {
		return nil, err
	}
	t, err := id.withObservation(ctx, m, on, doing, knowing)
	if err != nil {
		return nil, err
	}
	return NewFormula(m, t, on.Sorted(), doing.Sorted(), knowing.Sorted()), nil
}

func (id *Identifier) withObservation(ctx context.Context, m *causal.Model, on, doing, knowing nodeset.Set) (ast.Tree, error) {
	if knowing.Empty() {
		return id.identify(ctx, m, on, doing, nil, 0)
	}

	rg, err := dsep.Reduce(m.Mutilated(doing, knowing), doing.Union(on, knowing))
	if err != nil {
		return nil, err
	}
	for _, z := range knowing.Sorted() {
		zs := nodeset.Of(z)
		others := knowing.Minus(zs)
		sep, err := dsep.IsDSeparated(rg, zs, on, doing.Union(others))
		if err != nil {
			return nil, err
		}
		if !sep {
			continue
		}
		t, err := id.withObservation(ctx, m, on, doing.Union(zs), others)
		if errors.Is(err, errors.ErrCodeHedge) {
			id.opts.Logger.Debug("observation move failed", "z", z, "err", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		return t, nil
	}

	num, err := id.identify(ctx, m, on.Union(knowing), doing, nil, 0)
	if err != nil {
		return nil, err
	}
	den, err := id.identify(ctx, m, knowing, doing, nil, 0)
	if err != nil {
		return nil, err
	}
	return &ast.Quotient{Left: num, Right: den}, nil
}

// DoCalculus runs [Identifier.DoCalculus] with default options.
func DoCalculus(ctx context.Context, m *causal.Model, on, doing nodeset.Set) (*Formula, error) {
	return New(Options{}).DoCalculus(ctx, m, on, doing)
}

// DoCalculusWithObservation runs [Identifier.DoCalculusWithObservation] with
// default options.
func DoCalculusWithObservation(ctx context.Context, m *causal.Model, on, doing, knowing nodeset.Set) (*Formula, error) {
	return New(Options{}).DoCalculusWithObservation(ctx, m, on, doing, knowing)
}
