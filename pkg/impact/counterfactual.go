package impact

import (
	"context"

	"github.com/matzehuels/causeway/pkg/causal"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/identify"
	"github.com/matzehuels/causeway/pkg/inference"
	"github.com/matzehuels/causeway/pkg/nodeset"
	"github.com/matzehuels/causeway/pkg/potential"
)

// Idiosyncratic returns the observed variables without causal parents that
// are not intervened upon. Their values characterize one unit of the
// population.
func Idiosyncratic(m *causal.Model, whatif []string) nodeset.Set {
	out := nodeset.New(0)
	for _, n := range m.Observed().Minus(nodeset.Of(whatif...)).Sorted() {
		if len(m.Parents(n)) == 0 {
			out.Add(n)
		}
	}
	return out
}

// CounterfactualModel returns the twin of m for a unit described by profile:
// every idiosyncratic variable gets its posterior given profile as its table,
// so later interventions act on this unit rather than on the population.
func (a *Analyzer) CounterfactualModel(ctx context.Context, m *causal.Model, profile map[string]string, whatif []string) (*causal.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, n := range sortedKeys(profile) {
		if m.IsLatent(n) {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "profile assigns latent variable %q", n)
		}
	}
	if err := m.Check(whatif...); err != nil {
		return nil, err
	}

	net := m.Observational()
	eng := inference.New(net)
	if err := eng.SetEvidence(profile); err != nil {
		return nil, err
	}

	twin := net.Clone()
	for _, n := range Idiosyncratic(m, whatif).Sorted() {
		post, err := eng.Posterior(n)
		if err != nil {
			return nil, err
		}
		// A causal root may still have parents in the observational
		// network; its new table ignores them.
		cpt := post
		for _, v := range net.CPTVars(n)[1:] {
			if cpt, err = potential.Multiply(cpt, potential.New(v).Fill(1)); err != nil {
				return nil, err
			}
		}
		if err := twin.SetCPTPotential(n, cpt); err != nil {
			return nil, err
		}
		a.logger.Debug("twin prior", "variable", n, "posterior", post.Values())
	}
	return m.WithObservational(twin)
}

// Counterfactual answers "given a unit observed as profile, what would the
// distribution of on have been had whatif been set": it builds the twin
// model and asks P(on | do(whatif)) on it.
func (a *Analyzer) Counterfactual(ctx context.Context, m *causal.Model, profile map[string]string, on, whatif []string, values map[string]string) (*Result, error) {
	twin, err := a.CounterfactualModel(ctx, m, profile, whatif)
	if err != nil {
		return nil, err
	}
	return a.CausalImpact(ctx, twin, Query{On: on, Doing: whatif, Values: values})
}

// Counterfactual runs [Analyzer.Counterfactual] with default options.
func Counterfactual(ctx context.Context, m *causal.Model, profile map[string]string, on, whatif []string, values map[string]string) (*Result, error) {
	return New(identify.Options{}).Counterfactual(ctx, m, profile, on, whatif, values)
}
