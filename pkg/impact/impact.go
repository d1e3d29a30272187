package impact

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/causeway/pkg/causal"
	"github.com/matzehuels/causeway/pkg/dsep"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/identify"
	"github.com/matzehuels/causeway/pkg/nodeset"
	"github.com/matzehuels/causeway/pkg/potential"
)

// Explanations reported in [Result.Explanation].
const (
	ExplainDSeparated = "d-separated"
	ExplainBackdoor   = "backdoor found: "
	ExplainFrontdoor  = "frontdoor found: "
	ExplainDoCalculus = "do-calculus computation"
)

// Query is P(On | do(Doing), Knowing), optionally restricted to the labels in
// Values.
type Query struct {
	On      []string          `json:"on" yaml:"on" validate:"required,min=1,dive,required"`
	Doing   []string          `json:"doing,omitempty" yaml:"doing,omitempty" validate:"dive,required"`
	Knowing []string          `json:"knowing,omitempty" yaml:"knowing,omitempty" validate:"dive,required"`
	Values  map[string]string `json:"values,omitempty" yaml:"values,omitempty"`
}

// Result is the answer to a [Query].
type Result struct {
	// Formula is nil when the query is not identifiable.
	Formula *identify.Formula
	// Distribution has the query variables as leading axes, in the order
	// on, doing, knowing. Variables fixed by Query.Values are dropped.
	Distribution *potential.Potential
	Explanation  string
}

// Identified reports whether the query had a formula.
func (r *Result) Identified() bool { return r.Formula != nil }

// Analyzer runs impact and counterfactual queries.
type Analyzer struct {
	id     *identify.Identifier
	logger *log.Logger
}

// New returns an analyzer whose identification step uses opts.
func New(opts identify.Options) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Analyzer{id: identify.New(opts), logger: opts.Logger}
}

// Identifier returns the identifier used for the do-calculus route.
func (a *Analyzer) Identifier() *identify.Identifier { return a.id }

// Validate checks the shape of q against m without touching the graph:
// the three variable lists must be pairwise disjoint, every key of Values
// must be one of them, and every name and label must exist.
func Validate(m *causal.Model, q Query) error {
	if len(q.On) == 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "query has no target variable")
	}
	on, doing, knowing := nodeset.Of(q.On...), nodeset.Of(q.Doing...), nodeset.Of(q.Knowing...)
	for _, pair := range [][2]nodeset.Set{{on, doing}, {on, knowing}, {doing, knowing}} {
		if common := pair[0].Intersect(pair[1]); !common.Empty() {
			return errors.New(errors.ErrCodeInvalidArgument,
				"the parts of the query (on, doing, knowing) must not intersect: %v", common)
		}
	}
	all := on.Union(doing, knowing)
	for _, k := range sortedKeys(q.Values) {
		if !all.Has(k) {
			return errors.New(errors.ErrCodeInvalidArgument, "%q is not in the query arguments", k)
		}
	}
	for _, n := range all.Sorted() {
		if err := m.Check(n); err != nil {
			return err
		}
		if m.IsLatent(n) {
			return errors.New(errors.ErrCodeInvalidArgument, "%q is latent and cannot appear in a query", n)
		}
	}
	net := m.Observational()
	for _, k := range sortedKeys(q.Values) {
		v, err := net.Variable(k)
		if err != nil {
			return err
		}
		if v.Index(q.Values[k]) < 0 {
			return errors.New(errors.ErrCodeNotFound, "variable %q has no label %q", k, q.Values[k])
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// CausalImpact answers q on m.
func (a *Analyzer) CausalImpact(ctx context.Context, m *causal.Model, q Query) (*Result, error) {
	if err := Validate(m, q); err != nil {
		return nil, err
	}
	on, doing, knowing := nodeset.Of(q.On...), nodeset.Of(q.Doing...), nodeset.Of(q.Knowing...)

	f, explain, err := a.formula(ctx, m, on, doing, knowing)
	var hedge *errors.HedgeError
	if stderrors.As(err, &hedge) {
		a.logger.Info("query not identifiable", "on", on, "doing", doing, "hedge", hedge.Message)
		return &Result{Explanation: hedge.Message}, nil
	}
	if err != nil {
		return nil, err
	}
	a.logger.Debug("identified", "route", explain, "formula", f.ToLatex())

	dist, err := f.Eval(ctx)
	if err != nil {
		return nil, err
	}
	if len(q.Values) > 0 {
		if dist, err = dist.ExtractLabels(q.Values); err != nil {
			return nil, err
		}
	}
	order := slices.Concat(f.On, f.Doing, f.Knowing)
	return &Result{Formula: f, Distribution: dist.Reorder(order...), Explanation: explain}, nil
}

func (a *Analyzer) formula(ctx context.Context, m *causal.Model, on, doing, knowing nodeset.Set) (*identify.Formula, string, error) {
	none, err := noEffect(m, on, doing, knowing)
	if err != nil {
		return nil, "", err
	}
	if none {
		t := identify.PosteriorTree(on, knowing)
		return identify.NewFormula(m, t, on.Sorted(), doing.Sorted(), knowing.Sorted()), ExplainDSeparated, nil
	}

	if on.Len() == 1 && doing.Len() == 1 && knowing.Empty() {
		y, x := on.Sorted()[0], doing.Sorted()[0]
		z, ok, err := m.BackDoor(x, y)
		if err != nil {
			return nil, "", err
		}
		if ok {
			t := identify.BackdoorTree(y, x, z)
			return identify.NewFormula(m, t, []string{y}, []string{x}, nil), ExplainBackdoor + z.String(), nil
		}
		z, ok, err = m.FrontDoor(x, y)
		if err != nil {
			return nil, "", err
		}
		if ok {
			t := identify.FrontdoorTree(y, x, z)
			return identify.NewFormula(m, t, []string{y}, []string{x}, nil), ExplainFrontdoor + z.String(), nil
		}
	}

	f, err := a.id.DoCalculusWithObservation(ctx, m, on, doing, knowing)
	if err != nil {
		return nil, "", err
	}
	return f, ExplainDoCalculus, nil
}

// noEffect reports whether intervening on doing leaves on unchanged given
// knowing: on and doing are d-separated by knowing once the arcs into the
// members of doing that are not ancestors of knowing are cut.
func noEffect(m *causal.Model, on, doing, knowing nodeset.Set) (bool, error) {
	if doing.Empty() {
		return false, nil
	}
	cut := m.Mutilated(doing, nil)
	anc := cut.Ancestors(knowing.Sorted()...)
	g := m.Mutilated(doing.Minus(anc), nil)
	return dsep.IsDSeparated(g, doing, on, knowing)
}

// String renders a result for logs and the command line.
func (r *Result) String() string {
	var b strings.Builder
	if r.Formula != nil {
		fmt.Fprintf(&b, "%s\n", r.Formula.ToLatex())
	}
	b.WriteString(r.Explanation)
	return b.String()
}

// CausalImpact runs [Analyzer.CausalImpact] with default options.
func CausalImpact(ctx context.Context, m *causal.Model, q Query) (*Result, error) {
	return New(identify.Options{}).CausalImpact(ctx, m, q)
}
