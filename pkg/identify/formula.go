package identify

import (
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/causeway/pkg/ast"
	"github.com/matzehuels/causeway/pkg/causal"
	"github.com/matzehuels/causeway/pkg/potential"
)

// Formula is an identified causal query: the expression together with the
// query it answers and the model it was derived from.
type Formula struct {
	Model   *causal.Model
	Tree    ast.Tree
	On      []string
	Doing   []string
	Knowing []string
}

// NewFormula returns a formula for the query P(on | do(doing), knowing).
func NewFormula(m *causal.Model, t ast.Tree, on, doing, knowing []string) *Formula {
	return &Formula{Model: m, Tree: t, On: sorted(on), Doing: sorted(doing), Knowing: sorted(knowing)}
}

func sorted(s []string) []string {
	c := slices.Clone(s)
	slices.Sort(c)
	return slices.Compact(c)
}

// Eval evaluates the expression on the model's observational network.
func (f *Formula) Eval(ctx context.Context) (*potential.Potential, error) {
	return ast.Evaluate(ctx, f.Tree, f.Model.Observational())
}

// Clone returns a copy with an independent expression. The model is shared.
func (f *Formula) Clone() *Formula {
	return &Formula{
		Model:   f.Model,
		Tree:    f.Tree.Clone(),
		On:      slices.Clone(f.On),
		Doing:   slices.Clone(f.Doing),
		Knowing: slices.Clone(f.Knowing),
	}
}

// LatexQuery renders the left-hand side, e.g.
// "P( y \mid \hookrightarrow\mkern-6.5mu x, z)". Variables with an entry in
// values are shown with their label.
func (f *Formula) LatexQuery(values map[string]string) string {
	show := func(v string) string {
		if l, ok := values[v]; ok {
			return v + "=" + l
		}
		return v
	}
	var on []string
	for _, v := range f.On {
		on = append(on, show(v))
	}
	var cond []string
	for _, v := range f.Doing {
		cond = append(cond, `\hookrightarrow\mkern-6.5mu `+show(v))
	}
	for _, v := range f.Knowing {
		cond = append(cond, show(v))
	}
	q := "P( " + strings.Join(on, ", ")
	if len(cond) > 0 {
		q += ` \mid ` + strings.Join(cond, ", ")
	}
	return q + ")"
}

// ToLatex renders the whole formula as "query = expression".
func (f *Formula) ToLatex() string {
	scope := slices.Concat(f.On, f.Doing, f.Knowing)
	return f.LatexQuery(nil) + " = " + ast.ToLatex(f.Tree, scope...)
}

// String returns the indented outline of the expression.
func (f *Formula) String() string {
	return ast.Print(f.Tree)
}
