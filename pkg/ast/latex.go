package ast

import (
	"slices"
	"strings"
)

const continueLine = "| "

// ToLatex renders t in LaTeX. Variables in scope are taken as already bound
// once, so a [Sum] over one of them renders it primed.
func ToLatex(t Tree, scope ...string) string {
	occur := make(map[string]int, len(scope))
	for _, v := range scope {
		occur[v] = 1
	}
	return latex(t, occur)
}

func present(names []string, occur map[string]int) string {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	for i, n := range sorted {
		if k := occur[n] - 1; k > 0 {
			sorted[i] = n + strings.Repeat("'", k)
		}
	}
	return strings.Join(sorted, ",")
}

// sumChain unrolls nested sums into their bound variables and inner term.
func sumChain(s *Sum) ([]string, Tree) {
	var vars []string
	var t Tree = s
	for {
		cur, ok := t.(*Sum)
		if !ok {
			return vars, t
		}
		vars = append(vars, cur.Var)
		t = cur.Term
	}
}

func latex(t Tree, occur map[string]int) string {
	switch n := t.(type) {
	case *Sum:
		vars, term := sumChain(n)
		for _, v := range vars {
			occur[v]++
		}
		s := `\sum_{` + present(vars, occur) + `}{` + latex(term, occur) + `}`
		for _, v := range vars {
			occur[v]--
		}
		return s
	case *Product:
		return grouped(n.Left, occur) + `\cdot ` + grouped(n.Right, occur)
	case *Quotient:
		return `\frac{` + latex(n.Left, occur) + `}{` + latex(n.Right, occur) + `}`
	case *Plus:
		return latex(n.Left, occur) + "+" + latex(n.Right, occur)
	case *Difference:
		return latex(n.Left, occur) + "-" + grouped(n.Right, occur)
	case *Posterior:
		if len(n.Given) == 0 {
			return `P\left(` + present(n.Vars, occur) + `\right)`
		}
		return `P\left(` + present(n.Vars, occur) + `\mid ` + present(n.Given, occur) + `\right)`
	case *Joint:
		return `P\left(` + present(n.Vars, occur) + `\right)`
	}
	return ""
}

// grouped renders operands that bind looser than a product in parentheses.
func grouped(t Tree, occur map[string]int) string {
	switch t.Kind() {
	case KindSum, KindPlus, KindDifference:
		return `\left(` + latex(t, occur) + `\right)`
	}
	return latex(t, occur)
}

// Print renders t as an indented outline, one node per line.
func Print(t Tree) string {
	var b strings.Builder
	outline(&b, t, 0)
	return b.String()
}

func outline(b *strings.Builder, t Tree, indent int) {
	b.WriteString(strings.Repeat(continueLine, indent))
	switch n := t.(type) {
	case *Sum:
		vars, term := sumChain(n)
		b.WriteString("sum on " + present(vars, nil) + " for\n")
		outline(b, term, indent+1)
	case *Posterior:
		b.WriteString("P(" + present(n.Vars, nil))
		if len(n.Given) > 0 {
			b.WriteString("|" + present(n.Given, nil))
		}
		b.WriteString(")")
	case *Joint:
		b.WriteString("joint P(" + present(n.Vars, nil) + ")")
	default:
		l, r, _ := operands(t)
		b.WriteString(symbol[t.Kind()] + "\n")
		outline(b, l, indent+1)
		b.WriteString("\n")
		outline(b, r, indent+1)
	}
}

var symbol = map[Kind]string{
	KindProduct:    "*",
	KindQuotient:   "/",
	KindDifference: "-",
	KindPlus:       "+",
}
