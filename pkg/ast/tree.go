package ast

import (
	"slices"

	"github.com/matzehuels/causeway/pkg/nodeset"
)

// Kind identifies the node type of a [Tree].
type Kind int

const (
	KindSum Kind = iota
	KindProduct
	KindQuotient
	KindDifference
	KindPlus
	KindPosterior
	KindJoint
)

var kindNames = [...]string{"sum", "product", "quotient", "difference", "plus", "posterior", "joint"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Tree is an expression node.
type Tree interface {
	Kind() Kind
	// Clone returns a deep copy sharing nothing with the receiver.
	Clone() Tree
	sealed()
}

// Sum marginalizes Var out of Term.
type Sum struct {
	Var  string
	Term Tree
}

// Product multiplies two subtrees.
type Product struct{ Left, Right Tree }

// Quotient divides Left by Right.
type Quotient struct{ Left, Right Tree }

// Difference subtracts Right from Left.
type Difference struct{ Left, Right Tree }

// Plus adds two subtrees.
type Plus struct{ Left, Right Tree }

// Posterior is P(Vars | Given) in the observational network. An empty Given
// makes it a joint distribution.
type Posterior struct {
	Vars  []string
	Given []string
}

// Joint is P(Vars) in the observational network.
type Joint struct {
	Vars []string
}

func (*Sum) Kind() Kind        { return KindSum }
func (*Product) Kind() Kind    { return KindProduct }
func (*Quotient) Kind() Kind   { return KindQuotient }
func (*Difference) Kind() Kind { return KindDifference }
func (*Plus) Kind() Kind       { return KindPlus }
func (*Posterior) Kind() Kind  { return KindPosterior }
func (*Joint) Kind() Kind      { return KindJoint }

func (*Sum) sealed()        {}
func (*Product) sealed()    {}
func (*Quotient) sealed()   {}
func (*Difference) sealed() {}
func (*Plus) sealed()       {}
func (*Posterior) sealed()  {}
func (*Joint) sealed()      {}

func (s *Sum) Clone() Tree        { return &Sum{Var: s.Var, Term: s.Term.Clone()} }
func (p *Product) Clone() Tree    { return &Product{p.Left.Clone(), p.Right.Clone()} }
func (q *Quotient) Clone() Tree   { return &Quotient{q.Left.Clone(), q.Right.Clone()} }
func (d *Difference) Clone() Tree { return &Difference{d.Left.Clone(), d.Right.Clone()} }
func (p *Plus) Clone() Tree       { return &Plus{p.Left.Clone(), p.Right.Clone()} }
func (p *Posterior) Clone() Tree {
	return &Posterior{Vars: slices.Clone(p.Vars), Given: slices.Clone(p.Given)}
}
func (j *Joint) Clone() Tree { return &Joint{Vars: slices.Clone(j.Vars)} }

// NewSum marginalizes every variable of vars out of term, as a chain of
// [Sum] nodes in sorted order. Without variables term is returned as is.
func NewSum(vars nodeset.Set, term Tree) Tree {
	names := vars.Sorted()
	for i := len(names) - 1; i >= 0; i-- {
		term = &Sum{Var: names[i], Term: term}
	}
	return term
}

// NewPosterior returns P(vars | given) with both name lists sorted.
func NewPosterior(vars, given nodeset.Set) *Posterior {
	return &Posterior{Vars: vars.Sorted(), Given: given.Sorted()}
}

// NewJoint returns P(vars) with sorted names.
func NewJoint(vars nodeset.Set) *Joint {
	return &Joint{Vars: vars.Sorted()}
}

// ProductOfTrees folds trees right-associatively into nested [Product]
// nodes: [a, b, c] gives a·(b·c). A single tree is returned unchanged and an
// empty list gives nil.
func ProductOfTrees(trees []Tree) Tree {
	if len(trees) == 0 {
		return nil
	}
	acc := trees[len(trees)-1]
	for i := len(trees) - 2; i >= 0; i-- {
		acc = &Product{Left: trees[i], Right: acc}
	}
	return acc
}

// Names returns every variable name a tree mentions, bound or free.
func Names(t Tree) nodeset.Set {
	s := nodeset.New(0)
	var walk func(Tree)
	walk = func(t Tree) {
		if l, r, ok := operands(t); ok {
			walk(l)
			walk(r)
			return
		}
		switch n := t.(type) {
		case *Sum:
			s.Add(n.Var)
			walk(n.Term)
		case *Posterior:
			s.Add(n.Vars...)
			s.Add(n.Given...)
		case *Joint:
			s.Add(n.Vars...)
		}
	}
	walk(t)
	return s
}

// Leaves counts the [Posterior] and [Joint] nodes of t.
func Leaves(t Tree) int {
	if l, r, ok := operands(t); ok {
		return Leaves(l) + Leaves(r)
	}
	if s, ok := t.(*Sum); ok {
		return Leaves(s.Term)
	}
	return 1
}

func operands(t Tree) (Tree, Tree, bool) {
	switch n := t.(type) {
	case *Product:
		return n.Left, n.Right, true
	case *Quotient:
		return n.Left, n.Right, true
	case *Difference:
		return n.Left, n.Right, true
	case *Plus:
		return n.Left, n.Right, true
	}
	return nil, nil, false
}
