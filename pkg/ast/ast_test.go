package ast

import (
	"context"
	"fmt"
	"testing"

	"github.com/matzehuels/causeway/pkg/bn"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/inference"
	"github.com/matzehuels/causeway/pkg/nodeset"
	"github.com/matzehuels/causeway/pkg/potential"
)

func backdoorTree() Tree {
	return NewSum(nodeset.Of("z"), &Product{
		Left:  NewPosterior(nodeset.Of("y"), nodeset.Of("x", "z")),
		Right: NewJoint(nodeset.Of("z")),
	})
}

func frontdoorTree() Tree {
	inner := NewSum(nodeset.Of("x"), &Product{
		Left:  NewPosterior(nodeset.Of("y"), nodeset.Of("m", "x")),
		Right: NewJoint(nodeset.Of("x")),
	})
	return NewSum(nodeset.Of("m"), &Product{
		Left:  NewPosterior(nodeset.Of("m"), nodeset.Of("x")),
		Right: inner,
	})
}

func TestToLatex(t *testing.T) {
	tests := []struct {
		name  string
		tree  Tree
		scope []string
		want  string
	}{
		{
			name:  "backdoor",
			tree:  backdoorTree(),
			scope: []string{"y", "x"},
			want:  `\sum_{z}{P\left(y\mid x,z\right)\cdot P\left(z\right)}`,
		},
		{
			name:  "frontdoor primes the inner x",
			tree:  frontdoorTree(),
			scope: []string{"y", "x"},
			want:  `\sum_{m}{P\left(m\mid x\right)\cdot \left(\sum_{x'}{P\left(y\mid m,x'\right)\cdot P\left(x'\right)}\right)}`,
		},
		{
			name: "quotient",
			tree: &Quotient{NewJoint(nodeset.Of("a", "b")), NewJoint(nodeset.Of("b"))},
			want: `\frac{P\left(a,b\right)}{P\left(b\right)}`,
		},
		{
			name: "difference groups its right operand",
			tree: &Difference{NewJoint(nodeset.Of("a")), &Plus{NewJoint(nodeset.Of("b")), NewJoint(nodeset.Of("c"))}},
			want: `P\left(a\right)-\left(P\left(b\right)+P\left(c\right)\right)`,
		},
		{
			name: "sum chain",
			tree: NewSum(nodeset.Of("b", "a"), NewJoint(nodeset.Of("a", "b", "c"))),
			want: `\sum_{a,b}{P\left(a,b,c\right)}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToLatex(tt.tree, tt.scope...); got != tt.want {
				t.Errorf("ToLatex() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestPrint(t *testing.T) {
	want := "sum on z for\n| *\n| | P(y|x,z)\n| | joint P(z)"
	if got := Print(backdoorTree()); got != want {
		t.Errorf("Print() =\n%s\nwant\n%s", got, want)
	}
}

func TestNewSum(t *testing.T) {
	leaf := NewJoint(nodeset.Of("a"))
	if got := NewSum(nodeset.Of(), leaf); got != Tree(leaf) {
		t.Errorf("NewSum(empty) = %v, want the term itself", got)
	}
	s, ok := NewSum(nodeset.Of("c", "b"), leaf).(*Sum)
	if !ok || s.Var != "b" {
		t.Fatalf("NewSum() outer = %+v, want Sum over b", s)
	}
	if inner, ok := s.Term.(*Sum); !ok || inner.Var != "c" || inner.Term != Tree(leaf) {
		t.Errorf("NewSum() inner = %+v, want Sum over c", s.Term)
	}
}

func TestProductOfTrees(t *testing.T) {
	a, b, c := NewJoint(nodeset.Of("a")), NewJoint(nodeset.Of("b")), NewJoint(nodeset.Of("c"))
	if ProductOfTrees(nil) != nil {
		t.Error("ProductOfTrees(nil) != nil")
	}
	if got := ProductOfTrees([]Tree{a}); got != Tree(a) {
		t.Errorf("ProductOfTrees([a]) = %v, want a", got)
	}
	got := ProductOfTrees([]Tree{a, b, c})
	want := `P\left(a\right)\cdot P\left(b\right)\cdot P\left(c\right)`
	if s := ToLatex(got); s != want {
		t.Errorf("ProductOfTrees() = %s, want %s", s, want)
	}
	p := got.(*Product)
	if p.Left != Tree(a) || p.Right.Kind() != KindProduct {
		t.Error("ProductOfTrees() is not right-associative")
	}
}

func TestClone(t *testing.T) {
	orig := frontdoorTree()
	cp := orig.Clone()
	if ToLatex(cp) != ToLatex(orig) {
		t.Fatal("Clone() changed the expression")
	}
	leaf := cp.(*Sum).Term.(*Product).Left.(*Posterior)
	leaf.Given[0] = "changed"
	leaf.Vars = append(leaf.Vars, "extra")
	if ToLatex(cp) == ToLatex(orig) {
		t.Error("modifying the clone changed the original")
	}
	if got := orig.(*Sum).Term.(*Product).Left.(*Posterior).Given[0]; got != "x" {
		t.Errorf("original given = %q, want x", got)
	}
}

func TestNamesAndLeaves(t *testing.T) {
	tree := frontdoorTree()
	if got, want := Names(tree), nodeset.Of("m", "x", "y"); !got.Equal(want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if got := Leaves(tree); got != 3 {
		t.Errorf("Leaves() = %d, want 3", got)
	}
}

func network(t testing.TB) *bn.Network {
	t.Helper()
	net, err := bn.Fast("z->x->y;z->y", 3)
	if err != nil {
		t.Fatal(err)
	}
	return net
}

func TestEvalPosteriorReadsCPT(t *testing.T) {
	net := network(t)
	got, err := Evaluate(context.Background(), NewPosterior(nodeset.Of("y"), nodeset.Of("x", "z")), net)
	if err != nil {
		t.Fatal(err)
	}
	cpt, _ := net.CPT("y")
	if !potential.ApproxEqual(got, cpt, 0) {
		t.Errorf("Eval(P(y|x,z)) = %v, want the CPT %v", got, cpt)
	}
}

func TestEvalPosteriorByInference(t *testing.T) {
	net := network(t)
	inf := inference.New(net)
	got, err := Eval(context.Background(), NewPosterior(nodeset.Of("y"), nodeset.Of("x")), net, inf)
	if err != nil {
		t.Fatal(err)
	}
	joint, _ := inf.JointPosterior([]string{"x", "y"})
	px, _ := inf.JointPosterior([]string{"x"})
	want, _ := potential.Divide(joint, px)
	if !potential.ApproxEqual(got, want, 1e-12) {
		t.Errorf("Eval(P(y|x)) = %v, want %v", got, want)
	}
	for _, x := range []int{0, 1} {
		var s float64
		for _, y := range []int{0, 1} {
			v, _ := got.Get(map[string]int{"x": x, "y": y})
			s += v
		}
		if s < 1-1e-9 || s > 1+1e-9 {
			t.Errorf("sum over y of P(y|x=%d) = %v, want 1", x, s)
		}
	}
}

func TestEvalBackdoorAdjustment(t *testing.T) {
	net := network(t)
	got, err := Evaluate(context.Background(), backdoorTree(), net)
	if err != nil {
		t.Fatal(err)
	}

	cptY, _ := net.CPT("y")
	cptZ, _ := net.CPT("z")
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			var want float64
			for z := 0; z < 2; z++ {
				py, _ := cptY.Get(map[string]int{"y": y, "x": x, "z": z})
				pz, _ := cptZ.Get(map[string]int{"z": z})
				want += py * pz
			}
			v, err := got.Get(map[string]int{"x": x, "y": y})
			if err != nil {
				t.Fatal(err)
			}
			if d := v - want; d > 1e-12 || d < -1e-12 {
				t.Errorf("P(y=%d | do(x=%d)) = %v, want %v", y, x, v, want)
			}
		}
	}
}

func TestEvalErrors(t *testing.T) {
	net := network(t)
	if _, err := Evaluate(context.Background(), NewJoint(nodeset.Of("q")), net); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Evaluate(unknown) error = %v, want %v", err, errors.ErrCodeNotFound)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Evaluate(ctx, backdoorTree(), net); err == nil {
		t.Error("Evaluate() with cancelled context succeeded")
	}
}

func TestEvalDeterministic(t *testing.T) {
	net := network(t)
	a, err := Evaluate(context.Background(), frontdoorTreeOn(), net)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Evaluate(context.Background(), frontdoorTreeOn(), net)
	if fmt.Sprint(a.Values()) != fmt.Sprint(b.Values()) {
		t.Error("two evaluations differ")
	}
}

// frontdoorTreeOn is the frontdoor formula with z as the mediator, over the
// variables of network.
func frontdoorTreeOn() Tree {
	inner := NewSum(nodeset.Of("x"), &Product{
		Left:  NewPosterior(nodeset.Of("y"), nodeset.Of("z", "x")),
		Right: NewJoint(nodeset.Of("x")),
	})
	return NewSum(nodeset.Of("z"), &Product{
		Left:  NewPosterior(nodeset.Of("z"), nodeset.Of("x")),
		Right: inner,
	})
}

func ExampleToLatex() {
	tree := NewSum(nodeset.Of("z"), &Product{
		Left:  NewPosterior(nodeset.Of("y"), nodeset.Of("x", "z")),
		Right: NewJoint(nodeset.Of("z")),
	})
	fmt.Println(ToLatex(tree, "y", "x"))
	// Output: \sum_{z}{P\left(y\mid x,z\right)\cdot P\left(z\right)}
}

func ExamplePrint() {
	tree := &Quotient{
		Left:  NewJoint(nodeset.Of("a", "b")),
		Right: NewPosterior(nodeset.Of("b"), nodeset.Of("c")),
	}
	fmt.Println(Print(tree))
	// Output:
	// /
	// | joint P(a,b)
	// | P(b|c)
}
