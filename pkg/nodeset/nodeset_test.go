package nodeset

import (
	"slices"
	"testing"
)

func TestSetAlgebra(t *testing.T) {
	a := Of("x", "y", "z")
	b := Of("y", "w")

	if got := a.Union(b).Sorted(); !slices.Equal(got, []string{"w", "x", "y", "z"}) {
		t.Errorf("Union() = %v, want [w x y z]", got)
	}
	if got := a.Minus(b).Sorted(); !slices.Equal(got, []string{"x", "z"}) {
		t.Errorf("Minus() = %v, want [x z]", got)
	}
	if got := a.Intersect(b).Sorted(); !slices.Equal(got, []string{"y"}) {
		t.Errorf("Intersect() = %v, want [y]", got)
	}
	if !a.Intersects(b) {
		t.Error("Intersects() = false, want true")
	}
	if a.Intersects(Of("q")) {
		t.Error("Intersects({q}) = true, want false")
	}
}

func TestSetOperationsDoNotMutate(t *testing.T) {
	a := Of("x", "y")
	_ = a.Union(Of("z"))
	_ = a.Minus(Of("x"))
	if a.Len() != 2 || !a.Has("x") || a.Has("z") {
		t.Errorf("receiver changed to %v", a)
	}
}

func TestSubsetAndEqual(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Set
		subset bool
		equal  bool
	}{
		{"empty in empty", Of(), Of(), true, true},
		{"nil in set", nil, Of("a"), true, false},
		{"proper subset", Of("a"), Of("a", "b"), true, false},
		{"same", Of("a", "b"), Of("b", "a"), true, true},
		{"disjoint", Of("a"), Of("b"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.SubsetOf(tt.b); got != tt.subset {
				t.Errorf("SubsetOf() = %v, want %v", got, tt.subset)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal() = %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestString(t *testing.T) {
	if got := Of("b", "a").String(); got != "{a, b}" {
		t.Errorf("String() = %q, want %q", got, "{a, b}")
	}
	if got := Set(nil).String(); got != "{}" {
		t.Errorf("String() = %q, want %q", got, "{}")
	}
}
