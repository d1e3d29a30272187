package causal

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/causeway/pkg/bn"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/nodeset"
)

func fast(t testing.TB, desc string) *bn.Network {
	t.Helper()
	net, err := bn.Fast(desc, 42)
	if err != nil {
		t.Fatalf("bn.Fast(%q): %v", desc, err)
	}
	return net
}

func TestNewWithLatent(t *testing.T) {
	net := fast(t, "x->y;x->m->y")
	m, err := New(net, Latent{Name: "u", Children: []string{"x", "y"}})
	if err != nil {
		t.Fatal(err)
	}
	if m.ExistsArc("x", "y") {
		t.Error("arc x -> y survived the latent confounder")
	}
	if !net.DAG().HasEdge("x", "y") {
		t.Error("observational network lost arc x -> y")
	}
	if !m.ExistsArc("u", "x") || !m.ExistsArc("u", "y") {
		t.Error("latent arcs missing")
	}
	if got, want := m.Observed(), nodeset.Of("x", "y", "m"); !got.Equal(want) {
		t.Errorf("Observed() = %v, want %v", got, want)
	}
	if got := m.String(); got != "CausalModel{observed: 3, latent: 1, arcs: 4}" {
		t.Errorf("String() = %q", got)
	}
}

func TestAddLatentKeepArcs(t *testing.T) {
	m, _ := New(fast(t, "x->y"))
	if err := m.AddLatentVariable("u", []string{"x", "y"}, true); err != nil {
		t.Fatal(err)
	}
	if !m.ExistsArc("x", "y") {
		t.Error("keepArcs did not keep x -> y")
	}
}

func TestAddLatentErrors(t *testing.T) {
	tests := []struct {
		name     string
		latent   string
		children []string
		want     errors.Code
	}{
		{"unknown child", "u", []string{"x", "q"}, errors.ErrCodeNotFound},
		{"duplicate name", "x", []string{"y"}, errors.ErrCodeInvalidArgument},
		{"latent child", "v", []string{"w"}, errors.ErrCodeInvalidArc},
		{"blank name", " ", []string{"x"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := New(fast(t, "x->y"), Latent{Name: "w", Children: []string{"x"}})
			err := m.AddLatentVariable(tt.latent, tt.children, false)
			if !errors.Is(err, tt.want) {
				t.Errorf("AddLatentVariable() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAddCausalArc(t *testing.T) {
	m, _ := New(fast(t, "a->b->c"), Latent{Name: "u", Children: []string{"a", "c"}})
	if err := m.AddCausalArc("c", "a"); !errors.Is(err, errors.ErrCodeInvalidArc) {
		t.Errorf("AddCausalArc(cycle) error = %v, want %v", err, errors.ErrCodeInvalidArc)
	}
	if err := m.AddCausalArc("a", "u"); !errors.Is(err, errors.ErrCodeInvalidArc) {
		t.Errorf("AddCausalArc(into latent) error = %v, want %v", err, errors.ErrCodeInvalidArc)
	}
	if err := m.AddCausalArc("a", "q"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("AddCausalArc(unknown) error = %v, want %v", err, errors.ErrCodeNotFound)
	}
	if err := m.AddCausalArc("a", "c"); err != nil {
		t.Errorf("AddCausalArc(a, c) error = %v", err)
	}
	if err := m.EraseCausalArc("a", "c"); err != nil || m.ExistsArc("a", "c") {
		t.Errorf("EraseCausalArc(a, c) = %v, arc still present: %v", err, m.ExistsArc("a", "c"))
	}
}

func TestIDs(t *testing.T) {
	m, _ := New(fast(t, "a->b"), Latent{Name: "u", Children: []string{"a", "b"}})
	for _, name := range []string{"a", "b", "u"} {
		id, err := m.ID(name)
		if err != nil {
			t.Fatal(err)
		}
		if back, _ := m.Name(id); back != name {
			t.Errorf("Name(ID(%q)) = %q", name, back)
		}
	}
	if _, err := m.ID("q"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ID(unknown) error = %v", err)
	}
	if _, err := m.Name(99); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Name(99) error = %v", err)
	}
}

func TestInducedSubModel(t *testing.T) {
	m, _ := New(fast(t, "a->b->c->d"),
		Latent{Name: "u", Children: []string{"a", "c"}},
		Latent{Name: "v", Children: []string{"d"}},
	)
	sub, err := m.InducedSubModel(nodeset.Of("a", "b", "c"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := sub.Observed(), nodeset.Of("a", "b", "c"); !got.Equal(want) {
		t.Errorf("Observed() = %v, want %v", got, want)
	}
	if got, want := sub.Latents(), nodeset.Of("u"); !got.Equal(want) {
		t.Errorf("Latents() = %v, want %v", got, want)
	}
	if !sub.ExistsArc("b", "c") || sub.ExistsArc("c", "d") {
		t.Error("arcs among kept nodes not preserved")
	}
	if !m.Has("d") || !m.ExistsArc("c", "d") {
		t.Error("InducedSubModel modified the parent model")
	}
	if _, err := m.InducedSubModel(nodeset.Of("q")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("InducedSubModel(unknown) error = %v", err)
	}
}

func TestCComponents(t *testing.T) {
	m, _ := New(fast(t, "a->b->c->d;e"),
		Latent{Name: "u", Children: []string{"a", "c"}},
		Latent{Name: "v", Children: []string{"c", "e"}},
	)
	var got []string
	for _, c := range m.CComponents() {
		got = append(got, c.String())
	}
	want := []string{"{a, c, e}", "{b}", "{d}"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("CComponents() = %v, want %v", got, want)
	}
}

func TestMutilated(t *testing.T) {
	m, _ := New(fast(t, "a->b->c"), Latent{Name: "u", Children: []string{"b", "c"}})
	g := m.Mutilated(nodeset.Of("b"), nodeset.Of("c"))
	if g.HasEdge("a", "b") || g.HasEdge("u", "b") {
		t.Error("arcs into b kept")
	}
	if !m.ExistsArc("a", "b") {
		t.Error("Mutilated modified the model")
	}
}

func TestTopologicalOrderSkipsLatents(t *testing.T) {
	m, _ := New(fast(t, "c->b->a"), Latent{Name: "u", Children: []string{"c", "a"}})
	got := fmt.Sprint(m.TopologicalOrder())
	if got != "[c b a]" {
		t.Errorf("TopologicalOrder() = %s, want [c b a]", got)
	}
}

func TestBackDoorFrontDoor(t *testing.T) {
	m, _ := New(fast(t, "z->x->y;z->y"))
	s, ok, err := m.BackDoor("x", "y")
	if err != nil || !ok || !s.Equal(nodeset.Of("z")) {
		t.Errorf("BackDoor(x, y) = %v, %v, %v; want {z}", s, ok, err)
	}

	fm, _ := New(fast(t, "x->m->y"), Latent{Name: "u", Children: []string{"x", "y"}})
	if _, ok, _ := fm.BackDoor("x", "y"); ok {
		t.Error("BackDoor found through a latent variable")
	}
	s, ok, err = fm.FrontDoor("x", "y")
	if err != nil || !ok || !s.Equal(nodeset.Of("m")) {
		t.Errorf("FrontDoor(x, y) = %v, %v, %v; want {m}", s, ok, err)
	}
	if _, _, err := fm.FrontDoor("x", "q"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("FrontDoor(unknown) error = %v", err)
	}
}

func TestWithObservational(t *testing.T) {
	m, _ := New(fast(t, "a->b"))
	if _, err := m.WithObservational(fast(t, "a->c")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("WithObservational(mismatch) error = %v", err)
	}
	other := fast(t, "a->b")
	c, err := m.WithObservational(other)
	if err != nil {
		t.Fatal(err)
	}
	if c.Observational() == m.Observational() {
		t.Error("WithObservational shares the network")
	}
}

func TestStaysAcyclic(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("arc and latent insertions keep the causal DAG acyclic", prop.ForAll(
		func(seed uint64, ops int) bool {
			rng := rand.New(rand.NewPCG(seed, 3))
			m, err := New(fast(t, "a;b;c;d;e;f"))
			if err != nil {
				return false
			}
			names := m.Names()
			for i := 0; i < ops; i++ {
				from, to := names[rng.IntN(len(names))], names[rng.IntN(len(names))]
				if rng.IntN(4) == 0 {
					_ = m.AddLatentVariable(fmt.Sprintf("u%d", i), []string{from, to}, rng.IntN(2) == 0)
					continue
				}
				err := m.AddCausalArc(from, to)
				if err != nil && !errors.Is(err, errors.ErrCodeInvalidArc) {
					return false
				}
			}
			return m.DAG().Validate() == nil
		},
		gen.UInt64(),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}
