package inference

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/causeway/pkg/bn"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/potential"
)

func smokingNetwork(t *testing.T) *bn.Network {
	t.Helper()
	n := bn.New()
	_ = n.AddVariable("Smoking", "no", "yes")
	_ = n.AddVariable("Cancer", "no", "yes")
	_ = n.AddArc("Smoking", "Cancer")
	_ = n.SetCPT("Smoking", []float64{0.6, 0.4})
	_ = n.SetCPT("Cancer", []float64{0.9, 0.1, 0.7, 0.3})
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
	return n
}

// bruteJoint multiplies every CPT of n together.
func bruteJoint(t *testing.T, n *bn.Network) *potential.Potential {
	t.Helper()
	joint := potential.New().Fill(1)
	for _, name := range n.Names() {
		cpt, _ := n.CPT(name)
		var err error
		if joint, err = potential.Multiply(joint, cpt); err != nil {
			t.Fatal(err)
		}
	}
	return joint
}

func TestPosteriorNoEvidence(t *testing.T) {
	e := New(smokingNetwork(t))
	p, err := e.Posterior("Cancer")
	if err != nil {
		t.Fatal(err)
	}
	got := p.Values()
	if math.Abs(got[1]-0.18) > 1e-12 {
		t.Errorf("P(Cancer=yes) = %v, want 0.18", got[1])
	}
}

func TestPosteriorWithEvidence(t *testing.T) {
	e := New(smokingNetwork(t))
	if err := e.SetEvidence(map[string]string{"Cancer": "yes"}); err != nil {
		t.Fatal(err)
	}
	p, err := e.Posterior("Smoking")
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Values()[1]; math.Abs(got-2.0/3) > 1e-12 {
		t.Errorf("P(Smoking=yes | Cancer=yes) = %v, want 2/3", got)
	}

	// An observed target keeps its axis with all mass on the observation.
	c, _ := e.Posterior("Cancer")
	if got := c.Values(); got[0] != 0 || got[1] != 1 {
		t.Errorf("P(Cancer | Cancer=yes) = %v, want [0 1]", got)
	}
}

func TestEvidenceErrors(t *testing.T) {
	e := New(smokingNetwork(t))
	if err := e.SetEvidence(map[string]string{"Tar": "high"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("SetEvidence(unknown var) = %v, want %v", err, errors.ErrCodeNotFound)
	}
	if err := e.SetEvidence(map[string]string{"Cancer": "maybe"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("SetEvidence(unknown label) = %v, want %v", err, errors.ErrCodeNotFound)
	}
	if _, err := e.JointPosterior([]string{"Tar"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("JointPosterior(unknown) = %v, want %v", err, errors.ErrCodeNotFound)
	}
}

func TestJointMatchesBruteForce(t *testing.T) {
	n, err := bn.Fast("a->b->d;a->c->d;c->e;d->f;e->f;a->g[3]->f", 7)
	if err != nil {
		t.Fatal(err)
	}
	joint := bruteJoint(t, n)
	e := New(n)

	queries := [][]string{{"f"}, {"b", "e"}, {"d", "a", "f"}, {"a", "b", "c", "d", "e", "f"}}
	for _, q := range queries {
		got, err := e.JointPosterior(q)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got.Names(), q) {
			t.Errorf("JointPosterior(%v) axes = %v", q, got.Names())
		}
		want := joint.MargSumIn(q...)
		if !potential.ApproxEqual(got, want, 1e-9) {
			t.Errorf("JointPosterior(%v) mismatch:\n%v\nwant\n%v", q, got, want)
		}
	}
}

func TestConditionalMatchesBruteForce(t *testing.T) {
	n, _ := bn.Fast("a->b->d;a->c->d;c->e", 11)
	joint := bruteJoint(t, n)

	e := New(n)
	_ = e.SetEvidence(map[string]string{"d": "1", "e": "0"})
	got, err := e.JointPosterior([]string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}

	sliced, _ := joint.Extract(map[string]int{"d": 1, "e": 0})
	want := sliced.MargSumIn("a", "b").Normalize()
	if !potential.ApproxEqual(got, want, 1e-9) {
		t.Errorf("P(a,b | d=1,e=0) mismatch:\n%v\nwant\n%v", got, want)
	}
}

func TestDeclaredTargets(t *testing.T) {
	e := New(smokingNetwork(t))
	if err := e.AddJointTarget("Smoking", "Cancer"); err != nil {
		t.Fatal(err)
	}
	if err := e.AddJointTarget("Tar"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("AddJointTarget(unknown) = %v, want %v", err, errors.ErrCodeNotFound)
	}
	if err := e.MakeInference(); err != nil {
		t.Fatal(err)
	}
	p, _ := e.JointPosterior([]string{"Cancer", "Smoking"})
	if math.Abs(p.Sum()-1) > 1e-12 {
		t.Errorf("Sum() = %v, want 1", p.Sum())
	}
}
