package potential

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/causeway/pkg/errors"
)

var (
	smoking = Variable{Name: "Smoking", Labels: []string{"no", "yes"}}
	cancer  = Variable{Name: "Cancer", Labels: []string{"no", "yes"}}
	tar     = Variable{Name: "Tar", Labels: []string{"low", "mid", "high"}}
)

func mustValues(t *testing.T, vars []Variable, values []float64) *Potential {
	t.Helper()
	p, err := FromValues(vars, values)
	if err != nil {
		t.Fatalf("FromValues: %v", err)
	}
	return p
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-12 }

func TestFromValuesSizeMismatch(t *testing.T) {
	_, err := FromValues([]Variable{smoking, cancer}, []float64{0.5, 0.5})
	if !errors.Is(err, errors.ErrCodeInvalidModel) {
		t.Errorf("FromValues() error = %v, want %v", err, errors.ErrCodeInvalidModel)
	}
}

func TestFirstVariableFastest(t *testing.T) {
	p := mustValues(t, []Variable{cancer, smoking}, []float64{0.9, 0.1, 0.7, 0.3})
	got, err := p.Get(map[string]int{"Cancer": 1, "Smoking": 1})
	if err != nil {
		t.Fatal(err)
	}
	if got != 0.3 {
		t.Errorf("Get(Cancer=yes, Smoking=yes) = %v, want 0.3", got)
	}
}

func TestMultiplyBroadcasts(t *testing.T) {
	prior := mustValues(t, []Variable{smoking}, []float64{0.6, 0.4})
	cpt := mustValues(t, []Variable{cancer, smoking}, []float64{0.9, 0.1, 0.7, 0.3})

	joint, err := Multiply(cpt, prior)
	if err != nil {
		t.Fatal(err)
	}
	if got := joint.Names(); !slices.Equal(got, []string{"Cancer", "Smoking"}) {
		t.Errorf("Names() = %v, want [Cancer Smoking]", got)
	}
	want := []float64{0.54, 0.06, 0.28, 0.12}
	for i, v := range joint.Values() {
		if !approx(v, want[i]) {
			t.Errorf("joint[%d] = %v, want %v", i, v, want[i])
		}
	}
	if !approx(joint.Sum(), 1) {
		t.Errorf("Sum() = %v, want 1", joint.Sum())
	}
}

func TestDivideRecoversConditional(t *testing.T) {
	joint := mustValues(t, []Variable{cancer, smoking}, []float64{0.54, 0.06, 0.28, 0.12})
	marg := joint.MargSumOut("Cancer")
	cond, err := Divide(joint, marg)
	if err != nil {
		t.Fatal(err)
	}
	want := mustValues(t, []Variable{cancer, smoking}, []float64{0.9, 0.1, 0.7, 0.3})
	if !ApproxEqual(cond, want, 1e-12) {
		t.Errorf("Divide() = \n%v want \n%v", cond, want)
	}
}

func TestDivideZeroByZero(t *testing.T) {
	a := mustValues(t, []Variable{smoking}, []float64{0, 1})
	b := mustValues(t, []Variable{smoking}, []float64{0, 2})
	q, _ := Divide(a, b)
	if got := q.Values(); got[0] != 0 || got[1] != 0.5 {
		t.Errorf("Divide() = %v, want [0 0.5]", got)
	}
}

func TestAddSubtract(t *testing.T) {
	a := mustValues(t, []Variable{smoking}, []float64{0.25, 0.75})
	b := mustValues(t, []Variable{smoking}, []float64{0.5, 0.5})
	s, _ := Add(a, b)
	d, _ := Subtract(a, b)
	if got := s.Values(); !approx(got[0], 0.75) || !approx(got[1], 1.25) {
		t.Errorf("Add() = %v", got)
	}
	if got := d.Values(); !approx(got[0], -0.25) || !approx(got[1], 0.25) {
		t.Errorf("Subtract() = %v", got)
	}
}

func TestMismatchedDomains(t *testing.T) {
	a := New(smoking)
	b := New(Variable{Name: "Smoking", Labels: []string{"a", "b", "c"}})
	if _, err := Multiply(a, b); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("Multiply() error = %v, want %v", err, errors.ErrCodeInvalidArgument)
	}
}

func TestMargSumInOrder(t *testing.T) {
	p := New(cancer, smoking, tar).Fill(1)
	m := p.MargSumIn("Tar", "Cancer")
	if got := m.Names(); !slices.Equal(got, []string{"Tar", "Cancer"}) {
		t.Errorf("MargSumIn() names = %v, want [Tar Cancer]", got)
	}
	for _, v := range m.Values() {
		if v != 2 {
			t.Errorf("MargSumIn() cell = %v, want 2", v)
		}
	}
}

func TestExtract(t *testing.T) {
	p := mustValues(t, []Variable{cancer, smoking}, []float64{0.9, 0.1, 0.7, 0.3})
	e, err := p.ExtractLabels(map[string]string{"Smoking": "yes", "Other": "x"})
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Values(); !slices.Equal(got, []float64{0.7, 0.3}) {
		t.Errorf("Extract() = %v, want [0.7 0.3]", got)
	}
	if _, err := p.ExtractLabels(map[string]string{"Smoking": "maybe"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ExtractLabels(bad label) error = %v, want %v", err, errors.ErrCodeNotFound)
	}
}

func TestReorder(t *testing.T) {
	p := mustValues(t, []Variable{cancer, smoking}, []float64{0.9, 0.1, 0.7, 0.3})
	r := p.Reorder("Smoking")
	if got := r.Names(); !slices.Equal(got, []string{"Smoking", "Cancer"}) {
		t.Errorf("Reorder() names = %v", got)
	}
	if got := r.Values(); !slices.Equal(got, []float64{0.9, 0.7, 0.1, 0.3}) {
		t.Errorf("Reorder() values = %v, want [0.9 0.7 0.1 0.3]", got)
	}
	if !ApproxEqual(p, r, 0) {
		t.Error("ApproxEqual(p, Reorder(p)) = false, want true")
	}
}

func TestScalar(t *testing.T) {
	p := mustValues(t, []Variable{smoking}, []float64{0.6, 0.4})
	s := p.MargSumOut("Smoking")
	if s.Len() != 1 || !approx(s.Values()[0], 1) {
		t.Errorf("MargSumOut(all) = %v, want scalar 1", s.Values())
	}
}
