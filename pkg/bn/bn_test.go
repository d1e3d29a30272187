package bn

import (
	"slices"
	"testing"

	"github.com/matzehuels/causeway/pkg/errors"
)

func smokingNetwork(t *testing.T) *Network {
	t.Helper()
	n := New()
	if err := n.AddVariable("Smoking", "no", "yes"); err != nil {
		t.Fatal(err)
	}
	if err := n.AddVariable("Cancer", "no", "yes"); err != nil {
		t.Fatal(err)
	}
	if err := n.AddArc("Smoking", "Cancer"); err != nil {
		t.Fatal(err)
	}
	if err := n.SetCPT("Smoking", []float64{0.6, 0.4}); err != nil {
		t.Fatal(err)
	}
	if err := n.SetCPT("Cancer", []float64{0.9, 0.1, 0.7, 0.3}); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestNetworkBasics(t *testing.T) {
	n := smokingNetwork(t)
	if err := n.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if got := n.Parents("Cancer"); !slices.Equal(got, []string{"Smoking"}) {
		t.Errorf("Parents(Cancer) = %v, want [Smoking]", got)
	}
	cpt, err := n.CPT("Cancer")
	if err != nil {
		t.Fatal(err)
	}
	if got := cpt.Names(); !slices.Equal(got, []string{"Cancer", "Smoking"}) {
		t.Errorf("CPT names = %v, want [Cancer Smoking]", got)
	}
}

func TestNetworkErrors(t *testing.T) {
	n := smokingNetwork(t)

	tests := []struct {
		name string
		err  error
		code errors.Code
	}{
		{"unknown arc source", n.AddArc("Tar", "Cancer"), errors.ErrCodeNotFound},
		{"cycle", n.AddArc("Cancer", "Smoking"), errors.ErrCodeInvalidArc},
		{"duplicate arc", n.AddArc("Smoking", "Cancer"), errors.ErrCodeInvalidArc},
		{"duplicate variable", n.AddVariable("Smoking", "a", "b"), errors.ErrCodeInvalidInput},
		{"no labels", n.AddVariable("Tar"), errors.ErrCodeInvalidInput},
		{"repeated label", n.AddVariable("Tar", "a", "a"), errors.ErrCodeInvalidInput},
		{"bad cpt size", n.SetCPT("Cancer", []float64{1}), errors.ErrCodeInvalidModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.code) {
				t.Errorf("error = %v, want code %v", tt.err, tt.code)
			}
		})
	}
}

func TestValidateRejectsBadColumns(t *testing.T) {
	n := smokingNetwork(t)
	_ = n.SetCPT("Cancer", []float64{0.9, 0.2, 0.7, 0.3})
	if err := n.Validate(); !errors.Is(err, errors.ErrCodeInvalidModel) {
		t.Errorf("Validate() = %v, want %v", err, errors.ErrCodeInvalidModel)
	}
}

func TestEraseArcResetsCPT(t *testing.T) {
	n := smokingNetwork(t)
	if err := n.EraseArc("Smoking", "Cancer"); err != nil {
		t.Fatal(err)
	}
	cpt, _ := n.CPT("Cancer")
	if got := cpt.Values(); !slices.Equal(got, []float64{0.5, 0.5}) {
		t.Errorf("CPT after EraseArc = %v, want [0.5 0.5]", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	n := smokingNetwork(t)
	c := n.Clone()
	_ = c.SetCPT("Smoking", []float64{0.1, 0.9})
	_ = c.EraseArc("Smoking", "Cancer")

	cpt, _ := n.CPT("Smoking")
	if got := cpt.Values(); !slices.Equal(got, []float64{0.6, 0.4}) {
		t.Errorf("original CPT changed to %v", got)
	}
	if len(n.Parents("Cancer")) != 1 {
		t.Error("original lost its arc")
	}
}

func TestFast(t *testing.T) {
	n, err := Fast("Z->X->Y;Z->Y;w[3]<-Y", 42)
	if err != nil {
		t.Fatal(err)
	}
	if got := n.Names(); !slices.Equal(got, []string{"X", "Y", "Z", "w"}) {
		t.Errorf("Names() = %v", got)
	}
	if got := n.Parents("Y"); !slices.Equal(got, []string{"X", "Z"}) {
		t.Errorf("Parents(Y) = %v, want [X Z]", got)
	}
	if v, _ := n.Variable("w"); v.Size() != 3 {
		t.Errorf("w has %d labels, want 3", v.Size())
	}
	if err := n.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	again, _ := Fast("Z->X->Y;Z->Y;w[3]<-Y", 42)
	a, _ := n.CPT("Y")
	b, _ := again.CPT("Y")
	if !slices.Equal(a.Values(), b.Values()) {
		t.Error("Fast is not deterministic for a fixed seed")
	}
}
