// Package bn implements discrete Bayesian networks.
//
// A [Network] couples a [dag.DAG] over variable names with one conditional
// probability table per variable. The table of X is a
// [potential.Potential] over (X, parents of X in arc-insertion order), so a
// CPT for Cancer with parent Smoking lists P(Cancer | Smoking=first label)
// first.
//
// Adding or erasing an arc resets the child's table to a uniform
// distribution of the new shape; set real values afterwards with
// [Network.SetCPT].
package bn

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/causeway/pkg/dag"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/nodeset"
	"github.com/matzehuels/causeway/pkg/potential"
)

// Network is a discrete Bayesian network.
//
// The zero value is not usable - use New. A Network is not safe for
// concurrent mutation; concurrent reads are fine.
type Network struct {
	g       *dag.DAG
	vars    map[string]potential.Variable
	order   []string            // variable insertion order
	parents map[string][]string // CPT parent order (arc insertion order)
	cpts    map[string]*potential.Potential
}

// New returns an empty network.
func New() *Network {
	return &Network{
		g:       dag.New(nil),
		vars:    make(map[string]potential.Variable),
		parents: make(map[string][]string),
		cpts:    make(map[string]*potential.Potential),
	}
}

// AddVariable adds a variable with the given labels and a uniform prior.
func (n *Network) AddVariable(name string, labels ...string) error {
	if err := errors.ValidateVariableName(name); err != nil {
		return err
	}
	if len(labels) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "variable %q needs at least one label", name)
	}
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if err := errors.ValidateLabel(l); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "variable %q", name)
		}
		if seen[l] {
			return errors.New(errors.ErrCodeInvalidInput, "variable %q repeats label %q", name, l)
		}
		seen[l] = true
	}
	if err := n.g.AddNode(dag.Node{ID: name}); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "variable %q", name)
	}
	n.vars[name] = potential.Variable{Name: name, Labels: slices.Clone(labels)}
	n.order = append(n.order, name)
	n.resetCPT(name)
	return nil
}

// AddArc adds the arc from → to. It fails with NOT_FOUND for unknown
// variables and INVALID_ARC when the arc exists or would close a cycle.
func (n *Network) AddArc(from, to string) error {
	if err := n.check(from, to); err != nil {
		return err
	}
	if err := n.g.AddEdge(dag.Edge{From: from, To: to}); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidArc, err, "arc %s -> %s", from, to)
	}
	n.parents[to] = append(n.parents[to], from)
	n.resetCPT(to)
	return nil
}

// EraseArc removes the arc from → to if present.
func (n *Network) EraseArc(from, to string) error {
	if err := n.check(from, to); err != nil {
		return err
	}
	if !n.g.HasEdge(from, to) {
		return nil
	}
	n.g.RemoveEdge(from, to)
	n.parents[to] = slices.DeleteFunc(n.parents[to], func(p string) bool { return p == from })
	n.resetCPT(to)
	return nil
}

func (n *Network) resetCPT(name string) {
	vars := []potential.Variable{n.vars[name]}
	for _, p := range n.parents[name] {
		vars = append(vars, n.vars[p])
	}
	n.cpts[name] = potential.New(vars...).Fill(1 / float64(n.vars[name].Size()))
}

// SetCPT replaces the table of name. Values follow the layout of
// [Network.CPTVars]: the variable itself varies fastest, then each parent
// in arc-insertion order.
func (n *Network) SetCPT(name string, values []float64) error {
	if err := n.check(name); err != nil {
		return err
	}
	p, err := potential.FromValues(n.CPTVars(name), values)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidModel, err, "cpt of %q", name)
	}
	n.cpts[name] = p
	return nil
}

// SetCPTPotential replaces the table of name with p, which must range over
// exactly the variable and its parents (in any order).
func (n *Network) SetCPTPotential(name string, p *potential.Potential) error {
	if err := n.check(name); err != nil {
		return err
	}
	want := n.CPTVars(name)
	names := make([]string, len(want))
	for i, v := range want {
		names[i] = v.Name
	}
	got := p.Names()
	if len(got) != len(names) || !nodeset.Of(got...).Equal(nodeset.Of(names...)) {
		return errors.New(errors.ErrCodeInvalidModel, "cpt of %q must range over %v, got %v", name, names, got)
	}
	n.cpts[name] = p.Reorder(names...)
	return nil
}

// CPTVars returns the axes of name's table: the variable, then its parents
// in arc-insertion order.
func (n *Network) CPTVars(name string) []potential.Variable {
	vars := []potential.Variable{n.vars[name]}
	for _, p := range n.parents[name] {
		vars = append(vars, n.vars[p])
	}
	return vars
}

// CPT returns a copy of the conditional table of name.
func (n *Network) CPT(name string) (*potential.Potential, error) {
	if err := n.check(name); err != nil {
		return nil, err
	}
	return n.cpts[name].Clone(), nil
}

// Variable returns the variable called name.
func (n *Network) Variable(name string) (potential.Variable, error) {
	v, ok := n.vars[name]
	if !ok {
		return potential.Variable{}, errors.New(errors.ErrCodeNotFound, "unknown variable %q", name)
	}
	return v, nil
}

// Has reports whether name is a variable of n.
func (n *Network) Has(name string) bool {
	_, ok := n.vars[name]
	return ok
}

// Names returns the variable names in lexicographic order.
func (n *Network) Names() []string { return n.g.NodeIDs() }

// InsertionOrder returns the variable names in the order they were added.
func (n *Network) InsertionOrder() []string { return slices.Clone(n.order) }

// Size returns the number of variables.
func (n *Network) Size() int { return len(n.vars) }

// DAG returns the network structure. Callers must not modify it; use
// [dag.DAG.Clone] for a mutable copy.
func (n *Network) DAG() *dag.DAG { return n.g }

// Parents returns the sorted parents of name.
func (n *Network) Parents(name string) []string { return n.g.Parents(name) }

// Children returns the sorted children of name.
func (n *Network) Children(name string) []string { return n.g.Children(name) }

// Ancestors returns the strict ancestors of name.
func (n *Network) Ancestors(name string) nodeset.Set { return n.g.Ancestors(name) }

// Descendants returns the strict descendants of name.
func (n *Network) Descendants(name string) nodeset.Set { return n.g.Descendants(name) }

// Arcs returns every arc, ordered by source then target.
func (n *Network) Arcs() []dag.Edge { return n.g.Edges() }

// TopologicalOrder returns a parents-first order with lexicographic ties.
func (n *Network) TopologicalOrder() []string { return n.g.TopologicalOrder() }

// Clone returns an independent deep copy.
func (n *Network) Clone() *Network {
	c := &Network{
		g:       n.g.Clone(),
		vars:    make(map[string]potential.Variable, len(n.vars)),
		order:   slices.Clone(n.order),
		parents: make(map[string][]string, len(n.parents)),
		cpts:    make(map[string]*potential.Potential, len(n.cpts)),
	}
	for k, v := range n.vars {
		c.vars[k] = v
	}
	for k, v := range n.parents {
		c.parents[k] = slices.Clone(v)
	}
	for k, v := range n.cpts {
		c.cpts[k] = v.Clone()
	}
	return c
}

// Validate checks that every CPT column sums to one (within 1e-6) and holds
// no negative entry.
func (n *Network) Validate() error {
	for _, name := range n.Names() {
		cpt := n.cpts[name]
		size := n.vars[name].Size()
		vals := cpt.Values()
		for col := 0; col < len(vals); col += size {
			var s float64
			for _, v := range vals[col : col+size] {
				if v < 0 || math.IsNaN(v) {
					return errors.New(errors.ErrCodeInvalidModel, "cpt of %q has invalid entry %v", name, v)
				}
				s += v
			}
			if math.Abs(s-1) > 1e-6 {
				return errors.New(errors.ErrCodeInvalidModel,
					"cpt of %q: column %d sums to %v, want 1", name, col/size, s)
			}
		}
	}
	return nil
}

func (n *Network) check(names ...string) error {
	for _, name := range names {
		if _, ok := n.vars[name]; !ok {
			return errors.New(errors.ErrCodeNotFound, "unknown variable %q", name)
		}
	}
	return nil
}

// String returns a short description such as "BN{nodes: 3, arcs: 2}".
func (n *Network) String() string {
	return fmt.Sprintf("BN{nodes: %d, arcs: %d}", n.g.NodeCount(), n.g.EdgeCount())
}
