package potential

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/causeway/pkg/errors"
)

// Variable is a discrete variable with a finite, ordered set of labels.
type Variable struct {
	Name   string   `json:"name" yaml:"name" toml:"name"`
	Labels []string `json:"labels" yaml:"labels" toml:"labels"`
}

// Size returns the domain size.
func (v Variable) Size() int { return len(v.Labels) }

// Index returns the position of label in the domain, or -1.
func (v Variable) Index(label string) int {
	return slices.Index(v.Labels, label)
}

// Potential is a dense table over an ordered list of variables.
type Potential struct {
	vars    []Variable
	strides []int
	values  []float64
}

// New returns a potential over vars filled with zeros.
func New(vars ...Variable) *Potential {
	p := &Potential{vars: slices.Clone(vars)}
	p.strides = make([]int, len(vars))
	size := 1
	for i, v := range vars {
		p.strides[i] = size
		size *= v.Size()
	}
	p.values = make([]float64, size)
	return p
}

// FromValues returns a potential over vars holding values (first variable
// fastest). It fails with INVALID_MODEL when the length does not match.
func FromValues(vars []Variable, values []float64) (*Potential, error) {
	p := New(vars...)
	if len(values) != len(p.values) {
		return nil, errors.New(errors.ErrCodeInvalidModel,
			"table over %s needs %d values, got %d", strings.Join(p.Names(), ", "), len(p.values), len(values))
	}
	copy(p.values, values)
	return p, nil
}

// Fill sets every cell to v and returns p.
func (p *Potential) Fill(v float64) *Potential {
	for i := range p.values {
		p.values[i] = v
	}
	return p
}

// Vars returns a copy of the variable list.
func (p *Potential) Vars() []Variable { return slices.Clone(p.vars) }

// Names returns the variable names in axis order.
func (p *Potential) Names() []string {
	names := make([]string, len(p.vars))
	for i, v := range p.vars {
		names[i] = v.Name
	}
	return names
}

// Var returns the variable called name.
func (p *Potential) Var(name string) (Variable, bool) {
	if i := p.pos(name); i >= 0 {
		return p.vars[i], true
	}
	return Variable{}, false
}

// Values returns a copy of the flat value slice.
func (p *Potential) Values() []float64 { return slices.Clone(p.values) }

// Len returns the number of cells.
func (p *Potential) Len() int { return len(p.values) }

// Clone returns an independent copy of p.
func (p *Potential) Clone() *Potential {
	return &Potential{
		vars:    slices.Clone(p.vars),
		strides: slices.Clone(p.strides),
		values:  slices.Clone(p.values),
	}
}

func (p *Potential) pos(name string) int {
	for i, v := range p.vars {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// offset maps a full assignment (label index per variable, in axis order) to
// a position in values.
func (p *Potential) offset(idx []int) int {
	off := 0
	for i, k := range idx {
		off += k * p.strides[i]
	}
	return off
}

// Get returns the value at the given assignment of label indices, keyed by
// variable name. Every variable of p must be assigned.
func (p *Potential) Get(assign map[string]int) (float64, error) {
	off, err := p.lookup(assign)
	if err != nil {
		return 0, err
	}
	return p.values[off], nil
}

// Set stores v at the given assignment.
func (p *Potential) Set(assign map[string]int, v float64) error {
	off, err := p.lookup(assign)
	if err != nil {
		return err
	}
	p.values[off] = v
	return nil
}

func (p *Potential) lookup(assign map[string]int) (int, error) {
	off := 0
	for i, v := range p.vars {
		k, ok := assign[v.Name]
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidArgument, "no value for %q", v.Name)
		}
		if k < 0 || k >= v.Size() {
			return 0, errors.New(errors.ErrCodeInvalidArgument, "index %d out of range for %q", k, v.Name)
		}
		off += k * p.strides[i]
	}
	return off, nil
}

// Sum returns the sum of all cells.
func (p *Potential) Sum() float64 {
	var s float64
	for _, v := range p.values {
		s += v
	}
	return s
}

// Normalize returns a copy of p scaled to sum to 1. A table summing to zero
// is returned unchanged.
func (p *Potential) Normalize() *Potential {
	c := p.Clone()
	if s := c.Sum(); s != 0 {
		for i := range c.values {
			c.values[i] /= s
		}
	}
	return c
}

// forEach calls fn for every assignment of vars, first variable fastest.
func forEach(vars []Variable, fn func(idx []int)) {
	idx := make([]int, len(vars))
	for _, v := range vars {
		if v.Size() == 0 {
			return
		}
	}
	for {
		fn(idx)
		i := 0
		for ; i < len(idx); i++ {
			idx[i]++
			if idx[i] < vars[i].Size() {
				break
			}
			idx[i] = 0
		}
		if i == len(idx) {
			return
		}
	}
}

type binop func(a, b float64) float64

func combine(a, b *Potential, op binop) (*Potential, error) {
	vars := slices.Clone(a.vars)
	for _, v := range b.vars {
		j := a.pos(v.Name)
		if j < 0 {
			vars = append(vars, v)
			continue
		}
		if a.vars[j].Size() != v.Size() {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				"variable %q has %d labels on the left and %d on the right", v.Name, a.vars[j].Size(), v.Size())
		}
	}
	res := New(vars...)

	// Per result axis, the stride inside each operand (0 when absent).
	sa := make([]int, len(vars))
	sb := make([]int, len(vars))
	for i, v := range vars {
		if j := a.pos(v.Name); j >= 0 {
			sa[i] = a.strides[j]
		}
		if j := b.pos(v.Name); j >= 0 {
			sb[i] = b.strides[j]
		}
	}

	n := 0
	forEach(vars, func(idx []int) {
		oa, ob := 0, 0
		for i, k := range idx {
			oa += k * sa[i]
			ob += k * sb[i]
		}
		res.values[n] = op(a.values[oa], b.values[ob])
		n++
	})
	return res, nil
}

// Multiply returns the pointwise product of a and b.
func Multiply(a, b *Potential) (*Potential, error) {
	return combine(a, b, func(x, y float64) float64 { return x * y })
}

// Divide returns the pointwise quotient of a and b; 0/0 is defined as 0.
func Divide(a, b *Potential) (*Potential, error) {
	return combine(a, b, func(x, y float64) float64 {
		if y == 0 {
			if x == 0 {
				return 0
			}
			return math.Inf(1)
		}
		return x / y
	})
}

// Add returns the pointwise sum of a and b.
func Add(a, b *Potential) (*Potential, error) {
	return combine(a, b, func(x, y float64) float64 { return x + y })
}

// Subtract returns the pointwise difference a - b.
func Subtract(a, b *Potential) (*Potential, error) {
	return combine(a, b, func(x, y float64) float64 { return x - y })
}

// MargSumOut sums the named variables away. Names not in p are ignored.
func (p *Potential) MargSumOut(names ...string) *Potential {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var keep []Variable
	for _, v := range p.vars {
		if !drop[v.Name] {
			keep = append(keep, v)
		}
	}
	return p.project(keep)
}

// MargSumIn keeps only the named variables, summing every other one away.
// The result's axes follow the order of names; unknown names are ignored.
func (p *Potential) MargSumIn(names ...string) *Potential {
	var keep []Variable
	for _, n := range names {
		if i := p.pos(n); i >= 0 {
			keep = append(keep, p.vars[i])
		}
	}
	return p.project(keep)
}

func (p *Potential) project(keep []Variable) *Potential {
	res := New(keep...)
	st := make([]int, len(p.vars))
	for i, v := range p.vars {
		if j := res.pos(v.Name); j >= 0 {
			st[i] = res.strides[j]
		}
	}
	n := 0
	forEach(p.vars, func(idx []int) {
		off := 0
		for i, k := range idx {
			off += k * st[i]
		}
		res.values[off] += p.values[n]
		n++
	})
	return res
}

// Extract fixes the assigned variables to the given label indices and drops
// their axes. Assignments to variables not in p are ignored.
func (p *Potential) Extract(assign map[string]int) (*Potential, error) {
	var keep []Variable
	base := 0
	for i, v := range p.vars {
		k, ok := assign[v.Name]
		if !ok {
			keep = append(keep, v)
			continue
		}
		if k < 0 || k >= v.Size() {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "index %d out of range for %q", k, v.Name)
		}
		base += k * p.strides[i]
	}
	res := New(keep...)
	st := make([]int, len(keep))
	for i, v := range keep {
		st[i] = p.strides[p.pos(v.Name)]
	}
	n := 0
	forEach(keep, func(idx []int) {
		off := base
		for i, k := range idx {
			off += k * st[i]
		}
		res.values[n] = p.values[off]
		n++
	})
	return res, nil
}

// ExtractLabels is [Potential.Extract] with labels instead of indices.
func (p *Potential) ExtractLabels(values map[string]string) (*Potential, error) {
	assign := make(map[string]int, len(values))
	for name, label := range values {
		v, ok := p.Var(name)
		if !ok {
			continue
		}
		k := v.Index(label)
		if k < 0 {
			return nil, errors.New(errors.ErrCodeNotFound, "variable %q has no label %q", name, label)
		}
		assign[name] = k
	}
	return p.Extract(assign)
}

// Reorder returns a copy of p whose leading axes are the given names, in that
// order, followed by the remaining axes in their current order. Names not in
// p are ignored.
func (p *Potential) Reorder(names ...string) *Potential {
	var order []Variable
	used := make(map[string]bool, len(names))
	for _, n := range names {
		if i := p.pos(n); i >= 0 && !used[n] {
			order = append(order, p.vars[i])
			used[n] = true
		}
	}
	for _, v := range p.vars {
		if !used[v.Name] {
			order = append(order, v)
		}
	}
	return p.project(order)
}

// ApproxEqual reports whether p and q have the same variables (in any order)
// and every aligned cell differs by at most eps.
func ApproxEqual(p, q *Potential, eps float64) bool {
	if len(p.vars) != len(q.vars) {
		return false
	}
	for _, v := range p.vars {
		w, ok := q.Var(v.Name)
		if !ok || !slices.Equal(v.Labels, w.Labels) {
			return false
		}
	}
	d, err := Subtract(p, q)
	if err != nil {
		return false
	}
	for _, x := range d.values {
		if math.Abs(x) > eps {
			return false
		}
	}
	return true
}

// String renders p as one line per cell: "a=x, b=y: 0.25".
func (p *Potential) String() string {
	var b strings.Builder
	n := 0
	forEach(p.vars, func(idx []int) {
		parts := make([]string, len(idx))
		for i, k := range idx {
			parts[i] = p.vars[i].Name + "=" + p.vars[i].Labels[k]
		}
		fmt.Fprintf(&b, "%s: %.6g\n", strings.Join(parts, ", "), p.values[n])
		n++
	})
	return b.String()
}

// Rows returns one row per cell: the labels in axis order and the value.
// Renderers use it to build tables.
func (p *Potential) Rows() ([][]string, []float64) {
	var rows [][]string
	n := 0
	forEach(p.vars, func(idx []int) {
		row := make([]string, len(idx))
		for i, k := range idx {
			row[i] = p.vars[i].Labels[k]
		}
		rows = append(rows, row)
		n++
	})
	return rows, slices.Clone(p.values)
}
