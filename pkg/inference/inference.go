// Package inference computes exact posteriors over a [bn.Network] by
// variable elimination.
//
// An [Engine] answers joint and single-variable posterior queries given
// optional hard evidence. Only the ancestors of the query and evidence
// variables take part (barren descendants sum to one), variables are
// eliminated greedily by smallest resulting table with lexicographic tie
// breaks, and answers are memoized per target set.
//
// Engines are safe for concurrent use.
package inference

import (
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/causeway/pkg/bn"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/nodeset"
	"github.com/matzehuels/causeway/pkg/potential"
)

// Engine runs exact inference over one network.
type Engine struct {
	net *bn.Network

	mu       sync.Mutex
	evidence map[string]int
	targets  [][]string
	memo     map[string]*potential.Potential
}

// New returns an engine over net. The network must not be modified while the
// engine is in use.
func New(net *bn.Network) *Engine {
	return &Engine{
		net:      net,
		evidence: make(map[string]int),
		memo:     make(map[string]*potential.Potential),
	}
}

// Network returns the network the engine reasons about.
func (e *Engine) Network() *bn.Network { return e.net }

// SetEvidence replaces the evidence with the given variable → label map.
func (e *Engine) SetEvidence(ev map[string]string) error {
	idx := make(map[string]int, len(ev))
	for name, label := range ev {
		v, err := e.net.Variable(name)
		if err != nil {
			return err
		}
		k := v.Index(label)
		if k < 0 {
			return errors.New(errors.ErrCodeNotFound, "variable %q has no label %q", name, label)
		}
		idx[name] = k
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evidence = idx
	e.memo = make(map[string]*potential.Potential)
	return nil
}

// AddJointTarget declares a joint target ahead of time. [Engine.MakeInference]
// computes every declared target in one pass over the memo.
func (e *Engine) AddJointTarget(names ...string) error {
	for _, n := range names {
		if !e.net.Has(n) {
			return errors.New(errors.ErrCodeNotFound, "unknown variable %q", n)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.targets = append(e.targets, slices.Clone(names))
	return nil
}

// MakeInference computes every declared joint target.
func (e *Engine) MakeInference() error {
	e.mu.Lock()
	targets := slices.Clone(e.targets)
	e.mu.Unlock()
	for _, t := range targets {
		if _, err := e.JointPosterior(t); err != nil {
			return err
		}
	}
	return nil
}

// Posterior returns P(name | evidence).
func (e *Engine) Posterior(name string) (*potential.Potential, error) {
	return e.JointPosterior([]string{name})
}

// JointPosterior returns P(names | evidence) with axes in the order of names.
// An empty name list yields the scalar 1. Evidence variables may appear among
// the names; their axis then carries all mass on the observed label.
func (e *Engine) JointPosterior(names []string) (*potential.Potential, error) {
	targets := nodeset.Of(names...)
	for n := range targets {
		if !e.net.Has(n) {
			return nil, errors.New(errors.ErrCodeNotFound, "unknown variable %q", n)
		}
	}
	key := strings.Join(targets.Sorted(), "\x00")

	e.mu.Lock()
	if p, ok := e.memo[key]; ok {
		e.mu.Unlock()
		return p.Reorder(names...), nil
	}
	evidence := make(map[string]int, len(e.evidence))
	for k, v := range e.evidence {
		evidence[k] = v
	}
	e.mu.Unlock()

	p, err := e.eliminate(targets, evidence)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.memo[key] = p
	e.mu.Unlock()
	return p.Reorder(names...), nil
}

func (e *Engine) eliminate(targets nodeset.Set, evidence map[string]int) (*potential.Potential, error) {
	g := e.net.DAG()
	query := targets.Clone()
	for n := range evidence {
		query.Add(n)
	}
	relevant := g.Ancestors(query.Sorted()...).Union(query)

	var factors []*potential.Potential
	for _, name := range relevant.Sorted() {
		f, err := e.net.CPT(name)
		if err != nil {
			return nil, err
		}
		// Evidence on a non-target is absorbed by slicing; on a target it
		// is kept as an indicator so the axis survives.
		cut := make(map[string]int)
		for ev, k := range evidence {
			if targets.Has(ev) {
				continue
			}
			cut[ev] = k
		}
		if f, err = f.Extract(cut); err != nil {
			return nil, err
		}
		factors = append(factors, f)
	}
	for ev, k := range evidence {
		if !targets.Has(ev) {
			continue
		}
		v, _ := e.net.Variable(ev)
		ind := potential.New(v)
		_ = ind.Set(map[string]int{ev: k}, 1)
		factors = append(factors, ind)
	}

	hidden := relevant.Minus(targets)
	for n := range evidence {
		hidden.Remove(n)
	}
	for hidden.Len() > 0 {
		v := pickVariable(hidden, factors)
		hidden.Remove(v)

		var with, without []*potential.Potential
		for _, f := range factors {
			if _, ok := f.Var(v); ok {
				with = append(with, f)
			} else {
				without = append(without, f)
			}
		}
		if len(with) == 0 {
			continue
		}
		prod, err := multiplyAll(with)
		if err != nil {
			return nil, err
		}
		factors = append(without, prod.MargSumOut(v))
	}

	res, err := multiplyAll(factors)
	if err != nil {
		return nil, err
	}
	res = res.MargSumIn(targets.Sorted()...)
	if res.Sum() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "evidence has probability zero")
	}
	return res.Normalize(), nil
}

// pickVariable returns the hidden variable whose elimination creates the
// smallest table; ties go to the smallest name.
func pickVariable(hidden nodeset.Set, factors []*potential.Potential) string {
	best, bestSize := "", -1
	for _, v := range hidden.Sorted() {
		scope := make(map[string]int)
		for _, f := range factors {
			if _, ok := f.Var(v); !ok {
				continue
			}
			for _, w := range f.Vars() {
				scope[w.Name] = w.Size()
			}
		}
		size := 1
		for name, s := range scope {
			if name != v {
				size *= s
			}
		}
		if bestSize < 0 || size < bestSize {
			best, bestSize = v, size
		}
	}
	return best
}

func multiplyAll(fs []*potential.Potential) (*potential.Potential, error) {
	res := potential.New().Fill(1)
	for _, f := range fs {
		var err error
		if res, err = potential.Multiply(res, f); err != nil {
			return nil, err
		}
	}
	return res, nil
}
