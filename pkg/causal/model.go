package causal

import (
	"fmt"

	"github.com/matzehuels/causeway/pkg/bn"
	"github.com/matzehuels/causeway/pkg/dag"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/nodeset"
)

// MetaLatent is the node metadata key marking latent nodes in [Model.DAG].
const MetaLatent = "latent"

// Latent describes one latent confounder and the observed variables it
// affects.
type Latent struct {
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Children []string `json:"children" yaml:"children" toml:"children"`
	KeepArcs bool     `json:"keep_arcs,omitempty" yaml:"keep_arcs,omitempty" toml:"keep_arcs,omitempty"`
}

// Model is a causal model: an observational network plus latent confounders.
//
// A Model is not safe for concurrent mutation. The read-only views it hands
// out ([Model.DAG], [Model.Observational]) must not be modified.
type Model struct {
	obs     *bn.Network
	g       *dag.DAG
	latents nodeset.Set
	ids     map[string]int
	names   []string
}

// New builds a causal model from an observational network and a list of
// latent confounders. The network is copied; later changes to net do not
// affect the model.
func New(net *bn.Network, latents ...Latent) (*Model, error) {
	obs := net.Clone()
	m := &Model{
		obs:     obs,
		g:       obs.DAG().Clone(),
		latents: nodeset.New(len(latents)),
		ids:     make(map[string]int, obs.Size()+len(latents)),
	}
	for _, name := range obs.InsertionOrder() {
		m.register(name)
	}
	for _, l := range latents {
		if err := m.AddLatentVariable(l.Name, l.Children, l.KeepArcs); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Model) register(name string) {
	m.ids[name] = len(m.names)
	m.names = append(m.names, name)
}

// AddLatentVariable adds a latent node with arcs into each of children.
// Unless keepArcs is set, any direct arc between two of the children is
// erased from the causal DAG (in either direction).
func (m *Model) AddLatentVariable(name string, children []string, keepArcs bool) error {
	if err := errors.ValidateVariableName(name); err != nil {
		return err
	}
	if m.g.HasNode(name) {
		return errors.New(errors.ErrCodeInvalidArgument, "variable %q already exists", name)
	}
	for _, c := range children {
		if !m.g.HasNode(c) {
			return errors.New(errors.ErrCodeNotFound, "latent %q: unknown child %q", name, c)
		}
		if m.latents.Has(c) {
			return errors.New(errors.ErrCodeInvalidArc, "latent %q: child %q is latent", name, c)
		}
	}

	_ = m.g.AddNode(dag.Node{ID: name, Meta: dag.Metadata{MetaLatent: true}})
	m.latents.Add(name)
	m.register(name)
	for _, c := range nodeset.Of(children...).Sorted() {
		_ = m.g.AddEdge(dag.Edge{From: name, To: c})
	}

	if !keepArcs {
		for i, a := range children {
			for _, b := range children[i+1:] {
				m.g.RemoveEdge(a, b)
				m.g.RemoveEdge(b, a)
			}
		}
	}
	return nil
}

// AddCausalArc adds the arc from → to to the causal DAG.
func (m *Model) AddCausalArc(from, to string) error {
	if err := m.check(from, to); err != nil {
		return err
	}
	if m.latents.Has(to) {
		return errors.New(errors.ErrCodeInvalidArc, "arc %s -> %s points into a latent variable", from, to)
	}
	if err := m.g.AddEdge(dag.Edge{From: from, To: to}); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidArc, err, "arc %s -> %s", from, to)
	}
	return nil
}

// EraseCausalArc removes the arc from → to from the causal DAG if present.
func (m *Model) EraseCausalArc(from, to string) error {
	if err := m.check(from, to); err != nil {
		return err
	}
	m.g.RemoveEdge(from, to)
	return nil
}

// ExistsArc reports whether the causal DAG has the arc from → to.
func (m *Model) ExistsArc(from, to string) bool { return m.g.HasEdge(from, to) }

// Observational returns the observational network.
func (m *Model) Observational() *bn.Network { return m.obs }

// DAG returns the causal DAG, latent nodes included.
func (m *Model) DAG() *dag.DAG { return m.g }

// Names returns every node name, latent ones included, sorted.
func (m *Model) Names() []string { return m.g.NodeIDs() }

// Observed returns the non-latent nodes of the causal DAG.
func (m *Model) Observed() nodeset.Set { return m.g.NodeSet().Minus(m.latents) }

// Latents returns the latent nodes.
func (m *Model) Latents() nodeset.Set { return m.latents.Clone() }

// IsLatent reports whether name is a latent node.
func (m *Model) IsLatent(name string) bool { return m.latents.Has(name) }

// Has reports whether name is a node of the causal DAG.
func (m *Model) Has(name string) bool { return m.g.HasNode(name) }

// LatentChildren returns the observed variables confounded by latent.
func (m *Model) LatentChildren(latent string) []string {
	if !m.latents.Has(latent) {
		return nil
	}
	return m.g.Children(latent)
}

// Parents returns the sorted parents of name in the causal DAG.
func (m *Model) Parents(name string) []string { return m.g.Parents(name) }

// Children returns the sorted children of name in the causal DAG.
func (m *Model) Children(name string) []string { return m.g.Children(name) }

// Ancestors returns the strict ancestors of names in the causal DAG.
func (m *Model) Ancestors(names ...string) nodeset.Set { return m.g.Ancestors(names...) }

// Descendants returns the strict descendants of names in the causal DAG.
func (m *Model) Descendants(names ...string) nodeset.Set { return m.g.Descendants(names...) }

// TopologicalOrder returns the observed nodes in a parents-first order of the
// causal DAG, ties broken lexicographically.
func (m *Model) TopologicalOrder() []string {
	var order []string
	for _, n := range m.g.TopologicalOrder() {
		if !m.latents.Has(n) {
			order = append(order, n)
		}
	}
	return order
}

// ID returns the stable integer id of name.
func (m *Model) ID(name string) (int, error) {
	id, ok := m.ids[name]
	if !ok {
		return 0, errors.New(errors.ErrCodeNotFound, "unknown variable %q", name)
	}
	return id, nil
}

// Name returns the name with the given id.
func (m *Model) Name(id int) (string, error) {
	if id < 0 || id >= len(m.names) {
		return "", errors.New(errors.ErrCodeNotFound, "unknown variable id %d", id)
	}
	return m.names[id], nil
}

// Check returns NOT_FOUND for the first name that is not a node of the model.
func (m *Model) Check(names ...string) error { return m.check(names...) }

func (m *Model) check(names ...string) error {
	for _, n := range names {
		if !m.g.HasNode(n) {
			return errors.New(errors.ErrCodeNotFound, "unknown variable %q", n)
		}
	}
	return nil
}

// InducedSubModel returns a new model whose causal DAG is restricted to the
// observed members of nodes, keeping the arcs among them, plus every latent
// that confounds at least one of them. The observational network is shared.
func (m *Model) InducedSubModel(nodes nodeset.Set) (*Model, error) {
	if err := m.check(nodes.Sorted()...); err != nil {
		return nil, err
	}
	keep := nodes.Minus(m.latents)
	sub := m.Clone()
	sub.g = m.g.Induced(keep)
	sub.latents = nodeset.New(0)
	for _, l := range m.latents.Sorted() {
		var children []string
		for _, c := range m.g.Children(l) {
			if keep.Has(c) {
				children = append(children, c)
			}
		}
		if len(children) == 0 {
			continue
		}
		_ = sub.g.AddNode(dag.Node{ID: l, Meta: dag.Metadata{MetaLatent: true}})
		sub.latents.Add(l)
		for _, c := range children {
			_ = sub.g.AddEdge(dag.Edge{From: l, To: c})
		}
	}
	return sub, nil
}

// Mutilated returns a copy of the causal DAG without the arcs entering any
// node of into and without the arcs leaving any node of outOf.
func (m *Model) Mutilated(into, outOf nodeset.Set) *dag.DAG {
	g := m.g.Clone()
	for n := range into {
		for _, p := range m.g.Parents(n) {
			g.RemoveEdge(p, n)
		}
	}
	for n := range outOf {
		for _, c := range m.g.Children(n) {
			g.RemoveEdge(n, c)
		}
	}
	return g
}

// CComponents returns the confounded components of the observed nodes: two
// nodes are joined whenever they share a latent parent. Components are
// ordered by their smallest member.
func (m *Model) CComponents() []nodeset.Set {
	u := dag.NewUGraph(m.Observed().Sorted()...)
	for _, l := range m.latents.Sorted() {
		ch := m.g.Children(l)
		for i, a := range ch {
			for _, b := range ch[i+1:] {
				u.AddEdge(a, b)
			}
		}
	}
	return u.Components()
}

// Clone returns an independent copy sharing only the observational network,
// which is immutable.
func (m *Model) Clone() *Model {
	c := &Model{
		obs:     m.obs,
		g:       m.g.Clone(),
		latents: m.latents.Clone(),
		ids:     make(map[string]int, len(m.ids)),
		names:   append([]string(nil), m.names...),
	}
	for k, v := range m.ids {
		c.ids[k] = v
	}
	return c
}

// WithObservational returns a copy of m whose observational network is net.
// net must define exactly the observed variables of m's full model.
func (m *Model) WithObservational(net *bn.Network) (*Model, error) {
	for _, name := range m.obs.Names() {
		if !net.Has(name) {
			return nil, errors.New(errors.ErrCodeNotFound, "network lacks variable %q", name)
		}
	}
	if net.Size() != m.obs.Size() {
		return nil, errors.New(errors.ErrCodeInvalidArgument,
			"network has %d variables, model expects %d", net.Size(), m.obs.Size())
	}
	c := m.Clone()
	c.obs = net.Clone()
	return c, nil
}

// String describes the model, e.g. "CausalModel{observed: 3, latent: 1, arcs: 4}".
func (m *Model) String() string {
	return fmt.Sprintf("CausalModel{observed: %d, latent: %d, arcs: %d}",
		m.g.NodeCount()-m.latents.Len(), m.latents.Len(), m.g.EdgeCount())
}
