package io

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/causeway/pkg/bn"
	"github.com/matzehuels/causeway/pkg/causal"
	"github.com/matzehuels/causeway/pkg/errors"
)

// Format is a model file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML}

// ParseFormat accepts "json", "yaml", "yml" and "toml" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported model format %q", s)
}

// FormatFromPath picks the format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeUnsupported, "cannot tell the format of %q without an extension", path)
	}
	return ParseFormat(ext)
}

// File is the document stored in a model file.
type File struct {
	Name      string          `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Variables []Variable      `json:"variables" yaml:"variables" toml:"variables"`
	Latents   []causal.Latent `json:"latents,omitempty" yaml:"latents,omitempty" toml:"latents,omitempty"`
	EraseArcs []Arc           `json:"erase_arcs,omitempty" yaml:"erase_arcs,omitempty" toml:"erase_arcs,omitempty"`
	AddArcs   []Arc           `json:"add_arcs,omitempty" yaml:"add_arcs,omitempty" toml:"add_arcs,omitempty"`
}

// Variable is one observed variable with its table.
type Variable struct {
	Name    string    `json:"name" yaml:"name" toml:"name"`
	Labels  []string  `json:"labels" yaml:"labels,flow" toml:"labels"`
	Parents []string  `json:"parents,omitempty" yaml:"parents,omitempty,flow" toml:"parents,omitempty"`
	CPT     []float64 `json:"cpt,omitempty" yaml:"cpt,omitempty,flow" toml:"cpt,omitempty"`
}

// Arc is a causal arc From → To.
type Arc struct {
	From string `json:"from" yaml:"from" toml:"from"`
	To   string `json:"to" yaml:"to" toml:"to"`
}

// Model builds the causal model described by f.
func (f *File) Model() (*causal.Model, error) {
	if len(f.Variables) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidModel, "model has no variables")
	}
	net := bn.New()
	for _, v := range f.Variables {
		if err := net.AddVariable(v.Name, v.Labels...); err != nil {
			return nil, err
		}
	}
	for _, v := range f.Variables {
		for _, p := range v.Parents {
			if err := net.AddArc(p, v.Name); err != nil {
				return nil, err
			}
		}
	}
	for _, v := range f.Variables {
		if v.CPT == nil {
			continue
		}
		if err := net.SetCPT(v.Name, v.CPT); err != nil {
			return nil, err
		}
	}
	if err := net.Validate(); err != nil {
		return nil, err
	}

	m, err := causal.New(net, f.Latents...)
	if err != nil {
		return nil, err
	}
	for _, a := range f.EraseArcs {
		if err := m.EraseCausalArc(a.From, a.To); err != nil {
			return nil, err
		}
	}
	for _, a := range f.AddArcs {
		if err := m.AddCausalArc(a.From, a.To); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FromModel describes m as a file. Latents are written with keep_arcs set
// and every difference between the causal graph and the network is spelled
// out in erase_arcs and add_arcs, so reading the file back gives the same
// causal graph.
func FromModel(name string, m *causal.Model) *File {
	net := m.Observational()
	f := &File{Name: name}
	for _, n := range net.InsertionOrder() {
		vars := net.CPTVars(n)
		v := Variable{Name: n, Labels: vars[0].Labels}
		for _, p := range vars[1:] {
			v.Parents = append(v.Parents, p.Name)
		}
		cpt, _ := net.CPT(n)
		v.CPT = cpt.Values()
		f.Variables = append(f.Variables, v)
	}

	latents := m.Latents()
	for _, l := range latents.Sorted() {
		f.Latents = append(f.Latents, causal.Latent{Name: l, Children: m.LatentChildren(l), KeepArcs: true})
	}
	g := m.DAG()
	for _, e := range net.Arcs() {
		if !g.HasEdge(e.From, e.To) {
			f.EraseArcs = append(f.EraseArcs, Arc{From: e.From, To: e.To})
		}
	}
	for _, e := range g.Edges() {
		if latents.Has(e.From) || net.DAG().HasEdge(e.From, e.To) {
			continue
		}
		f.AddArcs = append(f.AddArcs, Arc{From: e.From, To: e.To})
	}
	return f
}
