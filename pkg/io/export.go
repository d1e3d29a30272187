package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/causeway/pkg/causal"
	"github.com/matzehuels/causeway/pkg/dag"
	"github.com/matzehuels/causeway/pkg/errors"
)

// Write encodes f to w.
func Write(f *File, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(f); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode json")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode yaml")
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(f); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode toml")
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported model format %q", format)
	}
	return nil
}

// WriteModel encodes m to w under the given model name.
func WriteModel(m *causal.Model, name string, w io.Writer, format Format) error {
	return Write(FromModel(name, m), w, format)
}

// Export writes m to a file at path. The format comes from the extension.
func Export(m *causal.Model, name, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteModel(m, name, f, format)
}

type graph struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID     string       `json:"id"`
	Latent bool         `json:"latent,omitempty"`
	Meta   dag.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteGraphJSON writes the causal graph of m as JSON nodes and edges.
// Nodes and edges are sorted by ID.
func WriteGraphJSON(m *causal.Model, w io.Writer) error {
	g := m.DAG()
	out := graph{Nodes: []node{}, Edges: []edge{}}
	for _, id := range g.NodeIDs() {
		nd := node{ID: id, Latent: m.IsLatent(id)}
		if n, ok := g.Node(id); ok && len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edge{From: e.From, To: e.To})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode graph")
	}
	return nil
}
