package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/causeway/pkg/causal"
	"github.com/matzehuels/causeway/pkg/nodeset"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds each variable's labels under its name.
	Detailed bool
	// HideLatents draws the observed variables only.
	HideLatents bool

	On      []string
	Doing   []string
	Knowing []string
	// Adjust is an adjustment set, such as a backdoor or frontdoor set.
	Adjust []string
}

const (
	fillOn      = "#fde68a"
	fillDoing   = "#bfdbfe"
	fillKnowing = "#e5e7eb"
	fillAdjust  = "#bbf7d0"
)

// ToDOT converts the causal graph of m to Graphviz DOT.
func ToDOT(m *causal.Model, opts Options) string {
	g := m.DAG()
	fills := highlights(opts)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=20, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range g.NodeIDs() {
		if m.IsLatent(id) {
			if !opts.HideLatents {
				fmt.Fprintf(&buf, "  %q [shape=point, width=0.15, color=grey50, xlabel=%q];\n", id, id)
			}
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", label(m, id, opts.Detailed))}
		if fill, ok := fills[id]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
		}
		if nodeset.Of(opts.Doing...).Has(id) {
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if m.IsLatent(e.From) {
			if !opts.HideLatents {
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=grey50];\n", e.From, e.To)
			}
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// highlights maps node IDs to fill colours. Later roles win: an adjustment
// variable that is also observed is drawn as observed.
func highlights(opts Options) map[string]string {
	fills := make(map[string]string)
	for _, role := range []struct {
		names []string
		fill  string
	}{
		{opts.Adjust, fillAdjust},
		{opts.Knowing, fillKnowing},
		{opts.Doing, fillDoing},
		{opts.On, fillOn},
	} {
		for _, n := range role.names {
			fills[n] = role.fill
		}
	}
	return fills
}

func label(m *causal.Model, id string, detailed bool) string {
	if !detailed {
		return id
	}
	v, err := m.Observational().Variable(id)
	if err != nil {
		return id
	}
	return id + "\n{" + strings.Join(v.Labels, ", ") + "}"
}
