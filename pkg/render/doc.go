// Package render turns Graphviz DOT source into images.
//
// The [nodelink] subpackage draws causal models as DOT; this package runs
// Graphviz in-process (through go-graphviz) to produce SVG or PNG, and
// shells out to rsvg-convert for PDF.
//
//	dot := nodelink.ToDOT(m, nodelink.Options{})
//	svg, err := render.FromDOT(ctx, dot, render.FormatSVG)
//
// [nodelink]: github.com/matzehuels/causeway/pkg/render/nodelink
package render
