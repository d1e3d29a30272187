// Package nodelink draws causal models as Graphviz node-link diagrams.
//
// Observed variables are rounded boxes, latent confounders small grey points
// with dashed arcs. A query can be highlighted: targets, interventions,
// observations and an adjustment set each get their own fill.
//
//	dot := nodelink.ToDOT(m, nodelink.Options{Doing: []string{"x"}, On: []string{"y"}})
//	svg, err := render.FromDOT(ctx, dot, render.FormatSVG)
//
// The generated DOT uses a top-to-bottom layout so causes sit above their
// effects.
package nodelink
