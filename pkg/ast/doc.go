// Package ast holds the symbolic expressions produced by causal
// identification.
//
// A [Tree] is one of seven node types: [Sum] marginalizes one variable out of
// its child, [Product], [Quotient], [Difference] and [Plus] combine two
// subtrees pointwise, and the leaves [Posterior] and [Joint] name
// distributions of the observational network.
//
// Trees are values: a node owns its children and leaves hold plain name
// slices. [Tree.Clone] gives an independent deep copy, which the
// identification algorithm needs when the same partial expression feeds
// several branches.
//
// # Rendering
//
// [ToLatex] writes a tree in LaTeX. A variable bound by a [Sum] that already
// appears in an enclosing scope gets a prime per extra level, so
//
//	\sum_{x'}{P\left(y\mid x',z\right)\cdot P\left(x'\right)}
//
// keeps the summed x apart from the intervened x outside. [Print] writes the
// indented debugging form.
//
// # Evaluation
//
// [Eval] turns a tree into a [potential.Potential]. Leaves are answered by an
// [Inferencer]; a single-variable [Posterior] whose conditioning set is
// exactly the variable's parents is read straight from its CPT.
package ast
