// Package causal defines the causal model: an observational Bayesian network
// plus an overlay of latent confounders.
//
// # Overview
//
// A [Model] keeps two graphs side by side. The observational network
// ([bn.Network]) holds the user's variables, their arcs and their
// conditional tables; it is never modified once the model is built and is
// what every formula is finally evaluated against. The causal DAG starts as a
// copy of the observational structure and receives latent nodes, each with
// arcs into the variables it confounds.
//
//	net, _ := bn.Fast("Smoking->Tar->Cancer", 1)
//	m, _ := causal.New(net, causal.Latent{Name: "Genotype", Children: []string{"Smoking", "Cancer"}})
//
// # Latent Variables
//
// Latent nodes are structural only: they have no parents, no parameters and
// are never candidates for adjustment. By default [Model.AddLatentVariable]
// erases any direct arc between two of the latent's children, since the
// confounder replaces the direct correlation; pass keepArcs to preserve them.
//
// # Sub-models
//
// [Model.InducedSubModel] restricts the causal DAG to a subset of observed
// nodes and re-attaches every latent that still confounds at least one of
// them. It always builds a fresh model, so recursive algorithms can shrink
// models freely without touching the caller's.
//
// # Errors
//
// Unknown names fail with NOT_FOUND; arcs that would create a cycle, point
// into a latent or duplicate an existing arc fail with INVALID_ARC.
package causal
