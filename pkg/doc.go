// Package pkg provides the libraries behind Causeway, a causal-inference
// engine for Bayesian networks with latent variables.
//
// # Overview
//
// A causal model is a Bayesian network over the observed variables plus a
// set of latent variables whose children it confounds. Causeway answers
// queries of the form P(on | do(doing), knowing) on such a model: it decides
// whether the query is identifiable from the observed distribution, derives
// the formula when it is, and evaluates that formula on the network.
//
// The packages are organized in layers:
//
//  1. Graphs: [nodeset], [dag] and [dsep] (variable sets, DAGs and
//     d-separation)
//  2. Probability: [potential], [bn] and [inference] (tables, networks and
//     marginals)
//  3. Causality: [causal], [doors], [ast], [identify] and [impact] (models,
//     adjustment sets, formulas, identification and query answering)
//  4. Infrastructure: [io], [render], [cache], [config], [observability]
//     and [errors]
//  5. Orchestration: [pipeline] and [api] (cached query execution and the
//     HTTP front end)
//
// # Data Flow
//
//	model file (JSON, YAML, TOML)
//	         ↓
//	    [io] package (decode into a causal model)
//	         ↓
//	    [impact] package (d-separation, doors, do-calculus)
//	         ↓
//	    [identify] package (formula) → [inference] package (distribution)
//	         ↓
//	    table, LaTeX, or diagram via [render]
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/causeway/pkg/bn"
//	    "github.com/matzehuels/causeway/pkg/causal"
//	    "github.com/matzehuels/causeway/pkg/impact"
//	)
//
//	net, _ := bn.Fast("x->m->y", 1)
//	m, _ := causal.New(net, causal.Latent{Name: "u", Children: []string{"x", "y"}})
//	res, _ := impact.CausalImpact(context.Background(), m, impact.Query{
//	    On:    []string{"y"},
//	    Doing: []string{"x"},
//	})
//	fmt.Println(res.Explanation) // frontdoor found: {m}
//
// The command-line interface lives in internal/cli and is built as
// cmd/causeway.
package pkg
