// Package pipeline runs causal queries against model files with caching.
//
// The CLI and the HTTP API share one [Runner]. It loads model documents,
// answers impact, identification, counterfactual, door and separation
// queries, renders diagrams, and stores the serialized answers in a
// [cache.Cache] keyed by the content hash of the model.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	m, err := runner.LoadModel(ctx, pipeline.Source{Path: "smoking.yaml"})
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Impact(ctx, m, impact.Query{On: []string{"cancer"}, Doing: []string{"smoking"}}, pipeline.Options{})
//
// Each operation has a WithCacheInfo variant that also reports whether the
// answer came from the cache.
package pipeline

import (
	"slices"
	"strings"

	"github.com/matzehuels/causeway/pkg/causal"
	"github.com/matzehuels/causeway/pkg/impact"
	"github.com/matzehuels/causeway/pkg/potential"
	"github.com/matzehuels/causeway/pkg/render"
	"github.com/matzehuels/causeway/pkg/render/nodelink"
)

// Query kinds, used in cache keys and metrics.
const (
	KindImpact         = "impact"
	KindIdentify       = "identify"
	KindCounterfactual = "counterfactual"
	KindDoors          = "doors"
	KindDSep           = "dsep"
	KindRender         = "render"
)

// Cache key types reported to the cache hooks.
const (
	keyModel  = "model"
	keyQuery  = "query"
	keyRender = "render"
)

// Options controls caching for a single call.
type Options struct {
	// Refresh recomputes the answer and overwrites the cached one.
	Refresh bool `json:"refresh,omitempty"`
}

// Model is a loaded causal model with the hash of its canonical document.
type Model struct {
	*causal.Model
	Name string
	Hash string
}

// Table is a serializable distribution. Rows list the labels of each cell
// in variable order, the first variable varying fastest.
type Table struct {
	Variables []potential.Variable `json:"variables"`
	Rows      [][]string           `json:"rows"`
	Values    []float64            `json:"values"`
}

// NewTable converts p. A nil potential gives nil.
func NewTable(p *potential.Potential) *Table {
	if p == nil {
		return nil
	}
	rows, values := p.Rows()
	return &Table{Variables: p.Vars(), Rows: rows, Values: values}
}

// Potential converts t back into a distribution.
func (t *Table) Potential() (*potential.Potential, error) {
	return potential.FromValues(t.Variables, t.Values)
}

// ImpactResult is the serialized answer to an impact or counterfactual query.
type ImpactResult struct {
	// Query is the LaTeX left-hand side, such as "P( y \mid \hookrightarrow\mkern-6.5mu x)".
	Query        string `json:"query"`
	Latex        string `json:"latex,omitempty"`
	Outline      string `json:"outline,omitempty"`
	Explanation  string `json:"explanation"`
	Route        string `json:"route"`
	Identified   bool   `json:"identified"`
	Distribution *Table `json:"distribution,omitempty"`
}

// IdentifyResult is the do-calculus expression for a query.
type IdentifyResult struct {
	Query   string `json:"query"`
	Latex   string `json:"latex"`
	Outline string `json:"outline"`
}

// CounterfactualQuery asks for P(On) in the world where WhatIf is forced,
// given that Profile was observed in the factual world.
type CounterfactualQuery struct {
	Profile map[string]string `json:"profile" yaml:"profile"`
	On      []string          `json:"on" yaml:"on" validate:"required,min=1,dive,required"`
	WhatIf  []string          `json:"whatif" yaml:"whatif" validate:"dive,required"`
	Values  map[string]string `json:"values,omitempty" yaml:"values,omitempty"`
}

// DoorsQuery asks for the adjustment sets between Cause and Effect.
type DoorsQuery struct {
	Cause  string `json:"cause" validate:"required"`
	Effect string `json:"effect" validate:"required"`
	// All lists every minimal set instead of the first one.
	All bool `json:"all,omitempty"`
}

// DoorsResult lists minimal backdoor and frontdoor sets.
type DoorsResult struct {
	Cause     string     `json:"cause"`
	Effect    string     `json:"effect"`
	Backdoor  [][]string `json:"backdoor"`
	Frontdoor [][]string `json:"frontdoor"`
}

// Separation variants of a [DSepQuery].
const (
	ThroughAll      = ""
	ThroughParents  = "parents"
	ThroughChildren = "children"
)

// DSepQuery asks whether X and Y are d-separated by Z in the causal graph.
type DSepQuery struct {
	X []string `json:"x" validate:"required,min=1,dive,required"`
	Y []string `json:"y" validate:"required,min=1,dive,required"`
	Z []string `json:"z,omitempty" validate:"dive,required"`
	// Through restricts the paths leaving X to those starting at a parent
	// or at a child of X.
	Through string `json:"through,omitempty" validate:"omitempty,oneof=parents children"`
}

// DSepResult is the answer to a [DSepQuery].
type DSepResult struct {
	Separated bool `json:"separated"`
}

// RenderOptions selects the output format and the diagram options.
type RenderOptions struct {
	Format render.Format `json:"format"`
	nodelink.Options
}

func (o RenderOptions) highlight() []string {
	var out []string
	add := func(role string, names []string) {
		for _, n := range sortedCopy(names) {
			out = append(out, role+":"+n)
		}
	}
	add("on", o.On)
	add("doing", o.Doing)
	add("knowing", o.Knowing)
	add("adjust", o.Adjust)
	return out
}

// Route maps an explanation to the short route name used in metrics.
func Route(explanation string) string {
	switch {
	case explanation == impact.ExplainDSeparated:
		return "d-separated"
	case strings.HasPrefix(explanation, impact.ExplainBackdoor):
		return "backdoor"
	case strings.HasPrefix(explanation, impact.ExplainFrontdoor):
		return "frontdoor"
	case explanation == impact.ExplainDoCalculus:
		return "do-calculus"
	case strings.HasPrefix(explanation, "hedge"):
		return "hedge"
	default:
		return "none"
	}
}

func sortedCopy(s []string) []string {
	c := slices.Clone(s)
	slices.Sort(c)
	return c
}
