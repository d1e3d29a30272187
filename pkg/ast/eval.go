package ast

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/causeway/pkg/bn"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/inference"
	"github.com/matzehuels/causeway/pkg/nodeset"
	"github.com/matzehuels/causeway/pkg/potential"
)

// Inferencer answers joint queries over a network. *inference.Engine
// implements it.
type Inferencer interface {
	JointPosterior(names []string) (*potential.Potential, error)
}

// Validate reports NOT_FOUND for the first variable of t missing from net.
func Validate(t Tree, net *bn.Network) error {
	for _, n := range Names(t).Sorted() {
		if !net.Has(n) {
			return errors.New(errors.ErrCodeNotFound, "expression mentions unknown variable %q", n)
		}
	}
	return nil
}

// Evaluate is [Eval] with a fresh exact-inference engine over net.
func Evaluate(ctx context.Context, t Tree, net *bn.Network) (*potential.Potential, error) {
	return Eval(ctx, t, net, inference.New(net))
}

// Eval computes the distribution t denotes. net provides CPTs for the
// posteriors that can be read directly; every other leaf is a query to inf.
func Eval(ctx context.Context, t Tree, net *bn.Network, inf Inferencer) (*potential.Potential, error) {
	if err := Validate(t, net); err != nil {
		return nil, err
	}
	e := evaluator{net: net, inf: inf, logger: log.FromContext(ctx)}
	return e.eval(ctx, t)
}

type evaluator struct {
	net    *bn.Network
	inf    Inferencer
	logger *log.Logger
}

func (e evaluator) eval(ctx context.Context, t Tree) (*potential.Potential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch n := t.(type) {
	case *Sum:
		p, err := e.eval(ctx, n.Term)
		if err != nil {
			return nil, err
		}
		return p.MargSumOut(n.Var), nil
	case *Posterior:
		return e.posterior(n)
	case *Joint:
		e.logger.Debug("joint query", "vars", n.Vars)
		return e.inf.JointPosterior(n.Vars)
	}

	l, r, _ := operands(t)
	a, err := e.eval(ctx, l)
	if err != nil {
		return nil, err
	}
	b, err := e.eval(ctx, r)
	if err != nil {
		return nil, err
	}
	switch t.Kind() {
	case KindProduct:
		return potential.Multiply(a, b)
	case KindQuotient:
		return potential.Divide(a, b)
	case KindDifference:
		return potential.Subtract(a, b)
	default:
		return potential.Add(a, b)
	}
}

func (e evaluator) posterior(n *Posterior) (*potential.Potential, error) {
	if len(n.Vars) == 1 && nodeset.Of(e.net.Parents(n.Vars[0])...).Equal(nodeset.Of(n.Given...)) {
		e.logger.Debug("cpt lookup", "var", n.Vars[0])
		return e.net.CPT(n.Vars[0])
	}
	e.logger.Debug("posterior query", "vars", n.Vars, "given", n.Given)
	joint, err := e.inf.JointPosterior(nodeset.Of(n.Vars...).Union(nodeset.Of(n.Given...)).Sorted())
	if err != nil {
		return nil, err
	}
	if len(n.Given) == 0 {
		return joint, nil
	}
	den, err := e.inf.JointPosterior(n.Given)
	if err != nil {
		return nil, err
	}
	return potential.Divide(joint, den)
}
