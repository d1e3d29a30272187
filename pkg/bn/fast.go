package bn

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/matzehuels/causeway/pkg/errors"
)

// Fast builds a network from a compact arc description such as
//
//	"Z->X->Y;Z->Y"      chains and several statements
//	"a<-b->c"           arcs in either direction
//	"x[3]->y"           x gets the labels 0, 1, 2 (default is two labels)
//
// Every CPT is filled with pseudo-random distributions drawn from a PCG
// generator seeded with seed, so the same description and seed always give
// the same network.
func Fast(desc string, seed uint64) (*Network, error) {
	n := New()
	add := func(tok string) (string, error) {
		name, size, err := parseFastNode(tok)
		if err != nil {
			return "", err
		}
		if n.Has(name) {
			return name, nil
		}
		labels := make([]string, size)
		for i := range labels {
			labels[i] = strconv.Itoa(i)
		}
		return name, n.AddVariable(name, labels...)
	}

	for _, stmt := range strings.Split(desc, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		toks, ops := splitFast(stmt)
		prev, err := add(toks[0])
		if err != nil {
			return nil, err
		}
		for i, op := range ops {
			cur, err := add(toks[i+1])
			if err != nil {
				return nil, err
			}
			from, to := prev, cur
			if op == "<-" {
				from, to = cur, prev
			}
			if !n.g.HasEdge(from, to) {
				if err := n.AddArc(from, to); err != nil {
					return nil, err
				}
			}
			prev = cur
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for _, name := range n.Names() {
		size := n.vars[name].Size()
		vals := n.cpts[name].Values()
		for col := 0; col < len(vals); col += size {
			var s float64
			for i := col; i < col+size; i++ {
				vals[i] = 0.05 + rng.Float64()
				s += vals[i]
			}
			for i := col; i < col+size; i++ {
				vals[i] /= s
			}
		}
		if err := n.SetCPT(name, vals); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// splitFast cuts "a->b<-c" into tokens [a b c] and operators [-> <-].
func splitFast(stmt string) ([]string, []string) {
	var toks, ops []string
	for {
		i := strings.Index(stmt, "->")
		j := strings.Index(stmt, "<-")
		if i < 0 && j < 0 {
			toks = append(toks, strings.TrimSpace(stmt))
			return toks, ops
		}
		k, op := i, "->"
		if i < 0 || (j >= 0 && j < i) {
			k, op = j, "<-"
		}
		toks = append(toks, strings.TrimSpace(stmt[:k]))
		ops = append(ops, op)
		stmt = stmt[k+2:]
	}
}

func parseFastNode(tok string) (string, int, error) {
	open := strings.IndexByte(tok, '[')
	if open < 0 {
		return tok, 2, errors.ValidateVariableName(tok)
	}
	if !strings.HasSuffix(tok, "]") {
		return "", 0, errors.New(errors.ErrCodeInvalidInput, "malformed node %q", tok)
	}
	size, err := strconv.Atoi(tok[open+1 : len(tok)-1])
	if err != nil || size < 1 {
		return "", 0, errors.New(errors.ErrCodeInvalidInput, "malformed domain size in %q", tok)
	}
	name := strings.TrimSpace(tok[:open])
	return name, size, errors.ValidateVariableName(name)
}
