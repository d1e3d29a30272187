package identify

import (
	"github.com/matzehuels/causeway/pkg/ast"
	"github.com/matzehuels/causeway/pkg/nodeset"
)

// BackdoorTree returns the adjustment formula for P(on | do(doing)) given a
// backdoor set z: Σ_z P(on | doing, z) · P(z).
func BackdoorTree(on, doing string, z nodeset.Set) ast.Tree {
	return ast.NewSum(z, &ast.Product{
		Left:  ast.NewPosterior(nodeset.Of(on), z.Union(nodeset.Of(doing))),
		Right: ast.NewJoint(z),
	})
}

// FrontdoorTree returns the frontdoor formula for P(on | do(doing)) given a
// frontdoor set z: Σ_z P(z | doing) · Σ_doing' P(on | z, doing') · P(doing').
func FrontdoorTree(on, doing string, z nodeset.Set) ast.Tree {
	x := nodeset.Of(doing)
	inner := ast.NewSum(x, &ast.Product{
		Left:  ast.NewPosterior(nodeset.Of(on), z.Union(x)),
		Right: ast.NewJoint(x),
	})
	return ast.NewSum(z, &ast.Product{
		Left:  ast.NewPosterior(z, x),
		Right: inner,
	})
}

// PosteriorTree returns P(on | knowing), or the joint P(on) when knowing is
// empty. It answers queries where the intervention has no effect.
func PosteriorTree(on, knowing nodeset.Set) ast.Tree {
	if knowing.Empty() {
		return ast.NewJoint(on)
	}
	return ast.NewPosterior(on, knowing)
}
