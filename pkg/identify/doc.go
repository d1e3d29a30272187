// Package identify decides whether a causal effect can be computed from
// observational data and, when it can, builds the expression that computes
// it.
//
// [Identifier.Identify] is the recursive ID algorithm of Shpitser and Pearl
// over a [causal.Model]: it either returns an [ast.Tree] over observational
// distributions or fails with a HEDGE error carrying the witnessing node
// sets. [Identifier.DoCalculus] and [Identifier.DoCalculusWithObservation]
// wrap it into a [Formula] for the queries P(on | do(doing)) and
// P(on | do(doing), knowing).
//
// [BackdoorTree] and [FrontdoorTree] give the closed-form adjustment formulas
// for when a door set is already known.
//
// The multi-component step of the algorithm may run its branches
// concurrently ([Options.Parallel]); each branch gets its own copy of the
// partial expression and the model is never modified.
package identify
