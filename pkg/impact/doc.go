// Package impact answers causal queries end to end: it validates a query,
// picks the cheapest identification route, evaluates the resulting formula
// and shapes the distribution for the caller.
//
// Routes are tried in order: no causal effect at all (the intervention is
// separated from the target), a backdoor or frontdoor adjustment set for
// single-variable queries without observations, and finally the general
// identification algorithm. The route taken is reported in
// [Result.Explanation].
//
// A non-identifiable query is not an error here: the result carries no
// formula and the explanation names the hedge.
//
// [Analyzer.Counterfactual] builds the twin network for a unit profile and
// runs an impact query on it.
package impact
