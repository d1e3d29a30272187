// Package doors searches a causal DAG for adjustment sets satisfying Pearl's
// backdoor and frontdoor criteria.
//
// Both [Backdoor] and [Frontdoor] return lazy sequences: candidates are drawn
// from a pool of eligible nodes in non-decreasing size, lexicographically by
// node name within a size, and a candidate is only tested when no set
// accepted earlier is contained in it. Callers that need a single set stop
// pulling after the first item; nothing past it is computed.
//
//	for s, err := range doors.Backdoor(g, "x", "y", latents) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(s)
//		break
//	}
//
// The predicates [IsBackdoor] and [IsFrontdoor] check a given set directly.
package doors
