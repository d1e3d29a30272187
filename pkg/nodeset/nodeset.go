// Package nodeset provides a small set type over node names.
//
// Every algorithm in causeway manipulates sets of variable names, and most of
// them must iterate those sets in a reproducible order. [Set.Sorted] is the
// single place where that order is decided: names sort lexicographically.
package nodeset

import (
	"maps"
	"slices"
	"strings"
)

// Set is an unordered collection of node names. The zero value is an empty,
// read-only set; use [New] or [Of] before calling Add.
type Set map[string]struct{}

// New returns an empty set with room for n names.
func New(n int) Set { return make(Set, n) }

// Of returns a set holding the given names.
func Of(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts names into s.
func (s Set) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

// Remove deletes names from s.
func (s Set) Remove(names ...string) {
	for _, n := range names {
		delete(s, n)
	}
}

// Has reports whether name is in s.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in s.
func (s Set) Len() int { return len(s) }

// Empty reports whether s has no names.
func (s Set) Empty() bool { return len(s) == 0 }

// Clone returns an independent copy of s. Cloning a nil set returns an
// empty, writable set.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	maps.Copy(c, s)
	return c
}

// Sorted returns the names of s in lexicographic order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Union returns a new set holding the names of s and every other set.
func (s Set) Union(others ...Set) Set {
	u := s.Clone()
	for _, o := range others {
		maps.Copy(u, o)
	}
	return u
}

// Minus returns a new set holding the names of s absent from every other set.
func (s Set) Minus(others ...Set) Set {
	d := make(Set, len(s))
	for n := range s {
		keep := true
		for _, o := range others {
			if o.Has(n) {
				keep = false
				break
			}
		}
		if keep {
			d[n] = struct{}{}
		}
	}
	return d
}

// Intersect returns a new set holding the names present in both s and o.
func (s Set) Intersect(o Set) Set {
	i := make(Set)
	for n := range s {
		if o.Has(n) {
			i[n] = struct{}{}
		}
	}
	return i
}

// Intersects reports whether s and o share at least one name.
func (s Set) Intersects(o Set) bool {
	if len(o) < len(s) {
		s, o = o, s
	}
	for n := range s {
		if o.Has(n) {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every name of s is in o.
func (s Set) SubsetOf(o Set) bool {
	if len(s) > len(o) {
		return false
	}
	for n := range s {
		if !o.Has(n) {
			return false
		}
	}
	return true
}

// Equal reports whether s and o hold the same names.
func (s Set) Equal(o Set) bool {
	return len(s) == len(o) && s.SubsetOf(o)
}

// String renders s as "{a, b, c}" with names sorted.
func (s Set) String() string {
	return "{" + strings.Join(s.Sorted(), ", ") + "}"
}
