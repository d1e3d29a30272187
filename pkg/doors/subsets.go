package doors

import (
	"iter"

	"github.com/matzehuels/causeway/pkg/nodeset"
)

// subsets walks the subsets of pool by size, then lexicographically by index.
// The walk is resumable: mask holds the indices of the current candidate.
type subsets struct {
	pool     []string
	size     int
	mask     []int
	accepted []nodeset.Set
}

func newSubsets(pool nodeset.Set) *subsets {
	return &subsets{pool: pool.Sorted()}
}

// next advances to the next candidate and reports false once every size has
// been exhausted.
func (s *subsets) next() bool {
	n := len(s.pool)
	if s.mask == nil {
		if s.size >= n {
			return false
		}
		s.size++
		s.mask = make([]int, s.size)
		for i := range s.mask {
			s.mask[i] = i
		}
		return true
	}
	k := s.size
	i := k - 1
	for i >= 0 && s.mask[i] == n-k+i {
		i--
	}
	if i < 0 {
		s.mask = nil
		return s.next()
	}
	s.mask[i]++
	for j := i + 1; j < k; j++ {
		s.mask[j] = s.mask[j-1] + 1
	}
	return true
}

func (s *subsets) current() nodeset.Set {
	c := nodeset.New(len(s.mask))
	for _, i := range s.mask {
		c.Add(s.pool[i])
	}
	return c
}

func (s *subsets) covered(c nodeset.Set) bool {
	for _, a := range s.accepted {
		if a.SubsetOf(c) {
			return true
		}
	}
	return false
}

// minimal yields every subset of pool accepted by test and containing no
// previously accepted subset.
func minimal(pool nodeset.Set, test func(nodeset.Set) (bool, error)) iter.Seq2[nodeset.Set, error] {
	return func(yield func(nodeset.Set, error) bool) {
		s := newSubsets(pool)
		for s.next() {
			c := s.current()
			if s.covered(c) {
				continue
			}
			ok, err := test(c)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				continue
			}
			s.accepted = append(s.accepted, c)
			if !yield(c.Clone(), nil) {
				return
			}
		}
	}
}
