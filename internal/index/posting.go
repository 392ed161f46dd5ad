package index

import "sort"

// PostingSet is the set of document ids containing a token.
type PostingSet map[int]struct{}

// NewPostingSet returns a set holding ids.
func NewPostingSet(ids ...int) PostingSet {
	s := make(PostingSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id. Adding an id twice is a no-op.
func (s PostingSet) Add(id int) {
	s[id] = struct{}{}
}

// Contains reports whether id is in the set.
func (s PostingSet) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids.
func (s PostingSet) Len() int {
	return len(s)
}

// Clone returns an independent copy of s.
func (s PostingSet) Clone() PostingSet {
	c := make(PostingSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Intersect returns a new set of the ids present in both s and other.
func (s PostingSet) Intersect(other PostingSet) PostingSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(PostingSet, len(small))
	for id := range small {
		if _, ok := large[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the ids in ascending order.
func (s PostingSet) Sorted() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
