package ir

import (
	"cmp"
	"encoding/json"
	"slices"
)

// Set is an unordered set. It encodes to JSON as a sorted array so that
// snapshots are byte-stable.
type Set[K cmp.Ordered] map[K]struct{}

// NewSet returns a set holding items.
func NewSet[K cmp.Ordered](items ...K) Set[K] {
	s := make(Set[K], len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Add inserts k. Adding an existing member is a no-op.
func (s Set[K]) Add(k K) {
	s[k] = struct{}{}
}

// Has reports membership.
func (s Set[K]) Has(k K) bool {
	_, ok := s[k]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set[K]) Sorted() []K {
	out := make([]K, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy. Cloning a nil set yields an empty set.
func (s Set[K]) Clone() Set[K] {
	out := make(Set[K], len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the members as a sorted array.
func (s Set[K]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of members.
func (s *Set[K]) UnmarshalJSON(data []byte) error {
	var items []K
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}
