// Package session holds the personalization state of the signed-in user:
// who they are and which recipes they have liked.
package session

import (
	"github.com/alchemorsel/recipebook/internal/domain/recipe"
)

// LikedSet is an immutable, insertion-ordered set of recipe identifiers.
// Every mutation returns a new set; a LikedSet value handed to a caller is
// never changed behind its back.
type LikedSet struct {
	ids   []recipe.ID
	index map[recipe.ID]struct{}
}

// NewLikedSet builds a set from ids, dropping repeats after their first
// occurrence. The persisted form of the liked set is a plain list, so
// duplicates can show up there and are folded here.
func NewLikedSet(ids ...recipe.ID) LikedSet {
	s := LikedSet{
		ids:   make([]recipe.ID, 0, len(ids)),
		index: make(map[recipe.ID]struct{}, len(ids)),
	}
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// With returns a set that also contains id. If id is already present the
// receiver's contents are returned unchanged.
func (s LikedSet) With(id recipe.ID) LikedSet {
	if s.Contains(id) {
		return s
	}
	next := make([]recipe.ID, len(s.ids), len(s.ids)+1)
	copy(next, s.ids)
	return NewLikedSet(append(next, id)...)
}

// Without returns a set that no longer contains id
func (s LikedSet) Without(id recipe.ID) LikedSet {
	if !s.Contains(id) {
		return s
	}
	next := make([]recipe.ID, 0, len(s.ids))
	for _, existing := range s.ids {
		if existing != id {
			next = append(next, existing)
		}
	}
	return NewLikedSet(next...)
}

// Contains reports whether id is in the set
func (s LikedSet) Contains(id recipe.ID) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of distinct identifiers
func (s LikedSet) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the identifiers in insertion order
func (s LikedSet) IDs() []recipe.ID {
	out := make([]recipe.ID, len(s.ids))
	copy(out, s.ids)
	return out
}

// Equal reports whether both sets hold the same identifiers in the same order
func (s LikedSet) Equal(other LikedSet) bool {
	if len(s.ids) != len(other.ids) {
		return false
	}
	for i := range s.ids {
		if s.ids[i] != other.ids[i] {
			return false
		}
	}
	return true
}
