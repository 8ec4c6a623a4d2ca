package recipe

import (
	"errors"
	"fmt"
)

// DuplicateError describes one record dropped from an index because an
// earlier record already used its identifier.
type DuplicateError struct {
	ID       ID
	Position int
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%v: %s at position %d", ErrDuplicateIdentifier, e.ID, e.Position)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateIdentifier
}

// Index is an immutable identifier→record table. Once built it is never
// mutated, so it is safe for concurrent use without locking.
type Index struct {
	byID  map[ID]*Record
	order []*Record
}

// NewIndex builds an index over the catalog. When two records share an
// identifier the first one is kept and the later one is dropped; the
// returned error then joins one *DuplicateError per dropped record, but the
// index is complete and usable either way. Records that fail validation are
// skipped and reported the same way.
func NewIndex(records []*Record) (*Index, error) {
	idx := &Index{
		byID:  make(map[ID]*Record, len(records)),
		order: make([]*Record, 0, len(records)),
	}

	var errs []error
	for i, r := range records {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("record at position %d: %w", i, err))
			continue
		}
		if _, exists := idx.byID[r.RecipeID]; exists {
			errs = append(errs, &DuplicateError{ID: r.RecipeID, Position: i})
			continue
		}
		idx.byID[r.RecipeID] = r
		idx.order = append(idx.order, r)
	}

	return idx, errors.Join(errs...)
}

// Resolve turns an identifier list into records. Matched identifiers keep
// their input order, unmatched ones are dropped, and an identifier repeated
// in the input only yields its first occurrence. The result is never nil.
func (idx *Index) Resolve(ids []ID) ResultSet {
	out := make(ResultSet, 0, len(ids))
	if len(ids) == 0 || idx == nil {
		return out
	}

	seen := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if r, ok := idx.byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Missing returns the identifiers of ids that the index cannot resolve
func (idx *Index) Missing(ids []ID) []ID {
	var missing []ID
	for _, id := range ids {
		if !idx.Contains(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

// Get returns the record for id
func (idx *Index) Get(id ID) (*Record, error) {
	if idx == nil {
		return nil, ErrRecipeNotFound
	}
	r, ok := idx.byID[id]
	if !ok {
		return nil, ErrRecipeNotFound
	}
	return r, nil
}

// Contains reports whether id is in the index
func (idx *Index) Contains(id ID) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.byID[id]
	return ok
}

// Len returns the number of indexed records
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.order)
}

// All returns every record in catalog order. The slice is a copy; the
// records are shared.
func (idx *Index) All() ResultSet {
	if idx == nil {
		return ResultSet{}
	}
	out := make(ResultSet, len(idx.order))
	copy(out, idx.order)
	return out
}
