// Package rowstore holds the loaded dataset as an ordered, read-only sequence.
//
// The store is the single source of truth for row count and index lookup. It
// is populated exactly once per successful load via Replace and never mutated
// row-by-row afterwards; the rendering pipeline only ever reads it.
package rowstore

import (
	"github.com/rowview/rowview/pkg/api"
)

// Store is the in-memory, post-load, ordered collection of all rows.
// Index order equals the source's natural ordering (ascending id).
type Store struct {
	rows []api.Row
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Replace installs the full dataset in a single bulk assignment.
// The slice is taken over by the store; callers must not mutate it afterwards.
func (s *Store) Replace(rows []api.Row) {
	s.rows = rows
}

// Reset clears the store, typically before a new load begins.
func (s *Store) Reset() {
	s.rows = nil
}

// Count returns the number of loaded rows.
func (s *Store) Count() int {
	return len(s.rows)
}

// At returns the row at index i. The second return value is false when the
// index is out of range; callers treat that as "not yet available" rather
// than an error, which keeps transient range/store mismatches harmless.
func (s *Store) At(i int) (api.Row, bool) {
	if i < 0 || i >= len(s.rows) {
		return api.Row{}, false
	}
	return s.rows[i], true
}
