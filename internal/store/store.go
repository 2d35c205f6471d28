// Package store holds the per-run fingerprint store: a keyed table of
// image records with insertion-order iteration. First-seen order is
// load-bearing for cluster IDs and tie-breaks, so the store never reorders.
package store

import (
	"fmt"

	"similarimages/internal/models"
)

// Store maps paths to image records, preserving first insertion order.
type Store struct {
	byPath  map[string]*models.ImageRecord
	ordered []*models.ImageRecord
}

// New creates an empty Store.
func New() *Store {
	return &Store{byPath: make(map[string]*models.ImageRecord)}
}

// Put inserts or overwrites the record for rec.Path. An overwrite keeps the
// original insertion position. Records with a malformed fingerprint are
// rejected with models.ErrInvalidFingerprint.
func (s *Store) Put(rec *models.ImageRecord) error {
	if !rec.Fingerprint.Valid() {
		return fmt.Errorf("put %s: %w", rec.Path, models.ErrInvalidFingerprint)
	}
	if old, ok := s.byPath[rec.Path]; ok {
		for i, r := range s.ordered {
			if r == old {
				s.ordered[i] = rec
				break
			}
		}
	} else {
		s.ordered = append(s.ordered, rec)
	}
	s.byPath[rec.Path] = rec
	return nil
}

// Get returns the record for path, or nil if there is none.
func (s *Store) Get(path string) *models.ImageRecord {
	return s.byPath[path]
}

// All returns the records in first-insertion order. The returned slice is
// shared; callers must not mutate it.
func (s *Store) All() []*models.ImageRecord {
	return s.ordered
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.ordered)
}
