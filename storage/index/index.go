// Package index defines the MultiIndex interface for folded-key to
// slot-position mappings and provides a hash-based implementation.
package index

import "iter"

// MultiIndex maps a folded key to zero or more slot positions. Positions for
// one key are kept in ascending order, which is also insertion order because
// the entry store only ever appends.
type MultiIndex interface {
	// Put records pos under key. pos must be greater than every position
	// already recorded for key.
	Put(key string, pos int)
	// First returns the smallest position recorded for key.
	First(key string) (int, bool)
	// All yields every position recorded for key in ascending order. The
	// sequence is re-derived from the index each time it is ranged over.
	All(key string) iter.Seq[int]
	// Count returns the number of positions recorded for key.
	Count(key string) int
	// Delete removes a specific key+pos pair. Returns false if not found.
	Delete(key string, pos int) bool
	// Keys returns the number of distinct keys.
	Keys() int
	// Reset drops every mapping.
	Reset()
	// Size returns the estimated memory footprint in bytes.
	Size() int64
}
