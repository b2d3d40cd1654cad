package storage

import "fmt"

// Pair is one key/value entry as seen by callers. Key carries the casing it
// was inserted with, never the folded form.
type Pair[K ~string, V any] struct {
	Key   K
	Value V
}

// P is shorthand for building a Pair.
func P[K ~string, V any](key K, value V) Pair[K, V] {
	return Pair[K, V]{Key: key, Value: value}
}

func (p Pair[K, V]) String() string {
	return fmt.Sprintf("%q: %v", string(p.Key), p.Value)
}

// Options tune the physical layout of a Store.
type Options struct {
	// CompactMin is the number of dead slots that must accumulate before an
	// insert triggers compaction. Compaction also requires dead slots to
	// outnumber live ones.
	CompactMin int
}

// DefaultCompactMin is used when Options.CompactMin is zero or negative.
const DefaultCompactMin = 32

func (o Options) compactMin() int {
	if o.CompactMin <= 0 {
		return DefaultCompactMin
	}
	return o.CompactMin
}

// MemoryInfo reports the estimated footprint of a store.
type MemoryInfo struct {
	Entries    int   // live entries
	Slots      int   // physical slots, including dead ones
	EntryBytes int64 // slot slice, keys and values
	IndexBytes int64 // folded keys and position lists
}

// Total returns the combined footprint in bytes.
func (m MemoryInfo) Total() int64 {
	return m.EntryBytes + m.IndexBytes
}

// -------------------------------------------------------------------------
// Typed errors
// -------------------------------------------------------------------------

// ConcurrentModificationError is returned by Iterator.Next once the store
// the iterator was created on has been mutated. It is permanent for that
// iterator.
type ConcurrentModificationError struct {
	Captured uint64 // version observed when the iterator was created
	Current  uint64 // version observed by the failing Next call
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("multidict changed during iteration (version %d, now %d)", e.Captured, e.Current)
}

// PositionError is returned when a position does not address a live entry.
type PositionError struct {
	Pos   int
	Slots int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position %d does not address a live entry (%d slots)", e.Pos, e.Slots)
}
