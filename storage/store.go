// Package storage implements the ordered entry store behind a multidict: an
// insertion-ordered slot slice, a hash index from folded key to positions,
// and a version counter that version-locked iterators check on every step.
package storage

import (
	"iter"
	"sync/atomic"

	"multidict/deepsize"
	"multidict/logging"
	"multidict/storage/index"
)

// globalVersion feeds every store. Drawing from one counter keeps versions
// unique across stores, so an iterator can never mistake a different store
// for the one it captured.
var globalVersion atomic.Uint64

func nextVersion() uint64 {
	return globalVersion.Add(1)
}

// slot is one physical entry. Deleted slots stay in place as tombstones
// until the next compaction so that positions remain stable across a run
// of deletions.
type slot[K ~string, V any] struct {
	key    K
	folded string
	value  V
	dead   bool
}

// Store is an ordered collection of key/value entries that permits
// duplicate keys. It is not safe for concurrent use; the owning container
// serializes access.
//
// Positions returned by Insert, LookupFirst and LookupAll address physical
// slots. They stay valid across deletions and value replacements and are
// invalidated by the next Insert, Clear or Compact.
type Store[K ~string, V any] struct {
	slots   []slot[K, V]
	index   index.MultiIndex
	live    int
	version uint64
	layout  uint64 // bumped by compaction, which moves entries without a version change
	opts    Options
}

// New creates an empty store.
func New[K ~string, V any](opts Options) *Store[K, V] {
	return &Store[K, V]{
		index:   index.NewHash(),
		version: nextVersion(),
		opts:    opts,
	}
}

// NewFrom creates a store pre-populated with pairs in order.
func NewFrom[K ~string, V any](opts Options, pairs ...Pair[K, V]) *Store[K, V] {
	s := New[K, V](opts)
	s.slots = make([]slot[K, V], 0, len(pairs))
	for _, p := range pairs {
		s.Insert(p.Key, p.Value)
	}
	return s
}

// Len returns the number of live entries.
func (s *Store[K, V]) Len() int {
	return s.live
}

// Version returns the current version. It changes on every structural
// mutation and never on reads.
func (s *Store[K, V]) Version() uint64 {
	return s.version
}

// Fold returns the lookup form of key.
func (s *Store[K, V]) Fold(key K) string {
	return foldKey(key)
}

// Insert appends an entry and returns its position.
func (s *Store[K, V]) Insert(key K, value V) int {
	// Fold may run user code; it happens before any state changes.
	folded := foldKey(key)

	if s.shouldCompact() {
		s.compact()
	}
	pos := len(s.slots)
	s.slots = append(s.slots, slot[K, V]{key: key, folded: folded, value: value})
	s.index.Put(folded, pos)
	s.live++
	s.version = nextVersion()
	return pos
}

// LookupFirst returns the earliest live position whose folded key matches.
func (s *Store[K, V]) LookupFirst(folded string) (int, bool) {
	return s.index.First(folded)
}

// LookupAll yields every live position whose folded key matches, in
// insertion order. Each range over the sequence reads the index afresh.
func (s *Store[K, V]) LookupAll(folded string) iter.Seq[int] {
	return s.index.All(folded)
}

// Count returns the number of live entries whose folded key matches.
func (s *Store[K, V]) Count(folded string) int {
	return s.index.Count(folded)
}

// GetAt returns the entry at pos.
func (s *Store[K, V]) GetAt(pos int) (Pair[K, V], error) {
	if !s.isLive(pos) {
		return Pair[K, V]{}, s.positionError(pos)
	}
	sl := &s.slots[pos]
	return Pair[K, V]{Key: sl.key, Value: sl.value}, nil
}

// ReplaceAt swaps the value at pos, keeping its key and position.
func (s *Store[K, V]) ReplaceAt(pos int, value V) error {
	if !s.isLive(pos) {
		return s.positionError(pos)
	}
	s.slots[pos].value = value
	s.version = nextVersion()
	return nil
}

// DeleteAt removes the entry at pos. Positions of the other entries do not
// change.
func (s *Store[K, V]) DeleteAt(pos int) error {
	if !s.isLive(pos) {
		return s.positionError(pos)
	}
	s.kill(pos)
	s.version = nextVersion()
	s.trim()
	return nil
}

// DeleteAll removes every entry whose folded key matches and returns how
// many were removed. The version advances once when anything was removed.
func (s *Store[K, V]) DeleteAll(folded string) int {
	n := 0
	for pos := range s.index.All(folded) {
		s.kill(pos)
		n++
	}
	if n > 0 {
		s.version = nextVersion()
		s.trim()
	}
	return n
}

// Clear removes every entry.
func (s *Store[K, V]) Clear() {
	clear(s.slots)
	s.slots = s.slots[:0]
	s.index.Reset()
	s.live = 0
	s.version = nextVersion()
}

// Advance returns the first live entry at or after cursor together with the
// cursor of the following slot. It reports false once past the end. It does
// not check versions; iterators do.
func (s *Store[K, V]) Advance(cursor int) (Pair[K, V], int, bool) {
	for i := max(cursor, 0); i < len(s.slots); i++ {
		if sl := &s.slots[i]; !sl.dead {
			return Pair[K, V]{Key: sl.key, Value: sl.value}, i + 1, true
		}
	}
	return Pair[K, V]{}, len(s.slots), false
}

// seek returns the cursor just past the first n live entries.
func (s *Store[K, V]) seek(n int) int {
	for i := range s.slots {
		if n == 0 {
			return i
		}
		if !s.slots[i].dead {
			n--
		}
	}
	return len(s.slots)
}

// Compact drops tombstones. It moves entries to new positions but does not
// change the version, since every deletion already advanced it. Positions
// obtained before the call are invalidated; iterators re-seek by the number
// of entries they have already yielded.
func (s *Store[K, V]) Compact() {
	s.compact()
}

// Clone returns an independent store holding the live entries of s.
func (s *Store[K, V]) Clone() *Store[K, V] {
	c := New[K, V](s.opts)
	c.slots = make([]slot[K, V], 0, s.live)
	for _, sl := range s.slots {
		if sl.dead {
			continue
		}
		c.index.Put(sl.folded, len(c.slots))
		c.slots = append(c.slots, sl)
	}
	c.live = len(c.slots)
	return c
}

// MemoryUsage estimates the memory held by the entries and the index.
func (s *Store[K, V]) MemoryUsage() MemoryInfo {
	return MemoryInfo{
		Entries:    s.live,
		Slots:      len(s.slots),
		EntryBytes: deepsize.Of(s.slots),
		IndexBytes: s.index.Size(),
	}
}

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

func (s *Store[K, V]) isLive(pos int) bool {
	return pos >= 0 && pos < len(s.slots) && !s.slots[pos].dead
}

func (s *Store[K, V]) positionError(pos int) error {
	return &PositionError{Pos: pos, Slots: len(s.slots)}
}

// kill turns the live slot at pos into a tombstone and unindexes it.
func (s *Store[K, V]) kill(pos int) {
	sl := &s.slots[pos]
	s.index.Delete(sl.folded, pos)
	*sl = slot[K, V]{dead: true}
	s.live--
}

// trim drops trailing tombstones. Earlier positions are unaffected.
func (s *Store[K, V]) trim() {
	n := len(s.slots)
	for n > 0 && s.slots[n-1].dead {
		n--
	}
	s.slots = s.slots[:n]
}

func (s *Store[K, V]) shouldCompact() bool {
	dead := len(s.slots) - s.live
	return dead >= s.opts.compactMin() && dead > s.live
}

func (s *Store[K, V]) compact() {
	reclaimed := len(s.slots) - s.live
	if reclaimed == 0 {
		return
	}
	n := 0
	for i := range s.slots {
		if s.slots[i].dead {
			continue
		}
		s.slots[n] = s.slots[i]
		n++
	}
	clear(s.slots[n:])
	s.slots = s.slots[:n]

	s.layout++
	s.index.Reset()
	for i := range s.slots {
		s.index.Put(s.slots[i].folded, i)
	}
	logging.Debug().
		Int("reclaimed", reclaimed).
		Int("live", s.live).
		Msg("compacted entry store")
}
