package storage

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// collectItems drains a fresh items iterator into a slice.
func collectItems[K ~string, V any](t *testing.T, s *Store[K, V]) []Pair[K, V] {
	t.Helper()
	var out []Pair[K, V]
	for p, err := range s.Items().All() {
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func newStore(pairs ...Pair[string, int]) *Store[string, int] {
	return NewFrom(Options{}, pairs...)
}

// -------------------------------------------------------------------------
// Ordering and duplicates
// -------------------------------------------------------------------------

func TestStore_InsertPreservesOrder(t *testing.T) {
	s := New[string, int](Options{})
	keys := []string{"z", "a", "m", "b", "y"}
	for i, k := range keys {
		pos := s.Insert(k, i)
		require.Equal(t, i, pos)
	}

	got := collectItems(t, s)
	require.Len(t, got, len(keys))
	for i, p := range got {
		require.Equal(t, keys[i], p.Key)
		require.Equal(t, i, p.Value)
	}
}

func TestStore_DuplicateRetention(t *testing.T) {
	s := newStore(P("a", 1), P("b", 2), P("a", 3))

	require.Equal(t, []Pair[string, int]{P("a", 1), P("b", 2), P("a", 3)}, collectItems(t, s))
	require.Equal(t, 3, s.Len())
	require.Equal(t, 2, s.Count("a"))
	require.Equal(t, []int{0, 2}, slices.Collect(s.LookupAll("a")))

	first, ok := s.LookupFirst("a")
	require.True(t, ok)
	require.Equal(t, 0, first)
}

func TestStore_LookupMissing(t *testing.T) {
	s := newStore(P("a", 1))
	_, ok := s.LookupFirst("b")
	require.False(t, ok)
	require.Empty(t, slices.Collect(s.LookupAll("b")))
}

// -------------------------------------------------------------------------
// Positional operations
// -------------------------------------------------------------------------

func TestStore_GetAt(t *testing.T) {
	s := newStore(P("a", 1), P("b", 2))

	p, err := s.GetAt(1)
	require.NoError(t, err)
	require.Equal(t, P("b", 2), p)

	for _, pos := range []int{-1, 2, 100} {
		_, err := s.GetAt(pos)
		var perr *PositionError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, pos, perr.Pos)
	}
}

func TestStore_ReplaceAtKeepsKeyAndPosition(t *testing.T) {
	s := newStore(P("a", 1), P("b", 2), P("a", 3))

	require.NoError(t, s.ReplaceAt(2, 30))
	require.Equal(t, []Pair[string, int]{P("a", 1), P("b", 2), P("a", 30)}, collectItems(t, s))
	require.Equal(t, []int{0, 2}, slices.Collect(s.LookupAll("a")))
}

func TestStore_DeleteAtPreservesSurvivorOrder(t *testing.T) {
	s := newStore(P("a", 1), P("b", 2), P("c", 3), P("b", 4))

	require.NoError(t, s.DeleteAt(1))
	require.Equal(t, []Pair[string, int]{P("a", 1), P("c", 3), P("b", 4)}, collectItems(t, s))
	require.Equal(t, 3, s.Len())

	// Positions of survivors are untouched by the deletion.
	first, ok := s.LookupFirst("b")
	require.True(t, ok)
	require.Equal(t, 3, first)
	p, err := s.GetAt(3)
	require.NoError(t, err)
	require.Equal(t, P("b", 4), p)

	// A deleted position no longer addresses anything.
	_, err = s.GetAt(1)
	require.Error(t, err)
	require.Error(t, s.DeleteAt(1))
	require.Error(t, s.ReplaceAt(1, 9))
}

func TestStore_DeleteAll(t *testing.T) {
	s := newStore(P("a", 1), P("b", 2), P("a", 3), P("c", 4))
	before := s.Version()

	require.Equal(t, 2, s.DeleteAll("a"))
	require.Greater(t, s.Version(), before)
	require.Equal(t, []Pair[string, int]{P("b", 2), P("c", 4)}, collectItems(t, s))

	unchanged := s.Version()
	require.Zero(t, s.DeleteAll("a"))
	require.Equal(t, unchanged, s.Version())
}

func TestStore_DeleteLastEntryEmptiesSlots(t *testing.T) {
	s := newStore(P("a", 1), P("b", 2))
	require.NoError(t, s.DeleteAt(0))
	require.NoError(t, s.DeleteAt(1))

	require.Zero(t, s.Len())
	require.Zero(t, s.MemoryUsage().Slots)
	require.Equal(t, 0, s.Insert("c", 3))
}

func TestStore_Clear(t *testing.T) {
	s := newStore(P("a", 1), P("b", 2))
	before := s.Version()

	s.Clear()
	require.Zero(t, s.Len())
	require.Greater(t, s.Version(), before)
	require.Empty(t, collectItems(t, s))
	_, ok := s.LookupFirst("a")
	require.False(t, ok)
}

// -------------------------------------------------------------------------
// Advance
// -------------------------------------------------------------------------

func TestStore_AdvanceSkipsTombstones(t *testing.T) {
	s := newStore(P("a", 1), P("b", 2), P("c", 3))
	require.NoError(t, s.DeleteAt(1))

	p, next, ok := s.Advance(0)
	require.True(t, ok)
	require.Equal(t, P("a", 1), p)

	p, next, ok = s.Advance(next)
	require.True(t, ok)
	require.Equal(t, P("c", 3), p)

	_, _, ok = s.Advance(next)
	require.False(t, ok)

	// Advance never touches the version.
	v := s.Version()
	s.Advance(-5)
	require.Equal(t, v, s.Version())
}

// -------------------------------------------------------------------------
// Versions
// -------------------------------------------------------------------------

func TestStore_VersionMonotonic(t *testing.T) {
	s := New[string, int](Options{})
	last := s.Version()
	bumped := func(op string) {
		t.Helper()
		v := s.Version()
		require.Greater(t, v, last, op)
		last = v
	}

	s.Insert("a", 1)
	bumped("insert")
	s.Insert("b", 2)
	bumped("insert")
	require.NoError(t, s.ReplaceAt(0, 10))
	bumped("replace")
	require.NoError(t, s.DeleteAt(1))
	bumped("delete")
	s.Clear()
	bumped("clear")
}

func TestStore_ReadsDoNotChangeVersion(t *testing.T) {
	s := newStore(P("a", 1), P("b", 2))
	v := s.Version()

	s.Len()
	s.LookupFirst("a")
	_ = slices.Collect(s.LookupAll("a"))
	s.GetAt(0)
	s.Count("b")
	s.MemoryUsage()
	collectItems(t, s)

	require.Equal(t, v, s.Version())
}

func TestStore_VersionsUniqueAcrossStores(t *testing.T) {
	a := New[string, int](Options{})
	b := New[string, int](Options{})
	require.NotEqual(t, a.Version(), b.Version())

	a.Insert("x", 1)
	b.Insert("x", 1)
	require.NotEqual(t, a.Version(), b.Version())
}

// -------------------------------------------------------------------------
// Compaction
// -------------------------------------------------------------------------

func TestStore_CompactionOnInsert(t *testing.T) {
	s := New[string, int](Options{CompactMin: 4})
	for i := range 10 {
		s.Insert("k", i)
	}
	s.Insert("tail", 99)
	// Kill the first eight entries; the tail keeps them from being trimmed.
	for pos := range 8 {
		require.NoError(t, s.DeleteAt(pos))
	}
	require.Equal(t, 11, s.MemoryUsage().Slots)

	v := s.Version()
	pos := s.Insert("k", 10)
	require.Greater(t, s.Version(), v)

	info := s.MemoryUsage()
	require.Equal(t, 4, info.Entries)
	require.Equal(t, 4, info.Slots)
	require.Equal(t, 3, pos)
	require.Equal(t, []int{0, 1, 3}, slices.Collect(s.LookupAll("k")))
	require.Equal(t,
		[]Pair[string, int]{P("k", 8), P("k", 9), P("tail", 99), P("k", 10)},
		collectItems(t, s))
}

func TestStore_CompactDoesNotBumpVersion(t *testing.T) {
	s := newStore(P("a", 1), P("b", 2), P("c", 3))
	require.NoError(t, s.DeleteAt(0))
	v := s.Version()

	s.Compact()
	require.Equal(t, v, s.Version())
	require.Equal(t, 2, s.MemoryUsage().Slots)
	first, ok := s.LookupFirst("c")
	require.True(t, ok)
	require.Equal(t, 1, first)
}

// -------------------------------------------------------------------------
// Clone and memory
// -------------------------------------------------------------------------

func TestStore_CloneIsIndependent(t *testing.T) {
	s := newStore(P("a", 1), P("b", 2), P("a", 3))
	require.NoError(t, s.DeleteAt(1))

	c := s.Clone()
	require.NotEqual(t, s.Version(), c.Version())
	require.Equal(t, collectItems(t, s), collectItems(t, c))
	require.Equal(t, []int{0, 1}, slices.Collect(c.LookupAll("a")))

	c.Insert("z", 26)
	require.Equal(t, 2, s.Len())
	require.Equal(t, 3, c.Len())
}

func TestStore_MemoryUsage(t *testing.T) {
	s := New[string, string](Options{})
	empty := s.MemoryUsage()
	for i := range 64 {
		s.Insert("X-Request-Id", string(rune('a'+i%26)))
	}
	full := s.MemoryUsage()

	require.Equal(t, 64, full.Entries)
	require.Greater(t, full.EntryBytes, empty.EntryBytes)
	require.Greater(t, full.IndexBytes, empty.IndexBytes)
	require.Equal(t, full.EntryBytes+full.IndexBytes, full.Total())
}

func TestPositionError_Message(t *testing.T) {
	s := newStore(P("a", 1))
	err := s.DeleteAt(7)
	var perr *PositionError
	require.True(t, errors.As(err, &perr))
	require.Contains(t, err.Error(), "position 7")
}
