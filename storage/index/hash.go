package index

import (
	"iter"
	"slices"

	"multidict/deepsize"
)

// Hash is a MultiIndex backed by a Go map from folded key to a sorted
// position list. Lookups of the first position are O(1) on average.
type Hash struct {
	buckets map[string][]int
}

// NewHash creates an empty hash index.
func NewHash() *Hash {
	return &Hash{buckets: make(map[string][]int)}
}

func (h *Hash) Put(key string, pos int) {
	h.buckets[key] = append(h.buckets[key], pos)
}

func (h *Hash) First(key string) (int, bool) {
	positions := h.buckets[key]
	if len(positions) == 0 {
		return 0, false
	}
	return positions[0], true
}

func (h *Hash) All(key string) iter.Seq[int] {
	return func(yield func(int) bool) {
		// Snapshot so callers may delete while ranging.
		for _, pos := range slices.Clone(h.buckets[key]) {
			if !yield(pos) {
				return
			}
		}
	}
}

func (h *Hash) Count(key string) int {
	return len(h.buckets[key])
}

func (h *Hash) Delete(key string, pos int) bool {
	positions, ok := h.buckets[key]
	if !ok {
		return false
	}
	i, found := slices.BinarySearch(positions, pos)
	if !found {
		return false
	}
	if len(positions) == 1 {
		delete(h.buckets, key)
		return true
	}
	h.buckets[key] = slices.Delete(positions, i, i+1)
	return true
}

func (h *Hash) Keys() int {
	return len(h.buckets)
}

func (h *Hash) Reset() {
	clear(h.buckets)
}

func (h *Hash) Size() int64 {
	return deepsize.Of(h.buckets)
}
