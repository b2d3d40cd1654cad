package storage

import (
	"errors"
	"iter"

	"google.golang.org/api/iterator"
)

// Iterator is a one-shot, version-locked traversal of one Store. It holds
// the store directly, so it keeps working on that store even if the owning
// container later swaps in a different one. Any structural mutation of the
// store after the iterator was created makes Next fail, permanently.
//
// Next returns iterator.Done at the end of the sequence.
type Iterator[K ~string, V any, T any] struct {
	store   *Store[K, V]
	pos     int
	yielded int
	version uint64
	layout  uint64
	project func(Pair[K, V]) T
	err     error
	done    bool
}

func newIterator[K ~string, V any, T any](s *Store[K, V], project func(Pair[K, V]) T) *Iterator[K, V, T] {
	return &Iterator[K, V, T]{
		store:   s,
		version: s.version,
		layout:  s.layout,
		project: project,
	}
}

// Items returns an iterator over (key, value) pairs.
func (s *Store[K, V]) Items() *Iterator[K, V, Pair[K, V]] {
	return newIterator(s, func(p Pair[K, V]) Pair[K, V] { return p })
}

// Keys returns an iterator over keys, duplicates included.
func (s *Store[K, V]) Keys() *Iterator[K, V, K] {
	return newIterator(s, func(p Pair[K, V]) K { return p.Key })
}

// Values returns an iterator over values.
func (s *Store[K, V]) Values() *Iterator[K, V, V] {
	return newIterator(s, func(p Pair[K, V]) V { return p.Value })
}

// Next returns the next element. Once it has returned iterator.Done or a
// *ConcurrentModificationError, every later call returns the same.
func (it *Iterator[K, V, T]) Next() (T, error) {
	var zero T
	if it.err != nil {
		return zero, it.err
	}
	if it.done {
		return zero, iterator.Done
	}
	if current := it.store.Version(); current != it.version {
		it.err = &ConcurrentModificationError{Captured: it.version, Current: current}
		return zero, it.err
	}
	if it.layout != it.store.layout {
		// Compaction moved entries without removing any, so the same
		// number of live entries still precede the cursor.
		it.pos = it.store.seek(it.yielded)
		it.layout = it.store.layout
	}
	p, next, ok := it.store.Advance(it.pos)
	if !ok {
		it.done = true
		return zero, iterator.Done
	}
	it.pos = next
	it.yielded++
	return it.project(p), nil
}

// All adapts the iterator for range-over-func. A failure is yielded once as
// (zero, err) and ends the sequence; iterator.Done is not yielded.
func (it *Iterator[K, V, T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}
