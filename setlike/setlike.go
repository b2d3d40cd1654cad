// Package setlike implements set algebra and rich comparisons over any
// collection that can report its length, iterate its elements and answer
// membership queries. Views over a multidict qualify, as do plain slices
// wrapped with Of and the Set type returned by the algebra itself.
package setlike

import (
	"iter"
)

// Iterable yields elements, possibly failing part way.
type Iterable[T any] interface {
	All() iter.Seq2[T, error]
}

// Collection is an Iterable with a length and a membership test. Contains
// takes any so that callers may probe with values of the wrong shape; such
// candidates are simply not members.
type Collection[T any] interface {
	Iterable[T]
	Len() int
	Contains(candidate any) bool
}

// Of adapts a slice to an Iterable.
func Of[T any](items ...T) Iterable[T] {
	return sliceIterable[T](items)
}

type sliceIterable[T any] []T

func (s sliceIterable[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range s {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Collect drains an Iterable into a Set, keeping first-seen order.
func Collect[T comparable](src Iterable[T]) (*Set[T], error) {
	if s, ok := src.(*Set[T]); ok {
		return s.Clone(), nil
	}
	out := NewSet[T]()
	for item, err := range src.All() {
		if err != nil {
			return nil, err
		}
		out.Add(item)
	}
	return out, nil
}
