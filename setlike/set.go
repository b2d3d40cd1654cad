package setlike

import (
	"fmt"
	"iter"
	"strings"

	"github.com/emirpasic/gods/sets/linkedhashset"
)

// Set is an insertion-ordered set of comparable elements. It implements
// Collection. Elements are hashed as map keys, so an interface element holding
// an uncomparable value panics.
type Set[T comparable] struct {
	items *linkedhashset.Set
}

// NewSet returns a set holding items in first-seen order.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{items: linkedhashset.New()}
	for _, item := range items {
		s.items.Add(item)
	}
	return s
}

func (s *Set[T]) Add(item T) {
	s.items.Add(item)
}

func (s *Set[T]) Remove(item T) {
	s.items.Remove(item)
}

func (s *Set[T]) Len() int {
	return s.items.Size()
}

func (s *Set[T]) Contains(candidate any) bool {
	item, ok := candidate.(T)
	if !ok {
		return false
	}
	return s.items.Contains(item)
}

func (s *Set[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		it := s.items.Iterator()
		for it.Next() {
			if !yield(it.Value().(T), nil) {
				return
			}
		}
	}
}

// Values returns the elements in order.
func (s *Set[T]) Values() []T {
	out := make([]T, 0, s.items.Size())
	for _, v := range s.items.Values() {
		out = append(out, v.(T))
	}
	return out
}

func (s *Set[T]) Clone() *Set[T] {
	return NewSet(s.Values()...)
}

func (s *Set[T]) String() string {
	parts := make([]string, 0, s.items.Size())
	for _, v := range s.items.Values() {
		parts = append(parts, fmt.Sprint(v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
