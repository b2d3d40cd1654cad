// Package view provides live, read-only projections over a multidict.
//
// A view holds its owner, not a store. Every call resolves the owner's
// current store, so a view reflects mutations made after it was created and
// follows the owner across store replacement. Iterators obtained from a view
// are bound to the store that was current when they were created and are
// version-locked to it.
package view

import (
	"fmt"
	"iter"
	"strings"

	"multidict/storage"
)

// Owner is implemented by containers that views can observe.
type Owner[K ~string, V any] interface {
	// CurrentStore returns the store the owner considers current, or nil
	// when it has none.
	CurrentStore() *storage.Store[K, V]
}

// DetachedError is returned when a view's owner has no store to iterate.
type DetachedError struct{}

func (e *DetachedError) Error() string {
	return "view is not attached to a store"
}

type base[K ~string, V any] struct {
	owner Owner[K, V]
}

func (b base[K, V]) store() *storage.Store[K, V] {
	if b.owner == nil {
		return nil
	}
	return b.owner.CurrentStore()
}

// Len returns the number of entries in the owner's current store.
func (b base[K, V]) Len() int {
	s := b.store()
	if s == nil {
		return 0
	}
	return s.Len()
}

// iterate builds a fresh iterator on the current store via newIter.
func iterate[K ~string, V any, T any](b base[K, V], newIter func(*storage.Store[K, V]) *storage.Iterator[K, V, T]) (*storage.Iterator[K, V, T], error) {
	s := b.store()
	if s == nil {
		return nil, &DetachedError{}
	}
	return newIter(s), nil
}

// seq adapts an iterator constructor to range-over-func, reporting a
// construction failure as a single (zero, err) element.
func seq[K ~string, V any, T any](it *storage.Iterator[K, V, T], err error) iter.Seq2[T, error] {
	if err != nil {
		return func(yield func(T, error) bool) {
			var zero T
			yield(zero, err)
		}
	}
	return it.All()
}

// render formats the elements of a view as Name(e1, e2, ...).
func render[T any](name string, elems iter.Seq2[T, error], format func(T) string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	first := true
	for e, err := range elems {
		if err != nil {
			break
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(format(e))
	}
	b.WriteByte(')')
	return b.String()
}

func quote[K ~string](k K) string {
	return fmt.Sprintf("%q", string(k))
}
