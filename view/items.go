package view

import (
	"fmt"
	"iter"

	"multidict/setlike"
	"multidict/storage"
)

// ItemsView is a live view of (key, value) pairs. It implements
// setlike.Collection, so the setlike package supplies its set algebra and
// comparisons. Membership and set algebra need values that are comparable at
// run time; an interface V holding a slice, map or func makes them panic.
type ItemsView[K ~string, V comparable] struct {
	base[K, V]
}

// Items returns an items view over owner.
func Items[K ~string, V comparable](owner Owner[K, V]) *ItemsView[K, V] {
	return &ItemsView[K, V]{base[K, V]{owner: owner}}
}

// Iter returns a new version-locked iterator on the owner's current store.
func (v *ItemsView[K, V]) Iter() (*storage.Iterator[K, V, storage.Pair[K, V]], error) {
	return iterate(v.base, (*storage.Store[K, V]).Items)
}

// All ranges over a fresh iterator.
func (v *ItemsView[K, V]) All() iter.Seq2[storage.Pair[K, V], error] {
	it, err := v.Iter()
	return seq(it, err)
}

// Contains reports whether the view holds the pair given as candidate. Only a
// storage.Pair[K, V] or a [2]any of (K, V) qualifies; any other candidate is
// not a member. Keys are compared as stored, without folding. Values are
// compared with ==, which panics if V is an interface type holding an
// uncomparable dynamic value such as a slice.
//
// A view without a store answers false.
func (v *ItemsView[K, V]) Contains(candidate any) bool {
	want, ok := asPair[K, V](candidate)
	if !ok {
		return false
	}
	s := v.store()
	if s == nil {
		return false
	}
	for pos := 0; ; {
		p, next, ok := s.Advance(pos)
		if !ok {
			return false
		}
		if p.Key == want.Key && p.Value == want.Value {
			return true
		}
		pos = next
	}
}

// IsDisjoint reports whether no element of other is in the view. A view is
// disjoint with itself only when empty.
func (v *ItemsView[K, V]) IsDisjoint(other setlike.Iterable[storage.Pair[K, V]]) (bool, error) {
	if o, ok := other.(*ItemsView[K, V]); ok && o == v {
		return v.Len() == 0, nil
	}
	for p, err := range other.All() {
		if err != nil {
			return false, err
		}
		if v.Contains(p) {
			return false, nil
		}
	}
	return true, nil
}

func (v *ItemsView[K, V]) String() string {
	return render("ItemsView", v.All(), func(p storage.Pair[K, V]) string {
		return fmt.Sprintf("%s: %v", quote(p.Key), p.Value)
	})
}

func asPair[K ~string, V comparable](candidate any) (storage.Pair[K, V], bool) {
	switch c := candidate.(type) {
	case storage.Pair[K, V]:
		return c, true
	case [2]any:
		k, ok := c[0].(K)
		if !ok {
			return storage.Pair[K, V]{}, false
		}
		val, ok := c[1].(V)
		if !ok {
			return storage.Pair[K, V]{}, false
		}
		return storage.Pair[K, V]{Key: k, Value: val}, true
	default:
		return storage.Pair[K, V]{}, false
	}
}
