package view

import (
	"iter"

	"multidict/storage"
)

// KeysView is a live view of keys, one per entry, duplicates included.
// Membership is answered through the store index and therefore honours case
// folding.
type KeysView[K ~string, V any] struct {
	base[K, V]
}

// Keys returns a keys view over owner.
func Keys[K ~string, V any](owner Owner[K, V]) *KeysView[K, V] {
	return &KeysView[K, V]{base[K, V]{owner: owner}}
}

func (v *KeysView[K, V]) Iter() (*storage.Iterator[K, V, K], error) {
	return iterate(v.base, (*storage.Store[K, V]).Keys)
}

func (v *KeysView[K, V]) All() iter.Seq2[K, error] {
	it, err := v.Iter()
	return seq(it, err)
}

// Contains reports whether some entry's key folds to the same lookup form as
// candidate. candidate may be a K or a plain string.
func (v *KeysView[K, V]) Contains(candidate any) bool {
	var key K
	switch c := candidate.(type) {
	case K:
		key = c
	case string:
		key = K(c)
	default:
		return false
	}
	s := v.store()
	if s == nil {
		return false
	}
	_, ok := s.LookupFirst(s.Fold(key))
	return ok
}

func (v *KeysView[K, V]) String() string {
	return render("KeysView", v.All(), quote[K])
}
