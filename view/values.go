package view

import (
	"fmt"
	"iter"

	"multidict/storage"
)

// ValuesView is a live view of values in entry order.
type ValuesView[K ~string, V any] struct {
	base[K, V]
}

// Values returns a values view over owner.
func Values[K ~string, V any](owner Owner[K, V]) *ValuesView[K, V] {
	return &ValuesView[K, V]{base[K, V]{owner: owner}}
}

func (v *ValuesView[K, V]) Iter() (*storage.Iterator[K, V, V], error) {
	return iterate(v.base, (*storage.Store[K, V]).Values)
}

func (v *ValuesView[K, V]) All() iter.Seq2[V, error] {
	it, err := v.Iter()
	return seq(it, err)
}

func (v *ValuesView[K, V]) String() string {
	return render("ValuesView", v.All(), func(val V) string {
		return fmt.Sprintf("%v", val)
	})
}
