package multidict

import (
	"multidict/storage"
	"multidict/view"
)

// Proxy is a read-only handle on a MultiDict. It resolves the wrapped
// mapping's current store on every call, so it observes every later change
// made through the MultiDict.
type Proxy[K ~string, V comparable] struct {
	md *MultiDict[K, V]
}

// NewProxy wraps md.
func NewProxy[K ~string, V comparable](md *MultiDict[K, V]) *Proxy[K, V] {
	return &Proxy[K, V]{md: md}
}

func (p *Proxy[K, V]) CurrentStore() *storage.Store[K, V] {
	return p.md.CurrentStore()
}

func (p *Proxy[K, V]) Len() int { return p.md.Len() }
func (p *Proxy[K, V]) Get(key K) (V, bool) { return p.md.Get(key) }
func (p *Proxy[K, V]) GetOne(key K) (V, error) { return p.md.GetOne(key) }
func (p *Proxy[K, V]) GetAll(key K) []V { return p.md.GetAll(key) }
func (p *Proxy[K, V]) Contains(key K) bool { return p.md.Contains(key) }
func (p *Proxy[K, V]) Copy() *MultiDict[K, V] { return p.md.Copy() }
func (p *Proxy[K, V]) String() string { return format("MultiDictProxy", p.Items()) }

func (p *Proxy[K, V]) Keys() *view.KeysView[K, V] {
	return view.Keys[K, V](p)
}

func (p *Proxy[K, V]) Values() *view.ValuesView[K, V] {
	return view.Values[K, V](p)
}

func (p *Proxy[K, V]) Items() *view.ItemsView[K, V] {
	return view.Items[K, V](p)
}
