// Package multidict provides an insertion-ordered mapping that allows
// several values per key, with a case-insensitive flavour keyed by
// storage.IStr. It is the owner that storage stores and views are built
// around: it alone mutates its store, and views resolve the store through
// CurrentStore on every call.
//
// A MultiDict is not safe for concurrent use.
package multidict

import (
	"fmt"
	"slices"
	"strings"

	"multidict/logging"
	"multidict/storage"
	"multidict/view"
)

// MultiDict is an ordered multi-valued mapping. V must also be comparable at
// run time: when V is an interface type, storing a slice, map or func makes
// Items().Contains and the setlike operations panic.
type MultiDict[K ~string, V comparable] struct {
	store *storage.Store[K, V]
	opts  storage.Options
}

// New creates a MultiDict holding pairs in order.
func New[K ~string, V comparable](pairs ...storage.Pair[K, V]) *MultiDict[K, V] {
	return WithOptions(storage.Options{}, pairs...)
}

// NewCI creates a case-insensitive MultiDict.
func NewCI[V comparable](pairs ...storage.Pair[storage.IStr, V]) *MultiDict[storage.IStr, V] {
	return New(pairs...)
}

// WithOptions creates a MultiDict whose stores use opts.
func WithOptions[K ~string, V comparable](opts storage.Options, pairs ...storage.Pair[K, V]) *MultiDict[K, V] {
	return &MultiDict[K, V]{
		store: storage.NewFrom(opts, pairs...),
		opts:  opts,
	}
}

// CurrentStore returns the live store. Views call it on every operation.
func (md *MultiDict[K, V]) CurrentStore() *storage.Store[K, V] {
	return md.store
}

// Len returns the number of entries, counting every duplicate.
func (md *MultiDict[K, V]) Len() int {
	return md.store.Len()
}

// Version returns the version of the current store.
func (md *MultiDict[K, V]) Version() uint64 {
	return md.store.Version()
}

// -------------------------------------------------------------------------
// Reads
// -------------------------------------------------------------------------

// Get returns the first value stored under key.
func (md *MultiDict[K, V]) Get(key K) (V, bool) {
	pos, ok := md.store.LookupFirst(md.store.Fold(key))
	if !ok {
		var zero V
		return zero, false
	}
	p, err := md.store.GetAt(pos)
	if err != nil {
		var zero V
		return zero, false
	}
	return p.Value, true
}

// GetOne returns the first value stored under key or a *KeyNotFoundError.
func (md *MultiDict[K, V]) GetOne(key K) (V, error) {
	v, ok := md.Get(key)
	if !ok {
		return v, &KeyNotFoundError{Key: string(key)}
	}
	return v, nil
}

// GetAll returns every value stored under key in insertion order, or nil.
func (md *MultiDict[K, V]) GetAll(key K) []V {
	var out []V
	for pos := range md.store.LookupAll(md.store.Fold(key)) {
		if p, err := md.store.GetAt(pos); err == nil {
			out = append(out, p.Value)
		}
	}
	return out
}

// Contains reports whether some entry matches key.
func (md *MultiDict[K, V]) Contains(key K) bool {
	_, ok := md.store.LookupFirst(md.store.Fold(key))
	return ok
}

// Keys returns a live view of the keys.
func (md *MultiDict[K, V]) Keys() *view.KeysView[K, V] {
	return view.Keys[K, V](md)
}

// Values returns a live view of the values.
func (md *MultiDict[K, V]) Values() *view.ValuesView[K, V] {
	return view.Values[K, V](md)
}

// Items returns a live view of the (key, value) pairs.
func (md *MultiDict[K, V]) Items() *view.ItemsView[K, V] {
	return view.Items[K, V](md)
}

// Copy returns an independent MultiDict with the same entries.
func (md *MultiDict[K, V]) Copy() *MultiDict[K, V] {
	return &MultiDict[K, V]{store: md.store.Clone(), opts: md.opts}
}

func (md *MultiDict[K, V]) String() string {
	return format("MultiDict", md.Items())
}

func format[K ~string, V comparable](name string, items *view.ItemsView[K, V]) string {
	var pairs []string
	for p, err := range items.All() {
		if err != nil {
			break
		}
		pairs = append(pairs, p.String())
	}
	return "<" + name + "(" + strings.Join(pairs, ", ") + ")>"
}

// -------------------------------------------------------------------------
// Mutations
// -------------------------------------------------------------------------

// Add appends an entry, keeping any existing entries for key.
func (md *MultiDict[K, V]) Add(key K, value V) {
	md.store.Insert(key, value)
}

// Extend appends every pair in order.
func (md *MultiDict[K, V]) Extend(pairs ...storage.Pair[K, V]) {
	for _, p := range pairs {
		md.store.Insert(p.Key, p.Value)
	}
}

// Set makes value the only value for key. The first existing entry keeps its
// position and key; later entries for key are removed. When key is absent
// the pair is appended.
func (md *MultiDict[K, V]) Set(key K, value V) {
	positions := slices.Collect(md.store.LookupAll(md.store.Fold(key)))
	if len(positions) == 0 {
		md.store.Insert(key, value)
		return
	}
	// Deletions leave other positions intact, so the collected ones stay
	// valid for the whole loop.
	for _, pos := range slices.Backward(positions[1:]) {
		md.mustDelete(pos)
	}
	if err := md.store.ReplaceAt(positions[0], value); err != nil {
		panic(fmt.Sprintf("multidict: replace at indexed position: %v", err))
	}
}

// SetDefault returns the first value for key, adding key with def when it
// is absent.
func (md *MultiDict[K, V]) SetDefault(key K, def V) V {
	if v, ok := md.Get(key); ok {
		return v
	}
	md.store.Insert(key, def)
	return def
}

// Del removes every entry for key.
func (md *MultiDict[K, V]) Del(key K) error {
	if md.store.DeleteAll(md.store.Fold(key)) == 0 {
		return &KeyNotFoundError{Key: string(key)}
	}
	return nil
}

// PopOne removes and returns the first value for key.
func (md *MultiDict[K, V]) PopOne(key K) (V, error) {
	pos, ok := md.store.LookupFirst(md.store.Fold(key))
	if !ok {
		var zero V
		return zero, &KeyNotFoundError{Key: string(key)}
	}
	p, err := md.store.GetAt(pos)
	if err != nil {
		return p.Value, err
	}
	md.mustDelete(pos)
	return p.Value, nil
}

// PopAll removes and returns every value for key in insertion order.
func (md *MultiDict[K, V]) PopAll(key K) ([]V, error) {
	values := md.GetAll(key)
	if len(values) == 0 {
		return nil, &KeyNotFoundError{Key: string(key)}
	}
	md.store.DeleteAll(md.store.Fold(key))
	return values, nil
}

// PopItem removes and returns the last entry.
func (md *MultiDict[K, V]) PopItem() (storage.Pair[K, V], error) {
	last := -1
	for pos := 0; ; {
		_, next, ok := md.store.Advance(pos)
		if !ok {
			break
		}
		last, pos = next-1, next
	}
	if last < 0 {
		return storage.Pair[K, V]{}, &EmptyError{}
	}
	p, err := md.store.GetAt(last)
	if err != nil {
		return p, err
	}
	md.mustDelete(last)
	return p, nil
}

// Clear removes every entry.
func (md *MultiDict[K, V]) Clear() {
	md.store.Clear()
}

// Update merges pairs into the mapping. For each key present in pairs, the
// existing entries for that key take the new values in order; surplus old
// entries are dropped and surplus new values are appended in input order.
// Keys absent from pairs are untouched.
//
// Update rebuilds the mapping into a new store. Views follow the swap;
// iterators created before it keep pointing at the old store.
func (md *MultiDict[K, V]) Update(pairs ...storage.Pair[K, V]) {
	if len(pairs) == 0 {
		return
	}
	pending := make(map[string][]storage.Pair[K, V], len(pairs))
	for _, p := range pairs {
		folded := md.store.Fold(p.Key)
		pending[folded] = append(pending[folded], p)
	}

	next := storage.New[K, V](md.opts)
	for pos := 0; ; {
		p, cursor, ok := md.store.Advance(pos)
		if !ok {
			break
		}
		pos = cursor
		folded := md.store.Fold(p.Key)
		queue, updating := pending[folded]
		if !updating {
			next.Insert(p.Key, p.Value)
			continue
		}
		if len(queue) == 0 {
			continue
		}
		next.Insert(p.Key, queue[0].Value)
		pending[folded] = queue[1:]
	}
	for _, p := range pairs {
		folded := md.store.Fold(p.Key)
		queue := pending[folded]
		if len(queue) == 0 || queue[0] != p {
			continue
		}
		next.Insert(p.Key, p.Value)
		pending[folded] = queue[1:]
	}

	logging.Debug().
		Int("before", md.store.Len()).
		Int("after", next.Len()).
		Int("updates", len(pairs)).
		Msg("rebuilt multidict store")
	md.store = next
}

// mustDelete removes an entry at a position obtained from the index.
func (md *MultiDict[K, V]) mustDelete(pos int) {
	if err := md.store.DeleteAt(pos); err != nil {
		panic(fmt.Sprintf("multidict: delete at indexed position: %v", err))
	}
}
