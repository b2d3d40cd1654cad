// Package deepsize estimates the memory held by Go values, following
// pointers, slices, maps and interfaces. The entry store uses it to report
// the footprint of its slots and index.
package deepsize

import (
	"reflect"
	"unsafe"
)

// mapHeader approximates the fixed cost of a map header and its first group.
const mapHeader = int64(unsafe.Sizeof(uint64(0))) * 8

// Of returns an estimate of the total memory occupied by v, including
// all reachable heap allocations. Shared pointers are counted once.
func Of(v any) int64 {
	if v == nil {
		return 0
	}
	w := walker{seen: make(map[uintptr]struct{})}
	rv := reflect.ValueOf(v)
	return int64(rv.Type().Size()) + w.heap(rv)
}

// Sum returns the combined size of several values, counting memory shared
// between them only once.
func Sum(vs ...any) int64 {
	w := walker{seen: make(map[uintptr]struct{})}
	var total int64
	for _, v := range vs {
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		total += int64(rv.Type().Size()) + w.heap(rv)
	}
	return total
}

type walker struct {
	seen map[uintptr]struct{}
}

// visit reports whether the allocation at p is seen for the first time.
func (w *walker) visit(p uintptr) bool {
	if _, ok := w.seen[p]; ok {
		return false
	}
	w.seen[p] = struct{}{}
	return true
}

// heap returns the bytes v references outside its own inline storage.
func (w *walker) heap(v reflect.Value) int64 {
	if !v.IsValid() {
		return 0
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || !w.visit(v.Pointer()) {
			return 0
		}
		elem := v.Elem()
		return int64(elem.Type().Size()) + w.heap(elem)

	case reflect.String:
		return int64(v.Len())

	case reflect.Slice:
		if v.IsNil() || !w.visit(v.Pointer()) {
			return 0
		}
		n := int64(v.Cap()) * int64(v.Type().Elem().Size())
		return n + w.elems(v)

	case reflect.Array:
		return w.elems(v)

	case reflect.Struct:
		var n int64
		for i := range v.NumField() {
			n += w.heap(v.Field(i))
		}
		return n

	case reflect.Map:
		if v.IsNil() || !w.visit(v.Pointer()) {
			return 0
		}
		n := mapHeader
		it := v.MapRange()
		for it.Next() {
			k, e := it.Key(), it.Value()
			n += int64(k.Type().Size()) + w.heap(k)
			n += int64(e.Type().Size()) + w.heap(e)
		}
		return n

	case reflect.Interface:
		if v.IsNil() {
			return 0
		}
		elem := v.Elem()
		return int64(elem.Type().Size()) + w.heap(elem)

	default:
		return 0
	}
}

// elems sums the indirect size of each element of a slice or array.
func (w *walker) elems(v reflect.Value) int64 {
	if !hasPointers(v.Type().Elem()) {
		return 0
	}
	var n int64
	for i := range v.Len() {
		n += w.heap(v.Index(i))
	}
	return n
}

// hasPointers reports whether values of t may reference heap memory.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.String,
		reflect.Interface, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	case reflect.Array:
		return hasPointers(t.Elem())
	}
	return false
}
