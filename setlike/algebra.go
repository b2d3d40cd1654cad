package setlike

// And returns the elements of a that also occur in b, in a's order.
func And[T comparable](a, b Iterable[T]) (*Set[T], error) {
	left, right, err := collectBoth(a, b)
	if err != nil {
		return nil, err
	}
	out := NewSet[T]()
	for _, item := range left.Values() {
		if right.items.Contains(item) {
			out.Add(item)
		}
	}
	return out, nil
}

// Or returns the elements of a followed by the elements of b not in a.
func Or[T comparable](a, b Iterable[T]) (*Set[T], error) {
	left, right, err := collectBoth(a, b)
	if err != nil {
		return nil, err
	}
	for _, item := range right.Values() {
		left.Add(item)
	}
	return left, nil
}

// Sub returns the elements of a that do not occur in b.
func Sub[T comparable](a, b Iterable[T]) (*Set[T], error) {
	left, right, err := collectBoth(a, b)
	if err != nil {
		return nil, err
	}
	for _, item := range right.Values() {
		left.Remove(item)
	}
	return left, nil
}

// Xor returns the elements found in exactly one of a and b: first those of
// a, then those of b.
func Xor[T comparable](a, b Iterable[T]) (*Set[T], error) {
	left, right, err := collectBoth(a, b)
	if err != nil {
		return nil, err
	}
	out := NewSet[T]()
	for _, item := range left.Values() {
		if !right.items.Contains(item) {
			out.Add(item)
		}
	}
	for _, item := range right.Values() {
		if !left.items.Contains(item) {
			out.Add(item)
		}
	}
	return out, nil
}

func collectBoth[T comparable](a, b Iterable[T]) (*Set[T], *Set[T], error) {
	left, err := Collect(a)
	if err != nil {
		return nil, nil, err
	}
	right, err := Collect(b)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// -------------------------------------------------------------------------
// Comparisons
// -------------------------------------------------------------------------
//
// Lengths are compared as reported, so a collection holding duplicates is
// never equal to the deduplicated set of its elements.

// LessEqual reports whether every element of a is in b.
func LessEqual[T any](a, b Collection[T]) (bool, error) {
	if a.Len() > b.Len() {
		return false, nil
	}
	return allIn(a, b)
}

// Less reports whether a is a proper subset of b.
func Less[T any](a, b Collection[T]) (bool, error) {
	if a.Len() >= b.Len() {
		return false, nil
	}
	return LessEqual(a, b)
}

// Equal reports whether a and b have equal length and a is a subset of b.
func Equal[T any](a, b Collection[T]) (bool, error) {
	if a.Len() != b.Len() {
		return false, nil
	}
	return LessEqual(a, b)
}

// NotEqual is the negation of Equal.
func NotEqual[T any](a, b Collection[T]) (bool, error) {
	eq, err := Equal(a, b)
	return !eq, err
}

// GreaterEqual reports whether every element of b is in a.
func GreaterEqual[T any](a, b Collection[T]) (bool, error) {
	if a.Len() < b.Len() {
		return false, nil
	}
	return allIn(b, a)
}

// Greater reports whether a is a proper superset of b.
func Greater[T any](a, b Collection[T]) (bool, error) {
	if a.Len() <= b.Len() {
		return false, nil
	}
	return GreaterEqual(a, b)
}

// allIn reports whether every element yielded by src is contained in dst.
func allIn[T any](src Iterable[T], dst Collection[T]) (bool, error) {
	for item, err := range src.All() {
		if err != nil {
			return false, err
		}
		if !dst.Contains(item) {
			return false, nil
		}
	}
	return true, nil
}
