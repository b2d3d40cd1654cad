package multidict

import "fmt"

// KeyNotFoundError is returned when an operation requires a key that has no
// entries.
type KeyNotFoundError struct{ Key string }

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found", e.Key)
}

// EmptyError is returned by PopItem on an empty mapping.
type EmptyError struct{}

func (e *EmptyError) Error() string {
	return "multidict is empty"
}
