package storage

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Folder is implemented by key types that take part in case folding. Fold
// returns the lookup form of the key; it must be deterministic and must not
// depend on locale.
type Folder interface {
	Fold() string
}

// IStr is a case-insensitive string key. Two IStr keys match when their
// folded forms are equal; iteration still returns the original casing.
type IStr string

// Fold returns the Unicode case folding of s.
func (s IStr) Fold() string {
	return FoldString(string(s))
}

// FoldString applies the fold used by IStr. ASCII input takes a fast path
// that only allocates when an upper-case letter is present.
func FoldString(s string) string {
	ascii, upper := true, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
		if 'A' <= c && c <= 'Z' {
			upper = true
		}
	}
	if ascii {
		if !upper {
			return s
		}
		return strings.ToLower(s)
	}
	return cases.Fold().String(s)
}

// foldKey derives the lookup form of a key: its own Fold result for Folder
// keys and the key itself otherwise.
func foldKey[K ~string](key K) string {
	if f, ok := any(key).(Folder); ok {
		return f.Fold()
	}
	return string(key)
}
