// Package headers reads and writes MIME-style header blocks into a
// case-insensitive multidict, keeping every field in arrival order with the
// casing it arrived in.
package headers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"multidict/multidict"
	"multidict/storage"
)

// Header is the multidict a header block is parsed into.
type Header = multidict.MultiDict[storage.IStr, string]

// MalformedLineError reports a line that is neither a field nor a
// continuation of one.
type MalformedLineError struct {
	Line int // 1-based
	Text string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed header line %d: %q", e.Line, e.Text)
}

// Parse reads header fields from r up to the first empty line or EOF.
// Continuation lines starting with a space or tab are joined to the previous
// field's value with a single space.
func Parse(r io.Reader) (*Header, error) {
	return ParseWithOptions(r, storage.Options{})
}

// ParseWithOptions is Parse with explicit store options for the result.
func ParseWithOptions(r io.Reader, opts storage.Options) (*Header, error) {
	br := bufio.NewReader(r)
	h := multidict.WithOptions[storage.IStr, string](opts)

	var (
		name    storage.IStr
		value   strings.Builder
		pending bool
		lineNo  int
	)
	flush := func() {
		if pending {
			h.Add(name, value.String())
			value.Reset()
			pending = false
		}
	}

	for {
		raw, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header block: %w", err)
		}
		if raw == "" && err != nil {
			break
		}
		lineNo++
		line := strings.TrimRight(raw, "\r\n")
		if line == "" {
			break
		}

		if line[0] == ' ' || line[0] == '\t' {
			if !pending {
				return nil, &MalformedLineError{Line: lineNo, Text: line}
			}
			if cont := strings.TrimSpace(line); cont != "" {
				if value.Len() > 0 {
					value.WriteByte(' ')
				}
				value.WriteString(cont)
			}
		} else {
			flush()
			key, val, ok := strings.Cut(line, ":")
			key = strings.TrimSpace(key)
			if !ok || key == "" || strings.ContainsAny(key, " \t") {
				return nil, &MalformedLineError{Line: lineNo, Text: line}
			}
			name = storage.IStr(key)
			value.WriteString(strings.TrimSpace(val))
			pending = true
		}

		if err != nil {
			break
		}
	}
	flush()
	return h, nil
}

// Write emits every field of h as "Name: value\r\n" in order. It does not
// write the terminating empty line.
func Write(w io.Writer, h *Header) error {
	bw := bufio.NewWriter(w)
	for p, err := range h.Items().All() {
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(bw, "%s: %s\r\n", p.Key, p.Value); err != nil {
			return err
		}
	}
	return bw.Flush()
}
