// Package sanitize guards inputs that arrive from outside the process:
// documents posted over HTTP, MCP or a monitor feed, and document names used
// as storage keys.
package sanitize

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxDocumentSize is 1MB.
	DefaultMaxDocumentSize = 1 << 20
	// EnvMaxDocumentSize overrides the default limit.
	EnvMaxDocumentSize = "ARBOR_MAX_DOCUMENT_SIZE"
)

var (
	ErrTooLarge    = errors.New("document exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("document contains invalid UTF-8 sequences")
	ErrInvalidName = errors.New("invalid document name")
)

// Document enforces the size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return.
func Document(data []byte) ([]byte, error) {
	limit := MaxDocumentSize()
	if len(data) > limit {
		return nil, fmt.Errorf("%w: size=%d limit=%d", ErrTooLarge, len(data), limit)
	}
	if !utf8.Valid(data) {
		return nil, ErrInvalidUTF8
	}

	if bytes.IndexFunc(data, isUnsafeControl) < 0 {
		return data, nil
	}
	out := make([]byte, 0, len(data))
	for _, r := range string(data) {
		if !isUnsafeControl(r) {
			out = utf8.AppendRune(out, r)
		}
	}
	return out, nil
}

// Name validates a document name used as a storage key. Names are
// non-empty, at most 128 bytes, and cannot contain path separators, "..",
// or control characters.
func Name(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	case len(name) > 128:
		return "", fmt.Errorf("%w: longer than 128 bytes", ErrInvalidName)
	case strings.ContainsAny(name, `/\`), strings.Contains(name, ".."):
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return "", fmt.Errorf("%w: control characters", ErrInvalidName)
	}
	return name, nil
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

// MaxDocumentSize returns the effective limit.
func MaxDocumentSize() int {
	if val := os.Getenv(EnvMaxDocumentSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxDocumentSize
}
