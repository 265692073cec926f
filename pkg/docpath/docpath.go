// Package docpath builds slash-separated hierarchical keys for cache
// entries and notification channels. Every segment is validated before a
// key is issued so that a blank college or department can never produce a
// lookup against the wrong subtree.
package docpath

import (
	"fmt"
	"strings"
)

const separator = "/"

// Builder accumulates validated path segments.
type Builder struct {
	segments []string
	err      error
}

// New starts a path with the provided root segment.
func New(root string) *Builder {
	b := &Builder{}
	return b.Child(root)
}

// Child appends one segment, validating it.
func (b *Builder) Child(segment string) *Builder {
	if b.err != nil {
		return b
	}
	trimmed := strings.TrimSpace(segment)
	if trimmed == "" {
		b.err = fmt.Errorf("docpath: empty segment after %q", b.partial())
		return b
	}
	if strings.Contains(trimmed, separator) {
		b.err = fmt.Errorf("docpath: segment %q contains separator", trimmed)
		return b
	}
	b.segments = append(b.segments, trimmed)
	return b
}

// String returns the built key, or an error if any segment was invalid.
func (b *Builder) String() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return strings.Join(b.segments, separator), nil
}

// MustString panics on an invalid path. Reserved for compile-time-constant
// paths in wiring code.
func (b *Builder) MustString() string {
	s, err := b.String()
	if err != nil {
		panic(err)
	}
	return s
}

func (b *Builder) partial() string {
	return strings.Join(b.segments, separator)
}

// Faculty returns the canonical key for a faculty member document.
func Faculty(college, department, scholarID string) (string, error) {
	return New("colleges").Child(college).
		Child("departments").Child(department).
		Child("faculty").Child(scholarID).
		String()
}

// Department returns the canonical key for a department subtree.
func Department(college, department string) (string, error) {
	return New("colleges").Child(college).
		Child("departments").Child(department).
		String()
}
