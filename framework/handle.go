// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package framework

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/juju/errors"
)

var validKind = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`).MatchString

// Handle is a hierarchical identity for a stateful object. The path
// rendered by walking parent links to the root addresses both the
// object's snapshot in the notebook and its events in the dispatch
// registry, so it must be reproduced identically on every process
// invocation.
type Handle struct {
	parent *Handle
	kind   string
	key    string
}

// NewHandle returns a handle for the given kind and key, parented on
// parent; parent may be nil for a root handle, and key may be empty.
func NewHandle(parent *Handle, kind, key string) Handle {
	return Handle{parent: parent, kind: kind, key: key}
}

// Child returns a handle for kind and key whose parent is h.
func (h Handle) Child(kind, key string) Handle {
	parent := h
	return Handle{parent: &parent, kind: kind, key: key}
}

// Parent returns the parent handle, or nil for a root handle.
func (h Handle) Parent() *Handle {
	return h.parent
}

// Kind returns the handle's kind.
func (h Handle) Kind() string {
	return h.kind
}

// Key returns the handle's key, which may be empty.
func (h Handle) Key() string {
	return h.key
}

// Path renders the handle as a string, joining kind[key] segments from
// the root with "/". Two handles are equal exactly when their paths are
// equal.
func (h Handle) Path() string {
	var segments []string
	for cur := &h; cur != nil; cur = cur.parent {
		segment := cur.kind
		if cur.key != "" {
			segment += "[" + escapeKey(cur.key) + "]"
		}
		segments = append(segments, segment)
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "/")
}

// String implements fmt.Stringer.
func (h Handle) String() string {
	return h.Path()
}

// escapeKey backslash-escapes the characters that are structural in a
// rendered path, so that arbitrary keys round-trip through ParseHandle.
func escapeKey(key string) string {
	var sb strings.Builder
	for i := 0; i < len(key); i++ {
		switch c := key[i]; c {
		case '\\', '/', '[', ']':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// ParseHandle is the inverse of Path. The returned error satisfies
// errors.Is against ErrMalformedHandle when path cannot be parsed.
func ParseHandle(path string) (Handle, error) {
	malformed := func(format string, args ...interface{}) (Handle, error) {
		detail := fmt.Sprintf(format, args...)
		return Handle{}, fmt.Errorf("handle path %q: %s%w", path, detail, errors.Hide(ErrMalformedHandle))
	}
	if path == "" {
		return malformed("empty path")
	}
	var parent *Handle
	i := 0
	for i < len(path) {
		start := i
		for i < len(path) && path[i] != '[' && path[i] != '/' {
			i++
		}
		kind := path[start:i]
		if !validKind(kind) {
			return malformed("invalid kind %q", kind)
		}
		var key string
		if i < len(path) && path[i] == '[' {
			i++
			var sb strings.Builder
			closed := false
			for i < len(path) {
				c := path[i]
				if c == '\\' {
					if i+1 >= len(path) {
						return malformed("truncated escape in key")
					}
					sb.WriteByte(path[i+1])
					i += 2
					continue
				}
				if c == ']' {
					closed = true
					i++
					break
				}
				sb.WriteByte(c)
				i++
			}
			if !closed {
				return malformed("unterminated key")
			}
			key = sb.String()
			if key == "" {
				return malformed("empty key")
			}
		}
		h := Handle{parent: parent, kind: kind, key: key}
		parent = &h
		if i < len(path) {
			if path[i] != '/' {
				return malformed("unexpected %q after key", string(path[i]))
			}
			i++
			if i == len(path) {
				return malformed("trailing separator")
			}
		}
	}
	return *parent, nil
}
