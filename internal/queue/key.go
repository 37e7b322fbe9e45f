package queue

import (
	"path/filepath"
	"strings"
)

// keyFieldCount is the number of underscore-separated fields in a
// well-formed queue entry key.
const keyFieldCount = 3

// Key is a parsed queue entry key of the form {group}_{status}_{filename}.
type Key struct {
	Group    string
	Status   string
	Filename string
}

// ParseKey parses a raw store key. The second return value is false for
// malformed keys (wrong field count); callers skip those, they are never
// an error.
func ParseKey(raw string) (Key, bool) {
	parts := strings.Split(raw, "_")
	if len(parts) != keyFieldCount {
		return Key{}, false
	}
	return Key{
		Group:    parts[0],
		Status:   parts[1],
		Filename: parts[2],
	}, true
}

// Ext returns the filename extension in lower case without the leading dot,
// e.g. "tiff" for "x.TIFF". Empty when the filename has no extension.
func (k Key) Ext() string {
	ext := filepath.Ext(k.Filename)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
