// Package datapath resolves key paths against data documents: trees of
// map[string]any, []any and scalar leaves as produced by encoding/json or
// yaml.v3.
package datapath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrKeyNotFound reports a mapping without the requested key.
	ErrKeyNotFound = errors.New("datapath: key not found")
	// ErrIndexNotFound reports a sequence without the requested position.
	ErrIndexNotFound = errors.New("datapath: index not found")
)

// Resolve walks keys one at a time. Mappings are indexed by key, sequences by
// numeric position. A non-numeric key applied to a sequence fans out over its
// elements and returns the collected results as a flattened sequence; elements
// lacking the key are skipped.
func Resolve(doc any, keys []string) (any, error) {
	if len(keys) == 0 {
		return doc, nil
	}
	return walk(doc, keys, 0)
}

func walk(current any, keys []string, depth int) (any, error) {
	for i := depth; i < len(keys); i++ {
		key := keys[i]
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[key]
			if !ok {
				return nil, keyNotFound(keys, i)
			}
			current = next
		case map[string]string:
			next, ok := typed[key]
			if !ok {
				return nil, keyNotFound(keys, i)
			}
			current = next
		case []any:
			if idx, ok := index(key); ok {
				if idx >= len(typed) {
					return nil, fmt.Errorf("%w: %d in %s (length %d)", ErrIndexNotFound, idx, joinPath(keys[:i]), len(typed))
				}
				current = typed[idx]
				continue
			}
			return fanOut(typed, keys, i)
		case []map[string]any:
			items := make([]any, len(typed))
			for idx, item := range typed {
				items[idx] = item
			}
			current = items
			i--
		default:
			return nil, keyNotFound(keys, i)
		}
	}
	return current, nil
}

func fanOut(items []any, keys []string, depth int) (any, error) {
	var (
		out   []any
		found bool
	)
	for _, item := range items {
		value, err := walk(item, keys, depth)
		if err != nil {
			continue
		}
		found = true
		if nested, ok := value.([]any); ok {
			out = append(out, nested...)
			continue
		}
		out = append(out, value)
	}
	if !found {
		return nil, keyNotFound(keys, depth)
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func index(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return idx, true
}

func keyNotFound(keys []string, at int) error {
	if at == 0 {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, keys[0])
	}
	return fmt.Errorf("%w: %q in %s", ErrKeyNotFound, keys[at], joinPath(keys[:at]))
}

func joinPath(keys []string) string {
	if len(keys) == 0 {
		return "document"
	}
	return strings.Join(keys, ".")
}

// IsMiss reports whether err is a path resolution miss.
func IsMiss(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, ErrIndexNotFound)
}
