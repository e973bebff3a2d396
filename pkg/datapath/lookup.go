package datapath

import "strings"

// Split parses a free-form path mixing dots and brackets (`a.b[0].c`,
// `a[b][c]`) into keys. Empty segments are dropped.
func Split(path string) []string {
	replacer := strings.NewReplacer("[", ".", "]", "")
	clean := strings.Trim(replacer.Replace(strings.TrimSpace(path)), ".")
	if clean == "" {
		return nil
	}
	parts := strings.Split(clean, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Lookup resolves a free-form path against doc. An exact key match on a
// top-level mapping wins over nested traversal, so flattened keys such as
// "geo.lat" keep working.
func Lookup(doc any, path string) (any, error) {
	if m, ok := doc.(map[string]any); ok {
		if v, exists := m[path]; exists {
			return v, nil
		}
	}
	keys := Split(path)
	if len(keys) == 0 {
		return nil, keyNotFound([]string{path}, 0)
	}
	return Resolve(doc, keys)
}

// First resolves path and, when the result is a sequence, returns its first
// element.
func First(doc any, path string) (any, error) {
	value, err := Lookup(doc, path)
	if err != nil {
		return nil, err
	}
	if items, ok := value.([]any); ok {
		if len(items) == 0 {
			return nil, ErrIndexNotFound
		}
		return items[0], nil
	}
	return value, nil
}
