package filters

import (
	"strings"

	"github.com/goliatone/go-richtext/pkg/datapath"
)

// ExpandPlaceholders replaces every `[path]` in template with the value found
// at path in data. Sequences contribute their first element; unresolved
// placeholders are removed. Keys in extra take precedence over data lookups.
func ExpandPlaceholders(template string, data any, extra map[string]string) string {
	if !strings.Contains(template, "[") {
		return template
	}
	var builder strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			builder.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open+1:], ']')
		if end <= 0 {
			if end < 0 {
				builder.WriteString(rest)
				break
			}
			// "[]" is kept as is.
			builder.WriteString(rest[:open+2])
			rest = rest[open+2:]
			continue
		}
		builder.WriteString(rest[:open])
		key := rest[open+1 : open+1+end]
		builder.WriteString(placeholderValue(key, data, extra))
		rest = rest[open+end+2:]
	}
	return builder.String()
}

func placeholderValue(key string, data any, extra map[string]string) string {
	if value, ok := extra[key]; ok {
		return value
	}
	if data == nil {
		return ""
	}
	value, err := datapath.First(data, key)
	if err != nil {
		return ""
	}
	return Stringify(value)
}
