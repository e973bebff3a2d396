package expr

import "strings"

// SplitQuoted splits text on delim while keeping quoted spans intact. A quote
// opens a span only at the start of a value (segment start or right after
// '=', ',' or ':'), so apostrophes inside plain words stay literal. Inside a
// span a backslash escapes the closing quote. Parts are trimmed and empty parts
// are dropped. Quotes are kept in the returned parts; see Unquote.
func SplitQuoted(text string, delim byte) []string {
	var (
		parts   []string
		current strings.Builder
		quote   byte
		prev    byte
	)

	flush := func() {
		if part := strings.TrimSpace(current.String()); part != "" {
			parts = append(parts, part)
		}
		current.Reset()
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case quote != 0:
			current.WriteByte(ch)
			if ch == quote && text[i-1] != '\\' {
				quote = 0
			}
		case (ch == '"' || ch == '\'') && opensValue(prev, delim):
			quote = ch
			current.WriteByte(ch)
		case ch == delim:
			flush()
			prev = 0
			continue
		default:
			current.WriteByte(ch)
		}
		if ch != ' ' && ch != '\t' {
			prev = ch
		}
	}
	flush()
	return parts
}

func opensValue(prev, delim byte) bool {
	switch prev {
	case 0, '=', ',', ':', delim:
		return true
	default:
		return false
	}
}

// SplitFirst cuts text at the first delim found outside a quoted span.
func SplitFirst(text string, delim byte) (string, string, bool) {
	var quote, prev byte
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case quote != 0:
			if ch == quote && text[i-1] != '\\' {
				quote = 0
			}
		case (ch == '"' || ch == '\'') && opensValue(prev, delim):
			quote = ch
		case ch == delim:
			return text[:i], text[i+1:], true
		}
		if ch != ' ' && ch != '\t' {
			prev = ch
		}
	}
	return text, "", false
}

// Unquote strips one pair of matching surrounding quotes and resolves escaped
// quote characters inside them. Unquoted text is returned trimmed.
func Unquote(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < 2 {
		return text
	}
	first, last := text[0], text[len(text)-1]
	if (first != '"' && first != '\'') || last != first {
		return text
	}
	inner := text[1 : len(text)-1]
	return strings.ReplaceAll(inner, `\`+string(first), string(first))
}
