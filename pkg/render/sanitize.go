package render

import "strings"

// blankFillers are the single non-breaking space forms an empty pair may hold.
var blankFillers = []string{"&nbsp;", "&#160;", "\u00a0"}

// SanitizeHTML removes attribute-less empty element pairs (`<p></p>`,
// `<span>&nbsp;</span>`) until none remain, so removals that expose new empty
// parents are handled too.
func SanitizeHTML(content string) string {
	for {
		next, changed := stripEmptyPairs(content)
		if !changed {
			return next
		}
		content = next
	}
}

func stripEmptyPairs(content string) (string, bool) {
	if !strings.Contains(content, "></") {
		return content, false
	}
	var builder strings.Builder
	builder.Grow(len(content))
	changed := false
	for i := 0; i < len(content); {
		if content[i] == '<' {
			if end, ok := emptyPairEnd(content, i); ok {
				i = end
				changed = true
				continue
			}
		}
		builder.WriteByte(content[i])
		i++
	}
	return builder.String(), changed
}

// emptyPairEnd reports where the empty pair starting at `at` ends.
func emptyPairEnd(content string, at int) (int, bool) {
	j := at + 1
	for j < len(content) && isWordByte(content[j]) {
		j++
	}
	if j == at+1 || j >= len(content) || content[j] != '>' {
		return 0, false
	}
	name := content[at+1 : j]
	j++
	for _, filler := range blankFillers {
		if strings.HasPrefix(content[j:], filler) {
			j += len(filler)
			break
		}
	}
	closing := "</" + name + ">"
	if !strings.HasPrefix(content[j:], closing) {
		return 0, false
	}
	return j + len(closing), true
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
