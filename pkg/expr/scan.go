package expr

// Placeholder is one `{...}` occurrence found in a template. Start and End are
// byte offsets of the opening and one past the closing brace.
type Placeholder struct {
	Raw   string
	Start int
	End   int
}

// Scan finds every placeholder in template. Doubled braces are literal text
// and are skipped. A closing brace inside a quoted option value does not end
// the placeholder; when quotes never balance the first closing brace wins. An
// opening brace without a closing one is literal text.
func Scan(template string) []Placeholder {
	var out []Placeholder
	i := 0
	for i < len(template) {
		ch := template[i]
		if ch == '}' && i+1 < len(template) && template[i+1] == '}' {
			i += 2
			continue
		}
		if ch != '{' {
			i++
			continue
		}
		if i+1 < len(template) && template[i+1] == '{' {
			i += 2
			continue
		}

		end, restart := closingBrace(template, i+1)
		if restart >= 0 {
			i = restart
			continue
		}
		if end < 0 {
			break
		}
		out = append(out, Placeholder{
			Raw:   template[i+1 : end],
			Start: i,
			End:   end + 1,
		})
		i = end + 1
	}
	return out
}

// closingBrace returns the index of the brace closing a placeholder whose body
// starts at from. restart is set when another opening brace appears first.
func closingBrace(template string, from int) (end, restart int) {
	firstClose := -1
	var quote, prev byte
	for j := from; j < len(template); j++ {
		ch := template[j]
		if quote != 0 {
			if ch == quote && template[j-1] != '\\' {
				quote = 0
			}
			if ch == '}' && firstClose < 0 {
				firstClose = j
			}
			continue
		}
		switch {
		case ch == '"' || ch == '\'':
			if opensValue(prev, '|') {
				quote = ch
			}
		case ch == '{':
			return -1, j
		case ch == '}':
			return j, -1
		}
		if ch != ' ' && ch != '\t' {
			prev = ch
		}
	}
	return firstClose, -1
}
