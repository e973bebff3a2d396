package expr

import (
	"strconv"
	"strings"
	"unicode"
)

// Option is a single filter option. Positional options carry a synthesized
// key (o0, o1, ...) derived from their position in the option list.
type Option struct {
	Key        string
	Value      string
	Positional bool
}

// FilterInvocation is one step of a filter chain: `name:opt1,key=value`.
type FilterInvocation struct {
	Name    string
	Options []Option
}

// Option returns the value configured for key.
func (f FilterInvocation) Option(key string) (string, bool) {
	for i := len(f.Options) - 1; i >= 0; i-- {
		if f.Options[i].Key == key {
			return f.Options[i].Value, true
		}
	}
	return "", false
}

// Config flattens positional and named options into one configuration map.
// Later occurrences of the same key win.
func (f FilterInvocation) Config() map[string]string {
	if len(f.Options) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(f.Options))
	for _, opt := range f.Options {
		out[opt.Key] = opt.Value
	}
	return out
}

// Positional returns the positional option values in order.
func (f FilterInvocation) Positional() []string {
	var out []string
	for _, opt := range f.Options {
		if opt.Positional {
			out = append(out, opt.Value)
		}
	}
	return out
}

// TemplateVariable is a parsed `{path|filter:opts|...}` placeholder.
type TemplateVariable struct {
	Raw     string
	Path    []string
	Filters []FilterInvocation
}

// Token returns the placeholder exactly as it appears in the template.
func (v TemplateVariable) Token() string {
	return "{" + v.Raw + "}"
}

// BasePath joins the path keys with dots for display.
func (v TemplateVariable) BasePath() string {
	return strings.Join(v.Path, ".")
}

// Default returns the first `default` configured anywhere in the chain. The
// `default` filter also accepts its fallback as first positional option.
func (v TemplateVariable) Default() (string, bool) {
	for _, f := range v.Filters {
		if value, ok := f.Option("default"); ok {
			return value, true
		}
		if f.Name == "default" {
			if value, ok := f.Option("o0"); ok {
				return value, true
			}
		}
	}
	return "", false
}

// Parse converts a placeholder body (the text between the braces) into a
// TemplateVariable.
func Parse(raw string) (TemplateVariable, error) {
	if strings.TrimSpace(raw) == "" {
		return TemplateVariable{}, syntaxError(raw, "empty placeholder")
	}

	segments := splitChain(raw)
	base := segments[0]
	path, err := parsePath(base)
	if err != nil {
		return TemplateVariable{}, syntaxError(raw, "%s", err.Error())
	}

	variable := TemplateVariable{Raw: raw, Path: path}
	for _, segment := range segments[1:] {
		invocation, err := parseFilter(segment)
		if err != nil {
			return TemplateVariable{}, syntaxError(raw, "%s", err.Error())
		}
		variable.Filters = append(variable.Filters, invocation)
	}
	return variable, nil
}

// MustParse is Parse for statically known placeholders.
func MustParse(raw string) TemplateVariable {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// splitChain splits on first-level pipes. The base path keeps its exact text
// so it can be validated; filter segments are trimmed.
func splitChain(raw string) []string {
	head, tail, ok := SplitFirst(raw, '|')
	if !ok {
		return []string{raw}
	}
	out := []string{head}
	for {
		segment, rest, more := SplitFirst(tail, '|')
		out = append(out, strings.TrimSpace(segment))
		if !more {
			return out
		}
		tail = rest
	}
}

type parseErr string

func (e parseErr) Error() string { return string(e) }

func parseFilter(segment string) (FilterInvocation, error) {
	name, blob, hasOptions := SplitFirst(segment, ':')
	name = strings.TrimSpace(name)
	if name == "" {
		return FilterInvocation{}, parseErr("empty filter name")
	}
	if !isIdentifier(name) {
		return FilterInvocation{}, parseErr("invalid filter name " + strconv.Quote(name))
	}
	invocation := FilterInvocation{Name: name}
	if !hasOptions {
		return invocation, nil
	}

	for idx, part := range SplitQuoted(blob, ',') {
		key, value, named := SplitFirst(part, '=')
		if named {
			invocation.Options = append(invocation.Options, Option{
				Key:   strings.TrimSpace(key),
				Value: Unquote(value),
			})
			continue
		}
		invocation.Options = append(invocation.Options, Option{
			Key:        "o" + strconv.Itoa(idx),
			Value:      Unquote(part),
			Positional: true,
		})
	}
	return invocation, nil
}

// parsePath accepts `ident`, `ident.ident...` or `ident[ident][ident]...`.
func parsePath(base string) ([]string, error) {
	if isIdentifier(base) {
		return []string{base}, nil
	}

	if strings.Contains(base, ".") && !strings.ContainsAny(base, "[]") {
		keys := strings.Split(base, ".")
		for _, key := range keys {
			if !isIdentifier(key) {
				return nil, parseErr("invalid dot path " + strconv.Quote(base))
			}
		}
		return keys, nil
	}

	open := strings.IndexByte(base, '[')
	if open <= 0 || !isIdentifier(base[:open]) {
		return nil, parseErr("invalid base path " + strconv.Quote(base))
	}
	keys := []string{base[:open]}
	rest := base[open:]
	for rest != "" {
		if rest[0] != '[' {
			return nil, parseErr("invalid bracket path " + strconv.Quote(base))
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, parseErr("unclosed bracket in " + strconv.Quote(base))
		}
		key := rest[1:end]
		if !isIdentifier(key) {
			return nil, parseErr("invalid bracket key in " + strconv.Quote(base))
		}
		keys = append(keys, key)
		rest = rest[end+1:]
	}
	return keys, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
