package filters

import (
	"html"
	"strings"
)

type attribute struct {
	name  string
	value string
}

// element builds one HTML element. Attributes keep their insertion order and
// are always escaped; content is appended either escaped or verbatim.
type element struct {
	tag     string
	attrs   []attribute
	classes []string
	content strings.Builder
	void    bool
}

func newElement(tag string) *element {
	switch tag {
	case "img", "br", "hr", "input", "source":
		return &element{tag: tag, void: true}
	}
	return &element{tag: tag}
}

// set adds or replaces an attribute.
func (e *element) set(name, value string) *element {
	for i := range e.attrs {
		if e.attrs[i].name == name {
			e.attrs[i].value = value
			return e
		}
	}
	e.attrs = append(e.attrs, attribute{name: name, value: value})
	return e
}

func (e *element) setIf(name, value string) *element {
	if strings.TrimSpace(value) == "" {
		return e
	}
	return e.set(name, value)
}

func (e *element) addClass(classes ...string) *element {
	for _, class := range classes {
		for _, field := range strings.Fields(class) {
			if !e.hasClass(field) {
				e.classes = append(e.classes, field)
			}
		}
	}
	return e
}

func (e *element) removeClass(class string) *element {
	out := e.classes[:0]
	for _, existing := range e.classes {
		if existing != class {
			out = append(out, existing)
		}
	}
	e.classes = out
	return e
}

func (e *element) hasClass(class string) bool {
	for _, existing := range e.classes {
		if existing == class {
			return true
		}
	}
	return false
}

func (e *element) text(s string) *element {
	e.content.WriteString(html.EscapeString(s))
	return e
}

func (e *element) raw(s string) *element {
	e.content.WriteString(s)
	return e
}

func (e *element) String() string {
	var builder strings.Builder
	builder.WriteByte('<')
	builder.WriteString(e.tag)
	if len(e.classes) > 0 {
		builder.WriteString(` class="`)
		builder.WriteString(html.EscapeString(strings.Join(e.classes, " ")))
		builder.WriteByte('"')
	}
	for _, attr := range e.attrs {
		builder.WriteByte(' ')
		builder.WriteString(attr.name)
		builder.WriteString(`="`)
		builder.WriteString(html.EscapeString(attr.value))
		builder.WriteByte('"')
	}
	builder.WriteByte('>')
	if e.void {
		return builder.String()
	}
	builder.WriteString(e.content.String())
	builder.WriteString("</")
	builder.WriteString(e.tag)
	builder.WriteByte('>')
	return builder.String()
}
