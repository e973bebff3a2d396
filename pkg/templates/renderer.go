package templates

import "io"

// TemplateRenderer is what ElementRenderer needs from a template engine. Its
// method set follows github.com/goliatone/go-template, so either engine can
// back element rendering.
type TemplateRenderer interface {
	// Render dispatches to RenderString or RenderTemplate based on whether
	// name looks like template content.
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(content string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
