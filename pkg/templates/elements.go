package templates

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-richtext/pkg/lookup"
)

// ErrUnknownElementType reports an element type without a template.
var ErrUnknownElementType = errors.New("templates: unknown element type")

// Element types rendered by the built-in templates.
const (
	TypeCard           = "card"
	TypeSlides         = "slides"
	TypeCarousel       = "carousel"
	TypeJumbotron      = "jumbotron"
	TypeIframe         = "iframe"
	TypeBanner         = "banner"
	TypeManifestViewer = "manifest_viewer"
	TypeDataObject     = "data_object"
	TypeVideo          = "video"
	TypeAudio          = "audio"
	TypeAcademicAbout  = "academic_about"
	TypeTeamGrid       = "team_grid"
	TypeJSModule       = "js_module"
)

var elementTypes = map[string]struct{}{
	TypeCard: {}, TypeSlides: {}, TypeCarousel: {}, TypeJumbotron: {}, TypeIframe: {},
	TypeBanner: {}, TypeManifestViewer: {}, TypeDataObject: {}, TypeVideo: {},
	TypeAudio: {}, TypeAcademicAbout: {}, TypeTeamGrid: {}, TypeJSModule: {},
}

// ElementTypes lists the supported element types, sorted.
func ElementTypes() []string {
	out := make([]string, 0, len(elementTypes))
	for name := range elementTypes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsElementType reports whether name is a supported element type.
func IsElementType(name string) bool {
	_, ok := elementTypes[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// ElementData is the context element templates are rendered with. Templates
// see it as `id`, `element`, `items`, `content`, `config` and `tokens`.
type ElementData struct {
	ID      string               `json:"id"`
	Element lookup.Element       `json:"element"`
	Items   []lookup.ElementItem `json:"items"`
	// Content is pre-rendered HTML, such as a formatted data object record.
	Content string            `json:"content,omitempty"`
	Config  map[string]any    `json:"config,omitempty"`
	Tokens  map[string]string `json:"tokens,omitempty"`
}

// ElementRenderer renders element descriptors. Template lookups go through
// the `elements.<type>` override first and fall back to "elements/<type>".
type ElementRenderer struct {
	renderer  TemplateRenderer
	overrides map[string]string
	tokens    map[string]string
}

// ElementOption customises an ElementRenderer.
type ElementOption func(*ElementRenderer)

// WithOverrides maps template keys (`elements.card`) to a template name or to
// inline template content.
func WithOverrides(overrides map[string]string) ElementOption {
	return func(r *ElementRenderer) {
		for key, value := range overrides {
			key = strings.TrimSpace(key)
			if key == "" || strings.TrimSpace(value) == "" {
				continue
			}
			r.overrides[key] = value
		}
	}
}

// WithThemeSettings applies the element overrides and tokens of a resolved
// theme.
func WithThemeSettings(settings ThemeSettings) ElementOption {
	return func(r *ElementRenderer) {
		WithOverrides(settings.Templates)(r)
		if len(settings.Tokens) > 0 {
			r.tokens = copyStrings(settings.Tokens)
		}
	}
}

// NewElementRenderer wraps renderer. A nil renderer gets an Engine over the
// embedded templates.
func NewElementRenderer(renderer TemplateRenderer, opts ...ElementOption) (*ElementRenderer, error) {
	if renderer == nil {
		engine, err := New()
		if err != nil {
			return nil, err
		}
		renderer = engine
	}
	r := &ElementRenderer{
		renderer:  renderer,
		overrides: make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Tokens returns the theme tokens the renderer was configured with.
func (r *ElementRenderer) Tokens() map[string]string {
	return copyStrings(r.tokens)
}

// RenderElement renders data with the template of data.Element.Type.
func (r *ElementRenderer) RenderElement(data ElementData) (string, error) {
	elementType := strings.ToLower(strings.TrimSpace(data.Element.Type))
	if elementType == "" {
		return "", fmt.Errorf("%w: element %q has no type", ErrUnknownElementType, data.Element.Name)
	}
	if data.Items == nil {
		data.Items = data.Element.Items
	}
	if data.Config == nil {
		data.Config = data.Element.Config
	}
	if data.Tokens == nil {
		data.Tokens = r.tokens
	}

	var (
		out string
		err error
	)
	if override, ok := r.overrides["elements."+elementType]; ok {
		if isTemplateContent(override) {
			out, err = r.renderer.RenderString(override, data)
		} else {
			out, err = r.renderer.RenderTemplate(override, data)
		}
	} else {
		if !IsElementType(elementType) {
			return "", fmt.Errorf("%w: %q", ErrUnknownElementType, elementType)
		}
		out, err = r.renderer.RenderTemplate("elements/"+elementType, data)
	}
	if err != nil {
		return "", fmt.Errorf("templates: render %s element %q: %w", elementType, data.Element.Name, err)
	}
	return strings.TrimSpace(out), nil
}

func copyStrings(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
