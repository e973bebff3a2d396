// Package markup rewrites the bracket directives of rich text (`[[start_code]]`,
// `[[start_block]]`, `[[toc]]`, `[[element|name]]`, links) into HTML.
//
// PreRender runs five passes in order: code blocks, containers and cells,
// table of contents, UI elements, links. Each pass is bounded by
// MaxIterations rewrites; StructuralError and IterationError abort the call.
package markup

import (
	"context"
	"io"
	"log/slog"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-richtext/pkg/lookup"
	"github.com/goliatone/go-richtext/pkg/render"
	"github.com/goliatone/go-richtext/pkg/templates"
)

// MaxIterations is the default number of rewrites a single pass may perform.
const MaxIterations = 50

// DefaultORCIDIcon is the icon shown in front of ORCID links.
const DefaultORCIDIcon = "/static/images/orcid.svg"

// ExpressionRenderer formats data object records.
type ExpressionRenderer interface {
	RenderContext(ctx context.Context, template string, data any) string
}

// ElementRenderer renders resolved UI elements.
type ElementRenderer interface {
	RenderElement(data templates.ElementData) (string, error)
}

// Option customises a PreRenderer.
type Option func(*PreRenderer)

// PreRenderer holds the collaborators of the passes. It keeps no per-call
// state and can be shared between goroutines when its collaborators can.
type PreRenderer struct {
	maxIterations int
	elements      lookup.ElementResolver
	pages         lookup.PageResolver
	files         lookup.FileResolver
	records       lookup.RecordFetcher
	expressions   ExpressionRenderer
	renderer      ElementRenderer
	selector      theme.ThemeSelector
	themeName     string
	themeVariant  string
	minify        bool
	sanitizeData  bool
	orcidIcon     string
	tocTitle      string
	backToTop     string
	logger        *slog.Logger
}

// New constructs a PreRenderer. The default element renderer uses the
// embedded templates with the overrides of the selected theme, if any.
func New(opts ...Option) (*PreRenderer, error) {
	p := &PreRenderer{
		maxIterations: MaxIterations,
		orcidIcon:     DefaultORCIDIcon,
		tocTitle:      "Table of Contents",
		backToTop:     "Back to top",
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	settings, err := templates.SelectTheme(p.selector, p.themeName, p.themeVariant)
	if err != nil {
		return nil, err
	}
	if p.renderer == nil {
		elements, err := templates.NewElementRenderer(nil, templates.WithThemeSettings(settings))
		if err != nil {
			return nil, err
		}
		p.renderer = elements
	}
	if p.expressions == nil {
		p.expressions = render.New(render.WithTokens(settings.Tokens), render.WithLogger(p.logger))
	}
	return p, nil
}

// WithMaxIterations overrides MaxIterations; values below one are ignored.
func WithMaxIterations(n int) Option {
	return func(p *PreRenderer) {
		if n > 0 {
			p.maxIterations = n
		}
	}
}

// WithElements configures the UI element collaborator.
func WithElements(elements lookup.ElementResolver) Option {
	return func(p *PreRenderer) {
		p.elements = elements
	}
}

// WithPages configures the collaborator behind [[page|...]] and [[url|...]].
func WithPages(pages lookup.PageResolver) Option {
	return func(p *PreRenderer) {
		p.pages = pages
	}
}

// WithFiles configures the collaborator behind [[file|...]] and [[figure|...]].
func WithFiles(files lookup.FileResolver) Option {
	return func(p *PreRenderer) {
		p.files = files
	}
}

// WithRecords configures the data source of data_object elements.
func WithRecords(records lookup.RecordFetcher) Option {
	return func(p *PreRenderer) {
		p.records = records
	}
}

// WithRenderer sets the expression renderer used for data object records.
func WithRenderer(renderer ExpressionRenderer) Option {
	return func(p *PreRenderer) {
		if renderer != nil {
			p.expressions = renderer
		}
	}
}

// WithElementRenderer replaces the template based element renderer. Theme
// selection does not apply to a replaced renderer.
func WithElementRenderer(renderer ElementRenderer) Option {
	return func(p *PreRenderer) {
		if renderer != nil {
			p.renderer = renderer
		}
	}
}

// WithThemeSelector selects the theme whose `elements.<type>` templates and
// tokens the default element renderer uses.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(p *PreRenderer) {
		p.selector = selector
		p.themeName = strings.TrimSpace(name)
		p.themeVariant = strings.TrimSpace(variant)
	}
}

// WithMinify minifies the final fragment.
func WithMinify(enabled bool) Option {
	return func(p *PreRenderer) {
		p.minify = enabled
	}
}

// WithSanitizedDataObjects passes formatted data object records through a
// user generated content policy before embedding them.
func WithSanitizedDataObjects(enabled bool) Option {
	return func(p *PreRenderer) {
		p.sanitizeData = enabled
	}
}

// WithORCIDIcon overrides DefaultORCIDIcon.
func WithORCIDIcon(src string) Option {
	return func(p *PreRenderer) {
		if src = strings.TrimSpace(src); src != "" {
			p.orcidIcon = src
		}
	}
}

// WithTOCTitle overrides the heading of the table of contents.
func WithTOCTitle(title string) Option {
	return func(p *PreRenderer) {
		p.tocTitle = title
	}
}

// WithBackToTopLabel overrides the label of back_to_top links.
func WithBackToTopLabel(label string) Option {
	return func(p *PreRenderer) {
		p.backToTop = label
	}
}

// WithLogger routes debug output about the passes.
func WithLogger(logger *slog.Logger) Option {
	return func(p *PreRenderer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// anchor is a titled block registered for the table of contents.
type anchor struct {
	ID    string
	Title string
}

// PreRender rewrites every directive of text. Text without directives is
// returned unchanged.
func (p *PreRenderer) PreRender(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	out, err := p.renderCode(text)
	if err != nil {
		return "", err
	}
	out, anchors, err := p.renderContainers(out)
	if err != nil {
		return "", err
	}
	if out, err = p.renderTOC(out, anchors); err != nil {
		return "", err
	}
	if out, err = p.renderElements(ctx, out); err != nil {
		return "", err
	}
	if out, err = p.renderLinks(ctx, out); err != nil {
		return "", err
	}
	if p.minify {
		out = minifyHTML(out)
	}
	return out, nil
}

func (p *PreRenderer) budget(pass string) *budget {
	return &budget{pass: pass, limit: p.maxIterations}
}

func (p *PreRenderer) debug(pass string, b *budget) {
	p.logger.Debug("markup: pass complete", "pass", pass, "rewrites", b.used)
}
