// Package richtext wires the expression renderer and the markup pre-renderer
// behind one entry point.
//
//	engine, err := richtext.New(richtext.WithCatalog(catalog))
//	html, err := engine.PreRender(ctx, body)
//	title := engine.Render("{title|upper}", record)
package richtext

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-richtext/pkg/config"
	"github.com/goliatone/go-richtext/pkg/filters"
	"github.com/goliatone/go-richtext/pkg/lookup"
	"github.com/goliatone/go-richtext/pkg/markup"
	"github.com/goliatone/go-richtext/pkg/render"
	"github.com/goliatone/go-richtext/pkg/templates"
)

// Config aliases config.Config for callers that only import the root package.
type Config = config.Config

// Option customises an Engine.
type Option func(*builder)

type builder struct {
	cfg         config.Config
	catalog     *lookup.Catalog
	registry    *filters.Registry
	selector    theme.ThemeSelector
	logger      *slog.Logger
	renderOpts  []render.Option
	markupOpts  []markup.Option
	selectorSet bool
}

// WithConfig replaces config.Default.
func WithConfig(cfg config.Config) Option {
	return func(b *builder) {
		b.cfg = cfg
	}
}

// WithCatalog registers catalog as every collaborator: choice lists, pages,
// files, UI elements and data sources.
func WithCatalog(catalog *lookup.Catalog) Option {
	return func(b *builder) {
		b.catalog = catalog
	}
}

// WithRegistry swaps the filter registry.
func WithRegistry(registry *filters.Registry) Option {
	return func(b *builder) {
		b.registry = registry
	}
}

// WithThemeSelector overrides the selector loaded from the config manifest.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(b *builder) {
		b.selector = selector
		b.selectorSet = true
	}
}

// WithLogger routes debug output of both renderers.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRenderOptions appends render options after the configured ones.
func WithRenderOptions(opts ...render.Option) Option {
	return func(b *builder) {
		b.renderOpts = append(b.renderOpts, opts...)
	}
}

// WithMarkupOptions appends markup options after the configured ones.
func WithMarkupOptions(opts ...markup.Option) Option {
	return func(b *builder) {
		b.markupOpts = append(b.markupOpts, opts...)
	}
}

// Engine renders template expressions and rich text with shared settings.
type Engine struct {
	renderer  *render.Renderer
	prerender *markup.PreRenderer
}

// New assembles an Engine. Record formatting inside data_object elements
// uses the same expression renderer as Render.
func New(opts ...Option) (*Engine, error) {
	b := &builder{
		cfg:    config.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	if !b.selectorSet {
		selector, err := b.cfg.ThemeSelector()
		if err != nil {
			return nil, err
		}
		b.selector = selector
	}
	settings, err := templates.SelectTheme(b.selector, b.cfg.Theme.Name, b.cfg.Theme.Variant)
	if err != nil {
		return nil, err
	}

	renderOpts := append(b.cfg.RenderOptions(),
		render.WithTokens(settings.Tokens),
		render.WithLogger(b.logger),
	)
	if b.registry != nil {
		renderOpts = append(renderOpts, render.WithRegistry(b.registry))
	}
	if b.catalog != nil {
		renderOpts = append(renderOpts,
			render.WithChoices(b.catalog),
			render.WithPages(b.catalog),
			render.WithRecords(b.catalog),
		)
	}
	renderer := render.New(append(renderOpts, b.renderOpts...)...)

	markupOpts := append(b.cfg.MarkupOptions(b.selector),
		markup.WithRenderer(renderer),
		markup.WithLogger(b.logger),
	)
	if b.catalog != nil {
		markupOpts = append(markupOpts,
			markup.WithElements(b.catalog),
			markup.WithPages(b.catalog),
			markup.WithFiles(b.catalog),
			markup.WithRecords(b.catalog),
		)
	}
	prerender, err := markup.New(append(markupOpts, b.markupOpts...)...)
	if err != nil {
		return nil, err
	}
	return &Engine{renderer: renderer, prerender: prerender}, nil
}

// Render substitutes the variables of template with values from data.
func (e *Engine) Render(template string, data any) string {
	return e.renderer.Render(template, data)
}

// RenderContext is Render with a context for blocking collaborators.
func (e *Engine) RenderContext(ctx context.Context, template string, data any) string {
	return e.renderer.RenderContext(ctx, template, data)
}

// PreRender rewrites the directives of rich text into HTML.
func (e *Engine) PreRender(ctx context.Context, text string) (string, error) {
	return e.prerender.PreRender(ctx, text)
}

// Renderer exposes the underlying expression renderer.
func (e *Engine) Renderer() *render.Renderer {
	return e.renderer
}

// IsStructuralError reports whether err comes from unbalanced or malformed
// block and cell directives.
func IsStructuralError(err error) bool {
	return errors.Is(err, markup.ErrStructuralTag)
}

// IsIterationLimit reports whether a pre-render pass hit its rewrite ceiling.
func IsIterationLimit(err error) bool {
	return errors.Is(err, markup.ErrIterationLimit)
}

// EmbeddedTemplates exposes the built-in UI element templates so callers can
// copy or extend them.
func EmbeddedTemplates() fs.FS {
	return templates.ElementsFS()
}
