// Package render evaluates `{path|filter:opts}` template strings against a
// data document.
package render

import (
	"context"
	"errors"
	"html"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-richtext/pkg/datapath"
	"github.com/goliatone/go-richtext/pkg/expr"
	"github.com/goliatone/go-richtext/pkg/filters"
	"github.com/goliatone/go-richtext/pkg/lookup"
)

// Renderer substitutes template variables. A Renderer is immutable after
// construction and safe for concurrent use as long as its collaborators are.
type Renderer struct {
	registry   *filters.Registry
	showErrors bool
	separator  string
	language   string
	choices    lookup.ChoiceResolver
	pages      lookup.PageResolver
	records    lookup.RecordLinker
	tokens     map[string]string
	favicon    string
	relative   int
	now        func() time.Time
	logger     *slog.Logger
}

// New constructs a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		registry:  filters.NewRegistry(),
		separator: DefaultSeparator,
		now:       time.Now,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render substitutes every variable of template with its rendered value and
// strips the empty elements left behind. It never fails: unresolved
// variables fall back to their default, an error notice or "".
func (r *Renderer) Render(template string, data any) string {
	return r.RenderContext(context.Background(), template, data)
}

// RenderContext is Render with a context handed to blocking collaborators.
func (r *Renderer) RenderContext(ctx context.Context, template string, data any) string {
	template = html.UnescapeString(template)
	placeholders := expr.Scan(template)
	if len(placeholders) == 0 {
		return SanitizeHTML(template)
	}

	env := r.env(ctx, data)
	var builder strings.Builder
	last := 0
	for _, placeholder := range placeholders {
		builder.WriteString(template[last:placeholder.Start])
		builder.WriteString(r.substitute(placeholder.Raw, data, env))
		last = placeholder.End
	}
	builder.WriteString(template[last:])
	return SanitizeHTML(builder.String())
}

// RenderVariable evaluates one parsed variable without any fallback and
// returns the resolution or filter error as is.
func (r *Renderer) RenderVariable(ctx context.Context, variable expr.TemplateVariable, data any) (string, error) {
	chain, err := r.registry.BuildChain(variable.Filters, r.env(ctx, data))
	if err != nil {
		return "", err
	}
	return r.evaluate(variable, chain, data)
}

// Variables parses every placeholder of template. Malformed placeholders are
// skipped and reported through the joined error.
func (r *Renderer) Variables(template string) ([]expr.TemplateVariable, error) {
	template = html.UnescapeString(template)
	var (
		variables []expr.TemplateVariable
		errs      []error
	)
	for _, placeholder := range expr.Scan(template) {
		variable, err := expr.Parse(placeholder.Raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		variables = append(variables, variable)
	}
	return variables, errors.Join(errs...)
}

func (r *Renderer) env(ctx context.Context, data any) *filters.Env {
	return &filters.Env{
		Context:        ctx,
		Data:           data,
		Language:       r.language,
		Choices:        r.choices,
		Pages:          r.pages,
		Records:        r.records,
		Tokens:         r.tokens,
		FaviconService: r.favicon,
		RelativeDays:   r.relative,
		Now:            r.now,
	}
}

func (r *Renderer) substitute(raw string, data any, env *filters.Env) string {
	variable, err := expr.Parse(raw)
	if err != nil {
		r.logger.Debug("render: malformed variable", "variable", raw, "error", err)
		return r.errorText(err)
	}

	chain, err := r.registry.BuildChain(variable.Filters, env)
	if err != nil {
		r.logger.Debug("render: filter configuration", "variable", raw, "error", err)
		return ErrorNotice(err.Error())
	}

	out, err := r.evaluate(variable, chain, data)
	if err == nil {
		return out
	}
	r.logger.Debug("render: variable fallback", "variable", raw, "error", err)
	if fallback, ok := variable.Default(); ok && (datapath.IsMiss(err) || errors.Is(err, filters.ErrFilterFailed)) {
		return r.renderDefault(chain, fallback)
	}
	return r.errorText(err)
}

// renderDefault passes the fallback through the chain, keeping the raw
// fallback when a filter rejects it.
func (r *Renderer) renderDefault(chain filters.Chain, fallback string) string {
	out, keep, err := chain.Apply(fallback)
	if err != nil || !keep {
		return fallback
	}
	return out
}

func (r *Renderer) evaluate(variable expr.TemplateVariable, chain filters.Chain, data any) (string, error) {
	value, err := datapath.Resolve(data, variable.Path)
	if err != nil {
		return "", err
	}

	items, isList := sequence(value)
	if !isList {
		return r.applyScalar(chain, value)
	}
	if limit := chain.Limit(); limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	if chain.WholeList() {
		return r.applyScalar(chain, items)
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		if len(chain) == 0 {
			parts = append(parts, filters.Stringify(item))
			continue
		}
		out, keep, err := chain.Apply(item)
		if err != nil {
			return "", err
		}
		if keep {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, r.separator), nil
}

func (r *Renderer) applyScalar(chain filters.Chain, value any) (string, error) {
	out, keep, err := chain.Apply(value)
	if err != nil {
		return "", err
	}
	if !keep {
		return "", nil
	}
	return out, nil
}

func (r *Renderer) errorText(err error) string {
	if !r.showErrors {
		return ""
	}
	return ErrorNotice(err.Error())
}

// ErrorNotice formats msg as the inline alert shown in place of a variable.
func ErrorNotice(msg string) string {
	return `<div class="alert alert-danger" role="alert">` + html.EscapeString(msg) + `</div>`
}

func sequence(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}
