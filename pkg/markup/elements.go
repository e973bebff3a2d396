package markup

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-richtext/internal/slug"
	"github.com/goliatone/go-richtext/pkg/lookup"
	"github.com/goliatone/go-richtext/pkg/render"
	"github.com/goliatone/go-richtext/pkg/templates"
)

var (
	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy
)

func ugcSanitizer() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		ugcPolicy = policy
	})
	return ugcPolicy
}

// renderElements replaces [[element|name]] and the type-prefixed legacy
// tokens. Scanning resumes where the element was inserted, so directives
// produced by an element are rendered too and count against the budget.
func (p *PreRenderer) renderElements(ctx context.Context, text string) (string, error) {
	b := p.budget(PassElements)
	from := 0
	for {
		tok, ok := next(text, from, KindElement)
		if !ok {
			break
		}
		if err := b.spend(); err != nil {
			return "", err
		}
		replacement, err := p.element(ctx, tok, b.used)
		if err != nil {
			return "", err
		}
		text = text[:tok.Start] + replacement + text[tok.End:]
		from = tok.Start
	}
	p.debug(PassElements, b)
	return text, nil
}

// element renders one token. Lookup and template failures become inline
// notices; only context cancellation aborts the pass.
func (p *PreRenderer) element(ctx context.Context, tok Token, n int) (string, error) {
	name := strings.TrimSpace(html.UnescapeString(tok.Params))
	if tok.Head == "figure" {
		return p.figure(ctx, name)
	}
	if p.elements == nil {
		return render.ErrorNotice(fmt.Sprintf("UI element %q cannot be resolved", name)), nil
	}

	element, err := p.elements.ResolveElement(ctx, name)
	if err != nil {
		if isCanceled(err) {
			return "", err
		}
		p.logger.Debug("markup: element lookup failed", "element", name, "error", err)
		if errors.Is(err, lookup.ErrNotFound) {
			return render.ErrorNotice(fmt.Sprintf("UI element %q not found", name)), nil
		}
		return render.ErrorNotice(err.Error()), nil
	}
	if legacy := legacyElementTypes[tok.Head]; legacy != "" {
		element.Type = legacy
	}

	data := templates.ElementData{
		ID:      fmt.Sprintf("element-%s-%d", slug.Make(name), n),
		Element: element,
	}
	if strings.EqualFold(element.Type, templates.TypeDataObject) {
		content, err := p.dataObject(ctx, element)
		if err != nil {
			if isCanceled(err) {
				return "", err
			}
			p.logger.Debug("markup: data object failed", "element", name, "error", err)
			return render.ErrorNotice(err.Error()), nil
		}
		data.Content = content
	}

	out, err := p.renderer.RenderElement(data)
	if err != nil {
		p.logger.Debug("markup: element template failed", "element", name, "error", err)
		return render.ErrorNotice(fmt.Sprintf("UI element %q could not be rendered", name)), nil
	}
	return out, nil
}

func (p *PreRenderer) dataObject(ctx context.Context, element lookup.Element) (string, error) {
	object := element.DataObject
	if object == nil {
		return "", fmt.Errorf("data object %q has no data source", element.Name)
	}
	if p.records == nil {
		return "", fmt.Errorf("data object %q: no record source configured", element.Name)
	}
	record, err := p.records.FetchRecord(ctx, object.SearchConfig, object.ObjectID)
	if err != nil {
		if isCanceled(err) {
			return "", err
		}
		return "", fmt.Errorf("data object %q: record %s/%s: %w", element.Name, object.SearchConfig, object.ObjectID, err)
	}
	content := p.expressions.RenderContext(ctx, object.Expression, record)
	if p.sanitizeData {
		content = ugcSanitizer().Sanitize(content)
	}
	return content, nil
}

func (p *PreRenderer) figure(ctx context.Context, id string) (string, error) {
	if p.files == nil {
		return unresolved("figure", id), nil
	}
	link, err := p.files.ResolveFile(ctx, id)
	if err != nil {
		if isCanceled(err) {
			return "", err
		}
		return unresolved("figure", id), nil
	}
	var b strings.Builder
	b.WriteString(`<figure class="figure"><img class="figure-img img-fluid" src="` + html.EscapeString(link.URL) + `"`)
	b.WriteString(` alt="` + html.EscapeString(firstNonEmpty(link.Title, id)) + `">`)
	if link.Title != "" {
		b.WriteString(`<figcaption class="figure-caption">` + html.EscapeString(link.Title) + `</figcaption>`)
	}
	b.WriteString(`</figure>`)
	return b.String(), nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
