package markup

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/goliatone/go-richtext/pkg/lookup"
)

var orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[0-9X]$`)

// renderLinks replaces [[file|...]], [[page|...]], [[url|...]] and
// [[orcid|...]]. Link output never contains directives, so scanning continues
// after each replacement.
func (p *PreRenderer) renderLinks(ctx context.Context, text string) (string, error) {
	b := p.budget(PassLinks)
	from := 0
	for {
		tok, ok := next(text, from, KindLink)
		if !ok {
			break
		}
		if err := b.spend(); err != nil {
			return "", err
		}
		replacement, err := p.link(ctx, tok)
		if err != nil {
			return "", err
		}
		text = text[:tok.Start] + replacement + text[tok.End:]
		from = tok.Start + len(replacement)
	}
	p.debug(PassLinks, b)
	return text, nil
}

func (p *PreRenderer) link(ctx context.Context, tok Token) (string, error) {
	id := strings.TrimSpace(html.UnescapeString(tok.Params))
	switch tok.Head {
	case LinkORCID:
		return p.orcid(id), nil
	case LinkFile:
		return p.resolved(ctx, tok.Head, id, p.fileLink, func(link lookup.Link) string {
			return `<a class="file-link" href="` + html.EscapeString(link.URL) + `" target="_blank" rel="noopener noreferrer">` +
				html.EscapeString(firstNonEmpty(link.Title, id)) + `</a>`
		})
	case LinkPage:
		return p.resolved(ctx, tok.Head, id, p.pageLink, func(link lookup.Link) string {
			return `<a class="internal-link" href="` + html.EscapeString(link.URL) + `">` +
				html.EscapeString(firstNonEmpty(link.Title, id)) + `</a>`
		})
	default:
		return p.resolved(ctx, tok.Head, id, p.pageLink, func(link lookup.Link) string {
			return html.EscapeString(link.URL)
		})
	}
}

func (p *PreRenderer) fileLink(ctx context.Context, id string) (lookup.Link, error) {
	if p.files == nil {
		return lookup.Link{}, lookup.ErrNotFound
	}
	return p.files.ResolveFile(ctx, id)
}

func (p *PreRenderer) pageLink(ctx context.Context, id string) (lookup.Link, error) {
	if p.pages == nil {
		return lookup.Link{}, lookup.ErrNotFound
	}
	return p.pages.ResolvePage(ctx, id)
}

func (p *PreRenderer) resolved(
	ctx context.Context,
	kind, id string,
	resolve func(context.Context, string) (lookup.Link, error),
	format func(lookup.Link) string,
) (string, error) {
	link, err := resolve(ctx, id)
	if err != nil {
		if isCanceled(err) {
			return "", err
		}
		p.logger.Debug("markup: link unresolved", "type", kind, "id", id, "error", err)
		return unresolved(kind, id), nil
	}
	return format(link), nil
}

func (p *PreRenderer) orcid(id string) string {
	if !orcidPattern.MatchString(id) {
		return `<span class="text-danger">Invalid ORCID: ` + html.EscapeString(id) + `</span>`
	}
	return `<a href="https://orcid.org/` + id + `" target="_blank" class="orcid-link" rel="noopener noreferrer">` +
		`<img src="` + html.EscapeString(p.orcidIcon) + `" alt="ORCID" style="width: 16px; height: 16px; vertical-align: middle;"> ` +
		id + `</a>`
}

// unresolved is the typed placeholder left for links whose target is unknown.
func unresolved(kind, id string) string {
	return `<span class="link-unresolved" data-link-type="` + html.EscapeString(kind) + `">` + html.EscapeString(id) + `</span>`
}
