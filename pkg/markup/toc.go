package markup

import (
	"html"
	"strings"
)

// renderTOC replaces [[toc]] with links to the titled blocks, or removes it
// when there are none.
func (p *PreRenderer) renderTOC(text string, anchors []anchor) (string, error) {
	tokens := scan(text, 0)
	b := p.budget(PassTOC)

	var (
		out  strings.Builder
		last int
		toc  string
	)
	for _, tok := range tokens {
		if tok.Kind != KindTOC {
			continue
		}
		if err := b.spend(); err != nil {
			return "", err
		}
		if toc == "" && len(anchors) > 0 {
			toc = p.tocHTML(anchors)
		}
		out.WriteString(text[last:tok.Start])
		out.WriteString(toc)
		last = tok.End
	}
	if b.used == 0 {
		return text, nil
	}
	out.WriteString(text[last:])
	p.debug(PassTOC, b)
	return out.String(), nil
}

func (p *PreRenderer) tocHTML(anchors []anchor) string {
	var b strings.Builder
	b.WriteString(`<div class="card mb-3 toc-container"><div class="card-body">`)
	if p.tocTitle != "" {
		b.WriteString(`<h4 class="card-title">` + html.EscapeString(p.tocTitle) + `</h4>`)
	}
	b.WriteString(`<ul class="list-unstyled">`)
	for _, a := range anchors {
		b.WriteString(`<li><a href="#` + a.ID + `">` + html.EscapeString(a.Title) + `</a></li>`)
	}
	b.WriteString(`</ul></div></div>`)
	return b.String()
}
