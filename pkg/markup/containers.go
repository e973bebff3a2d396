package markup

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-richtext/internal/slug"
	"github.com/goliatone/go-richtext/pkg/expr"
)

var (
	percentWidth = regexp.MustCompile(`^\d{1,3}(\.\d+)?%$`)
	pixelWidth   = regexp.MustCompile(`^\d{1,5}px$`)
	columnWidth  = regexp.MustCompile(`^col(-(sm|md|lg|xl|xxl))?(-([1-9]|1[0-2]|auto))?$`)
)

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeBlock
	nodeCell
)

type node struct {
	kind     nodeKind
	text     string
	block    blockOptions
	cell     cellWidth
	children []*node
}

type blockOptions struct {
	Title       string
	Collapsible bool
	BackToTop   bool
}

type cellWidth struct {
	Class string
	Style string
}

// renderContainers assembles blocks and cells into a tree and renders it.
// Titled blocks are returned as anchors for the table of contents.
func (p *PreRenderer) renderContainers(text string) (string, []anchor, error) {
	tokens := containerTokens(text)
	if len(tokens) == 0 {
		return text, nil, nil
	}
	if err := checkBalance(tokens); err != nil {
		return "", nil, err
	}
	root, err := buildTree(text, tokens)
	if err != nil {
		return "", nil, err
	}

	w := &treeWriter{p: p, budget: p.budget(PassContainers)}
	if err := w.children(root.children); err != nil {
		return "", nil, err
	}
	p.debug(PassContainers, w.budget)
	return w.out.String(), w.anchors, nil
}

func containerTokens(text string) []Token {
	var out []Token
	for _, tok := range Tokenize(text) {
		switch tok.Kind {
		case KindBlockStart, KindBlockEnd, KindCellStart, KindCellEnd:
			out = append(out, tok)
		}
	}
	return out
}

// checkBalance confirms every start token has a matching end token.
func checkBalance(tokens []Token) error {
	counts := map[Kind]int{}
	for _, tok := range tokens {
		counts[tok.Kind]++
	}
	if counts[KindBlockStart] != counts[KindBlockEnd] {
		return structural("start_block", "%d start_block and %d end_block tags", counts[KindBlockStart], counts[KindBlockEnd])
	}
	if counts[KindCellStart] != counts[KindCellEnd] {
		return structural("start_cell", "%d start_cell and %d end_cell tags", counts[KindCellStart], counts[KindCellEnd])
	}
	return nil
}

func buildTree(text string, tokens []Token) (*node, error) {
	root := &node{}
	stack := []*node{root}
	last := 0
	for _, tok := range tokens {
		top := stack[len(stack)-1]
		if tok.Start > last {
			top.children = append(top.children, &node{kind: nodeText, text: text[last:tok.Start]})
		}
		last = tok.End

		switch tok.Kind {
		case KindBlockStart:
			opts, err := parseBlockOptions(tok)
			if err != nil {
				return nil, err
			}
			child := &node{kind: nodeBlock, block: opts}
			top.children = append(top.children, child)
			stack = append(stack, child)
		case KindCellStart:
			width, err := parseCellWidth(tok)
			if err != nil {
				return nil, err
			}
			child := &node{kind: nodeCell, cell: width}
			top.children = append(top.children, child)
			stack = append(stack, child)
		case KindBlockEnd, KindCellEnd:
			want := nodeBlock
			if tok.Kind == KindCellEnd {
				want = nodeCell
			}
			if len(stack) == 1 {
				return nil, structural(tok.Head, "closes nothing")
			}
			if top.kind != want {
				return nil, structural(tok.Head, "closes a %s", openTag(top.kind))
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 1 {
		return nil, structural(openTag(stack[len(stack)-1].kind), "is never closed")
	}
	if last < len(text) {
		root.children = append(root.children, &node{kind: nodeText, text: text[last:]})
	}
	return root, nil
}

func openTag(kind nodeKind) string {
	if kind == nodeCell {
		return "start_cell"
	}
	return "start_block"
}

// parseBlockOptions dispatches on the separator: `=` takes the remainder
// verbatim as title, `:` reads a quote-aware key=value list.
func parseBlockOptions(tok Token) (blockOptions, error) {
	var opts blockOptions
	switch tok.Sep {
	case 0:
		return opts, nil
	case '=':
		opts.Title = strings.TrimSpace(html.UnescapeString(tok.Params))
		return opts, nil
	}

	for _, part := range expr.SplitQuoted(html.UnescapeString(tok.Params), ',') {
		if strings.TrimSpace(part) == "" {
			continue
		}
		key, value, ok := expr.SplitFirst(part, '=')
		if !ok {
			return opts, structural(tok.Head, "option %q needs a value", strings.TrimSpace(part))
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = expr.Unquote(value)
		switch key {
		case "title":
			opts.Title = value
		case "collapsible", "back_to_top":
			flag, err := strconv.ParseBool(value)
			if err != nil {
				return opts, structural(tok.Head, "option %q: %q is not a boolean", key, value)
			}
			if key == "collapsible" {
				opts.Collapsible = flag
			} else {
				opts.BackToTop = flag
			}
		default:
			return opts, structural(tok.Head, "unknown option %q", key)
		}
	}
	if opts.Collapsible && opts.Title == "" {
		return opts, structural(tok.Head, "collapsible blocks need a title")
	}
	return opts, nil
}

func parseCellWidth(tok Token) (cellWidth, error) {
	width := strings.TrimSpace(tok.Params)
	switch {
	case width == "":
		return cellWidth{Class: "flex-fill"}, nil
	case percentWidth.MatchString(width), pixelWidth.MatchString(width):
		return cellWidth{Style: fmt.Sprintf("flex: 0 0 %s; max-width: %s;", width, width)}, nil
	case columnWidth.MatchString(width):
		return cellWidth{Class: width}, nil
	default:
		return cellWidth{}, structural(tok.Head, "invalid width %q", width)
	}
}

type treeWriter struct {
	p       *PreRenderer
	budget  *budget
	out     strings.Builder
	blocks  int
	anchors []anchor
}

// children writes nodes in order; runs of cells separated only by
// whitespace share one row wrapper.
func (w *treeWriter) children(nodes []*node) error {
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		if n.kind != nodeCell {
			if err := w.node(n); err != nil {
				return err
			}
			continue
		}

		w.out.WriteString(`<div class="d-flex flex-wrap ndr-cells">`)
		for {
			if err := w.node(nodes[i]); err != nil {
				return err
			}
			j := i + 1
			for j < len(nodes) && nodes[j].kind == nodeText && strings.TrimSpace(nodes[j].text) == "" {
				j++
			}
			if j >= len(nodes) || nodes[j].kind != nodeCell {
				break
			}
			i = j
		}
		w.out.WriteString(`</div>`)
	}
	return nil
}

func (w *treeWriter) node(n *node) error {
	switch n.kind {
	case nodeText:
		w.out.WriteString(n.text)
		return nil
	case nodeCell:
		if err := w.budget.spend(); err != nil {
			return err
		}
		w.out.WriteString(`<div class="ndr-cell`)
		if n.cell.Class != "" {
			w.out.WriteString(" " + n.cell.Class)
		}
		w.out.WriteByte('"')
		if n.cell.Style != "" {
			w.out.WriteString(` style="` + html.EscapeString(n.cell.Style) + `"`)
		}
		w.out.WriteByte('>')
		if err := w.children(n.children); err != nil {
			return err
		}
		w.out.WriteString(`</div>`)
		return nil
	default:
		if err := w.budget.spend(); err != nil {
			return err
		}
		return w.block(n)
	}
}

func (w *treeWriter) block(n *node) error {
	w.blocks++
	opts := n.block
	title := html.EscapeString(opts.Title)

	id := ""
	if opts.Title != "" {
		id = slug.Anchor(w.blocks, opts.Title)
		w.anchors = append(w.anchors, anchor{ID: id, Title: opts.Title})
	}

	switch {
	case opts.Collapsible:
		body := id + "-body"
		w.out.WriteString(`<div class="card mb-2 box-shadow" id="` + id + `">`)
		w.out.WriteString(`<div class="card-header"><h3 class="card-title mb-0">`)
		w.out.WriteString(`<a class="text-decoration-none" data-bs-toggle="collapse" href="#` + body +
			`" role="button" aria-expanded="true" aria-controls="` + body + `">` + title + `</a></h3></div>`)
		w.out.WriteString(`<div class="collapse show" id="` + body + `">`)
		w.out.WriteString(`<div class="card-body d-flex flex-column">`)
	case id != "":
		w.out.WriteString(`<div class="card mb-2 box-shadow" id="` + id + `">`)
		w.out.WriteString(`<div class="card-body d-flex flex-column">`)
		w.out.WriteString(`<h3 class="card-title">` + title + `</h3>`)
	default:
		w.out.WriteString(`<div class="card mb-2 box-shadow">`)
		w.out.WriteString(`<div class="card-body d-flex flex-column">`)
	}

	if err := w.children(n.children); err != nil {
		return err
	}

	if opts.BackToTop {
		w.out.WriteString(`<a class="back-to-top small mt-auto" href="#top">` + html.EscapeString(w.p.backToTop) + `</a>`)
	}
	w.out.WriteString(`</div></div>`)
	if opts.Collapsible {
		w.out.WriteString(`</div>`)
	}
	return nil
}
