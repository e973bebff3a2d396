package markup

import "strings"

// Kind classifies a markup token.
type Kind int

const (
	KindCodeStart Kind = iota + 1
	KindCodeEnd
	KindBlockStart
	KindBlockEnd
	KindCellStart
	KindCellEnd
	KindTOC
	KindElement
	KindLink
)

var kindNames = map[Kind]string{
	KindCodeStart:  "start_code",
	KindCodeEnd:    "end_code",
	KindBlockStart: "start_block",
	KindBlockEnd:   "end_block",
	KindCellStart:  "start_cell",
	KindCellEnd:    "end_cell",
	KindTOC:        "toc",
	KindElement:    "element",
	KindLink:       "link",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Token is one recognised `[[...]]` directive. Start and End are byte offsets
// of the opening and one past the closing brackets.
type Token struct {
	Kind Kind
	// Head is the directive name: "start_block", "element", "orcid", "card", ...
	Head string
	// Sep is the byte following Head ('=', ':' or '|'), 0 for bare tokens.
	Sep    byte
	Params string
	Start  int
	End    int
}

// Raw returns the token text as written.
func (t Token) Raw() string {
	var b strings.Builder
	b.WriteString("[[")
	b.WriteString(t.Head)
	if t.Sep != 0 {
		b.WriteByte(t.Sep)
		b.WriteString(t.Params)
	}
	b.WriteString("]]")
	return b.String()
}

// Legacy element heads render the named element with the head's template.
var legacyElementTypes = map[string]string{
	"card":            "card",
	"slides":          "slides",
	"slideshow":       "slides",
	"carousel":        "carousel",
	"jumbotron":       "jumbotron",
	"banner":          "banner",
	"iframe":          "iframe",
	"manifest_viewer": "manifest_viewer",
	"figure":          "",
}

// Link heads.
const (
	LinkFile  = "file"
	LinkPage  = "page"
	LinkORCID = "orcid"
	LinkURL   = "url"
)

// Tokenize returns every directive of text in order. Bracket pairs that do
// not form a known directive are left to the surrounding text.
func Tokenize(text string) []Token {
	return scan(text, 0)
}

func scan(text string, from int) []Token {
	var out []Token
	i := from
	for i < len(text) {
		open := strings.Index(text[i:], "[[")
		if open < 0 {
			break
		}
		open += i
		rel := strings.Index(text[open+2:], "]]")
		if rel < 0 {
			break
		}
		end := open + 2 + rel
		body := text[open+2 : end]
		if inner := strings.LastIndex(body, "[["); inner >= 0 {
			i = open + 2 + inner
			continue
		}
		if tok, ok := classify(body); ok {
			tok.Start = open
			tok.End = end + 2
			out = append(out, tok)
			i = end + 2
			continue
		}
		i = open + 2
	}
	return out
}

func classify(body string) (Token, bool) {
	head, sep, params := body, byte(0), ""
	if idx := strings.IndexAny(body, "=:|"); idx >= 0 {
		head, sep, params = body[:idx], body[idx], body[idx+1:]
	}
	tok := Token{Head: head, Sep: sep, Params: params}

	switch head {
	case "start_code":
		tok.Kind = KindCodeStart
		return tok, sep == 0 || sep == '='
	case "start_block":
		tok.Kind = KindBlockStart
		return tok, sep != '|'
	case "start_cell":
		tok.Kind = KindCellStart
		return tok, sep == 0 || sep == ':'
	case "end_code":
		tok.Kind = KindCodeEnd
		return tok, sep == 0
	case "end_block":
		tok.Kind = KindBlockEnd
		return tok, sep == 0
	case "end_cell":
		tok.Kind = KindCellEnd
		return tok, sep == 0
	case "toc":
		tok.Kind = KindTOC
		return tok, sep == 0
	case "element":
		tok.Kind = KindElement
		return tok, sep == '|' && strings.TrimSpace(params) != ""
	case LinkFile, LinkPage, LinkORCID, LinkURL:
		tok.Kind = KindLink
		return tok, sep == '|' && strings.TrimSpace(params) != ""
	}
	if _, ok := legacyElementTypes[head]; ok {
		tok.Kind = KindElement
		return tok, sep == '|' && strings.TrimSpace(params) != ""
	}
	return Token{}, false
}

// next returns the first token of kind at or after from.
func next(text string, from int, kind Kind) (Token, bool) {
	for _, tok := range scan(text, from) {
		if tok.Kind == kind {
			return tok, true
		}
	}
	return Token{}, false
}
