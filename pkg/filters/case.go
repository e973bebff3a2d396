package filters

import (
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func buildCase(kind Kind) func(string, Config, *Env) (applyFunc, error) {
	return func(_ string, _ Config, env *Env) (applyFunc, error) {
		tag := languageTag(env.language())
		var caser cases.Caser
		switch kind {
		case KindUpper:
			caser = cases.Upper(tag)
		case KindLower, KindCapitalize:
			caser = cases.Lower(tag)
		case KindTitle:
			caser = cases.Title(tag)
		}
		convert := caser.String
		if kind == KindCapitalize {
			convert = func(text string) string { return capitalize(text, tag, caser) }
		}
		return func(in Input) (string, bool, error) {
			text := Stringify(in.Value)
			if in.HTML {
				return convertMarkupText(text, convert, kind == KindCapitalize, caser.String), true, nil
			}
			return convert(text), true, nil
		}, nil
	}
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(text string, tag language.Tag, lower cases.Caser) string {
	if text == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(text)
	return cases.Upper(tag).String(text[:size]) + lower.String(text[size:])
}

// convertMarkupText applies convert to the text nodes of markup and keeps
// tags and attributes as they are. With firstOnly set, convert runs on the
// first non-blank text node and rest on the others.
func convertMarkupText(markup string, convert func(string) string, firstOnly bool, rest func(string) string) string {
	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	converted := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if tokenizer.Err() != io.EOF {
				return markup
			}
			return b.String()
		case html.TextToken:
			text := string(tokenizer.Text())
			switch {
			case firstOnly && converted:
				text = rest(text)
			case strings.TrimSpace(text) != "":
				text = convert(text)
				converted = true
			}
			b.WriteString(html.EscapeString(text))
		default:
			b.Write(tokenizer.Raw())
		}
	}
}

func languageTag(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return language.Und
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.Und
	}
	return tag
}
