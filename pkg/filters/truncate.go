package filters

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

func buildTruncate(name string, cfg Config, _ *Env) (applyFunc, error) {
	length, err := cfg.intOption(name, "length", 200, 1, 1<<20)
	if err != nil {
		return nil, err
	}
	more := cfg.GetOr("more", "Show more")
	less := cfg.GetOr("less", "Show less")

	return func(in Input) (string, bool, error) {
		full := in.Text(true)
		text := plainText(Stringify(in.Value), in.HTML)
		runes := []rune(text)
		if len(runes) <= length {
			return full, true, nil
		}
		short := strings.TrimRightFunc(cutAtWord(runes, length), unicode.IsSpace)

		wrapper := newElement("span").addClass("truncated-text")
		wrapper.raw(newElement("span").addClass("text-short").text(short).raw("&hellip;").String())
		wrapper.raw(newElement("span").addClass("text-full", "d-none").raw(full).String())
		wrapper.raw(" ")
		wrapper.raw(newElement("a").
			set("href", "#").
			addClass("truncate-toggle").
			set("data-more", more).
			set("data-less", less).
			text(more).String())
		return wrapper.String(), true, nil
	}, nil
}

// cutAtWord returns at most limit runes, backing up to the last whitespace
// when one exists.
func cutAtWord(runes []rune, limit int) string {
	cut := runes[:limit]
	for i := len(cut) - 1; i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			return string(cut[:i])
		}
	}
	return string(cut)
}

// plainText extracts the text content of markup. Plain values are returned
// with whitespace collapsed.
func plainText(value string, markup bool) string {
	if !markup {
		return strings.Join(strings.Fields(value), " ")
	}
	tokenizer := html.NewTokenizer(strings.NewReader(value))
	var builder strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(builder.String()), " ")
		case html.TextToken:
			builder.Write(tokenizer.Text())
			builder.WriteByte(' ')
		}
	}
}
