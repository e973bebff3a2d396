package markup

import (
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

var (
	minifier     *minify.M
	minifierOnce sync.Once
)

func getMinifier() *minify.M {
	minifierOnce.Do(func() {
		minifier = minify.New()
		minifier.Add("text/html", &html.Minifier{
			KeepDocumentTags: true,
			KeepEndTags:      true,
			KeepQuotes:       true,
		})
	})
	return minifier
}

// minifyHTML falls back to the input when minification fails.
func minifyHTML(content string) string {
	if !strings.Contains(content, "<") {
		return content
	}
	minified, err := getMinifier().String("text/html", content)
	if err != nil {
		return content
	}
	return minified
}
