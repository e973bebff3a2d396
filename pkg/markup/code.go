package markup

import (
	"bytes"
	"encoding/json"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicyOnce sync.Once
	stripPolicy     *bluemonday.Policy

	lineBreakPattern = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>`)
	languagePattern  = regexp.MustCompile(`^[a-z0-9_+#.-]+$`)
)

func stripSanitizer() *bluemonday.Policy {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return stripPolicy
}

// renderCode replaces `[[start_code=lang]]...[[end_code]]` with a preformatted
// block. Scanning resumes at the rewritten block, so directives left inside
// the body are seen again and count against the budget. A start without an
// end leaves the remainder untouched.
func (p *PreRenderer) renderCode(text string) (string, error) {
	b := p.budget(PassCode)
	from := 0
	for {
		start, ok := next(text, from, KindCodeStart)
		if !ok {
			break
		}
		end, ok := next(text, start.End, KindCodeEnd)
		if !ok {
			break
		}
		if err := b.spend(); err != nil {
			return "", err
		}
		block := codeBlock(start.Params, text[start.End:end.Start])
		text = text[:start.Start] + block + text[end.End:]
		from = start.Start
	}
	p.debug(PassCode, b)
	return text, nil
}

func codeBlock(language, body string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if !languagePattern.MatchString(language) {
		language = "text"
	}

	content := lineBreakPattern.ReplaceAllString(body, "\n")
	content = html.UnescapeString(stripSanitizer().Sanitize(content))
	content = strings.TrimSpace(content)
	if language == "json" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(content), "", "  "); err == nil {
			content = buf.String()
		}
	}

	return `<pre class="code-block"><code class="language-` + language + `">` +
		html.EscapeString(content) + `</code></pre>`
}
