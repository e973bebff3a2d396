package filters

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
)

func buildMarkdown(name string, _ Config, _ *Env) (applyFunc, error) {
	md := goldmark.New()
	return func(in Input) (string, bool, error) {
		if in.HTML {
			return Stringify(in.Value), true, nil
		}
		var buf bytes.Buffer
		if err := md.Convert([]byte(Stringify(in.Value)), &buf); err != nil {
			return "", false, failed(name, "convert markdown: %v", err)
		}
		return strings.TrimSpace(buf.String()), true, nil
	}, nil
}
