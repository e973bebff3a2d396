package filters

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-richtext/pkg/datapath"
)

// DefaultFaviconService derives a favicon from the link host.
const DefaultFaviconService = "https://www.google.com/s2/favicons?domain=[host]"

func buildWeblinks(_ string, cfg Config, env *Env) (applyFunc, error) {
	favicon := cfg.Get("favicon")
	if favicon == "" && env != nil {
		favicon = env.FaviconService
	}
	if favicon == "" {
		favicon = DefaultFaviconService
	}
	target := cfg.GetOr("target", "_blank")
	if target == "blank" {
		target = "_blank"
	}
	labelPath := cfg.Get("label")

	return func(in Input) (string, bool, error) {
		list := newElement("ul").addClass("list-unstyled", "weblinks", cfg.Get("class"))
		count := 0
		for _, item := range asList(in.Value) {
			href, label := weblink(item, labelPath)
			parsed, err := url.Parse(href)
			if err != nil || parsed.Host == "" {
				continue
			}
			if label == "" {
				label = strings.TrimPrefix(parsed.Hostname(), "www.")
			}
			icon := newElement("img").
				set("src", ExpandPlaceholders(favicon, nil, map[string]string{"host": parsed.Hostname()})).
				set("alt", "").
				set("width", "16").
				set("height", "16").
				addClass("me-1")
			link := newElement("a").set("href", href).set("target", target)
			if target == "_blank" {
				link.set("rel", "noopener noreferrer")
			}
			link.raw(icon.String()).text(label)
			list.raw(newElement("li").raw(link.String()).String())
			count++
		}
		if count == 0 {
			return "", true, nil
		}
		return list.String(), true, nil
	}, nil
}

// weblink extracts the URL and label of one list entry: either a plain URL or
// a mapping with a `url` key.
func weblink(item any, labelPath string) (string, string) {
	m, ok := item.(map[string]any)
	if !ok {
		return strings.TrimSpace(Stringify(item)), ""
	}
	href := ""
	if v, err := datapath.Lookup(m, "url"); err == nil {
		href = strings.TrimSpace(Stringify(v))
	}
	label := ""
	if labelPath != "" {
		if v, err := datapath.Lookup(m, labelPath); err == nil {
			label = Stringify(v)
		}
	}
	return href, label
}
