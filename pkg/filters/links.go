package filters

import (
	"net/url"
	"strings"
)

func buildLinkify(_ string, cfg Config, env *Env) (applyFunc, error) {
	return func(in Input) (string, bool, error) {
		content := in.Text(true)
		href, ok := linkTarget(cfg, env, Stringify(in.Value))
		if !ok {
			return content, true, nil
		}
		if cfg.Has("query") {
			href = mergeQuery(href, ExpandPlaceholders(cfg.Get("query"), env.data(), nil))
		}

		link := newElement("a").set("href", href)
		target := cfg.Get("target")
		if target == "blank" {
			target = "_blank"
		}
		link.setIf("target", target)
		link.addClass(cfg.Get("class"))
		link.setIf("title", cfg.Get("title"))
		switch {
		case cfg.Has("rel"):
			link.set("rel", cfg.Get("rel"))
		case target == "_blank":
			link.set("rel", "noopener noreferrer")
		}
		link.raw(content)
		return link.String(), true, nil
	}, nil
}

// linkTarget resolves the href from the first configured source: a literal
// URL template, an internal page or the record view of an external object.
func linkTarget(cfg Config, env *Env, value string) (string, bool) {
	switch {
	case cfg.Has("url"):
		return ExpandPlaceholders(cfg.Get("url"), env.data(), map[string]string{"value": value}), true
	case cfg.Has("page"):
		if env == nil || env.Pages == nil {
			return "", false
		}
		page, err := env.Pages.ResolvePage(env.context(), cfg.Get("page"))
		if err != nil || page.URL == "" {
			return "", false
		}
		return page.URL, true
	default:
		if env == nil || env.Records == nil || value == "" {
			return "", false
		}
		href, err := env.Records.RecordURL(cfg.Get("object"), value)
		if err != nil {
			return "", false
		}
		return href, true
	}
}

// mergeQuery adds the parameters of query (`a=1&b=2`) to href.
func mergeQuery(href, query string) string {
	query = strings.TrimPrefix(strings.TrimSpace(query), "?")
	if query == "" {
		return href
	}
	extra, err := url.ParseQuery(query)
	if err != nil {
		return href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	values := parsed.Query()
	for key, vals := range extra {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	parsed.RawQuery = values.Encode()
	return parsed.String()
}

func buildIframe(_ string, cfg Config, env *Env) (applyFunc, error) {
	return func(in Input) (string, bool, error) {
		src := cfg.Get("src")
		if src == "" {
			src = Stringify(in.Value)
		}
		if src != "" {
			src = ExpandPlaceholders(src, env.data(), nil)
		}

		frame := newElement("iframe").set("src", src)
		frame.set("frameborder", cfg.GetOr("frameborder", "0"))
		frame.set("loading", cfg.GetOr("loading", "lazy"))
		frame.set("width", cfg.GetOr("width", "100%"))
		frame.set("height", cfg.GetOr("height", "400"))
		frame.set("title", cfg.GetOr("title", "Embedded content"))
		frame.setIf("sandbox", cfg.Get("sandbox"))
		if isTruthy(cfg.Get("allowfullscreen")) {
			frame.set("allowfullscreen", "")
		}
		frame.setIf("referrerpolicy", cfg.Get("referrerpolicy"))
		frame.addClass(cfg.Get("class"))
		frame.setIf("style", cfg.Get("style"))
		return frame.String(), true, nil
	}, nil
}
