package filters

import "strings"

func buildList(name string, cfg Config, _ *Env) (applyFunc, error) {
	tag := strings.ToLower(cfg.GetOr("type", "ul"))
	if tag != "ul" && tag != "ol" {
		return nil, configError(name, "type", "must be ul or ol, got %q", cfg.Get("type"))
	}
	class := cfg.Get("class")
	return func(in Input) (string, bool, error) {
		items := asList(in.Value)
		if len(items) == 0 {
			return "", true, nil
		}
		list := newElement(tag).addClass(class)
		for _, item := range items {
			li := newElement("li")
			if in.HTML {
				li.raw(Stringify(item))
			} else {
				li.text(Stringify(item))
			}
			list.raw(li.String())
		}
		return list.String(), true, nil
	}, nil
}
