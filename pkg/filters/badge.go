package filters

import (
	"errors"
	"regexp"
	"strings"

	"github.com/goliatone/go-richtext/pkg/lookup"
)

var badgeOptions = []string{"field", "color", "bg", "tt", "class"}

const fieldValue = "__field__"

var contextColors = map[string]bool{
	"primary": true, "secondary": true, "success": true, "danger": true,
	"warning": true, "info": true, "light": true, "dark": true,
	"white": true, "muted": true, "body": true,
}

var cssColor = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|(rgb|rgba|hsl|hsla)\([0-9.,%\s]+\)|[a-zA-Z]+)$`)

// colorTarget is the property a badge colour option controls.
type colorTarget struct {
	classPrefix string
	property    string
}

var (
	textColor       = colorTarget{classPrefix: "text-", property: "color"}
	backgroundColor = colorTarget{classPrefix: "bg-", property: "background-color"}
)

func buildBadge(pill bool) func(string, Config, *Env) (applyFunc, error) {
	return func(name string, cfg Config, env *Env) (applyFunc, error) {
		for _, option := range []string{"color", "bg"} {
			value := strings.TrimSpace(cfg.Get(option))
			if value == "" || value == fieldValue {
				continue
			}
			if _, ok := colorFor(value, env); !ok {
				return nil, configError(name, option, "unknown colour %q", value)
			}
		}
		field := strings.TrimSpace(cfg.Get("field"))
		tooltip := cfg.Get("tt")

		return func(in Input) (string, bool, error) {
			value := Stringify(in.Value)
			badge := newElement("span").addClass("badge", "text-dark", "font-weight-normal")
			if pill {
				badge.addClass("badge-pill", "rounded-pill")
			}
			badge.addClass(cfg.Get("class"))
			if tooltip != "" {
				badge.set("data-toggle", "tooltip").set("data-placement", "top")
			}

			var choice *lookup.Choice
			switch {
			case field == "":
				badge.raw(in.Text(true))
				if tooltip != "" {
					badge.set("title", expandTooltip(tooltip, value, env))
				}
			default:
				resolved, err := lookupChoice(env, field, value)
				switch {
				case errors.Is(err, lookup.ErrFieldNotFound):
					badge.text("Field not found")
				case err != nil:
					badge.raw(in.Text(true))
				default:
					if !resolved.IsPrintable() {
						return "", false, nil
					}
					choice = &resolved
					label := resolved.LabelFor(env.language())
					if label == "" {
						label = value
					}
					badge.text(label)
					if tooltip == fieldValue {
						badge.set("title", resolved.InfoFor(env.language()))
					} else if tooltip != "" {
						badge.set("title", expandTooltip(tooltip, value, env))
					}
				}
			}

			applyColor(badge, textColor, cfg.Get("color"), choice, env)
			applyColor(badge, backgroundColor, cfg.Get("bg"), choice, env)
			return badge.String(), true, nil
		}, nil
	}
}

func lookupChoice(env *Env, field, code string) (lookup.Choice, error) {
	if env == nil || env.Choices == nil {
		return lookup.Choice{}, lookup.ErrFieldNotFound
	}
	return env.Choices.ResolveChoice(field, code)
}

func expandTooltip(template, value string, env *Env) string {
	return ExpandPlaceholders(template, env.data(), map[string]string{"value": value})
}

type resolvedColor struct {
	class string
	css   string
}

// colorFor maps a colour option onto a Bootstrap context class, a theme token
// or a literal CSS colour, in that order.
func colorFor(value string, env *Env) (resolvedColor, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return resolvedColor{}, false
	}
	if contextColors[strings.ToLower(value)] {
		return resolvedColor{class: strings.ToLower(value)}, true
	}
	if env != nil {
		if token, ok := env.Tokens[value]; ok && strings.TrimSpace(token) != "" {
			return resolvedColor{css: token}, true
		}
	}
	if cssColor.MatchString(value) {
		return resolvedColor{css: value}, true
	}
	return resolvedColor{}, false
}

func applyColor(el *element, target colorTarget, option string, choice *lookup.Choice, env *Env) {
	option = strings.TrimSpace(option)
	if option == "" {
		return
	}
	if option == fieldValue {
		if choice == nil || strings.TrimSpace(choice.Color) == "" {
			return
		}
		option = choice.Color
	}
	color, ok := colorFor(option, env)
	if !ok {
		return
	}
	if target == textColor {
		el.removeClass("text-dark")
	}
	if color.class != "" {
		el.addClass(target.classPrefix + color.class)
		return
	}
	style := target.property + ": " + color.css + ";"
	for _, attr := range el.attrs {
		if attr.name == "style" {
			style = attr.value + " " + style
		}
	}
	el.set("style", style)
}
