package filters

import (
	"strings"

	"github.com/goliatone/go-richtext/pkg/lookup"
)

// buildFieldify resolves the value as a code of the choice field named by o0.
// Unknown fields or codes fall back to the raw value.
func buildFieldify(info bool) func(string, Config, *Env) (applyFunc, error) {
	return func(_ string, cfg Config, env *Env) (applyFunc, error) {
		field := strings.TrimSpace(cfg.Get("o0"))
		return func(in Input) (string, bool, error) {
			code := Stringify(in.Value)
			choice, ok := resolveChoice(env, field, code)
			if !ok {
				return code, true, nil
			}
			label := choice.LabelFor(env.language())
			if info {
				label = choice.InfoFor(env.language())
			}
			if label == "" {
				return code, true, nil
			}
			return label, true, nil
		}, nil
	}
}

func resolveChoice(env *Env, field, code string) (lookup.Choice, bool) {
	if env == nil || env.Choices == nil {
		return lookup.Choice{}, false
	}
	choice, err := env.Choices.ResolveChoice(field, code)
	if err != nil {
		return lookup.Choice{}, false
	}
	return choice, true
}
