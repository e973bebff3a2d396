package filters

import "strings"

// noneValue renders as an empty string wherever a display value is configured.
const noneValue = "__none__"

func replaceKeyValue(value string) string {
	if value == noneValue {
		return ""
	}
	return value
}

func buildBool(_ string, cfg Config, _ *Env) (applyFunc, error) {
	yes := replaceKeyValue(cfg.Get("o0"))
	no := replaceKeyValue(cfg.Get("o1"))
	return func(in Input) (string, bool, error) {
		switch v := in.Value.(type) {
		case bool:
			if v {
				return yes, true, nil
			}
			return no, true, nil
		case string:
			if strings.EqualFold(strings.TrimSpace(v), "true") {
				return yes, true, nil
			}
			return no, true, nil
		default:
			return Stringify(in.Value), true, nil
		}
	}, nil
}

func buildDefault(_ string, _ Config, _ *Env) (applyFunc, error) {
	return func(in Input) (string, bool, error) {
		return Stringify(in.Value), true, nil
	}, nil
}
