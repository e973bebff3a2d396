package filters

import (
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// fallbackDateFormats are tried in order when no `format` option is set.
var fallbackDateFormats = []string{"%Y-%m-%d", "%Y-%m-%dT%H:%M:%S", "%d.%m.%Y"}

const (
	defaultDateOutput   = "%Y-%m-%d"
	defaultRelativeDays = 7
)

func buildDate(_ string, cfg Config, _ *Env) (applyFunc, error) {
	output := cfg.Get("o0")
	inputs := inputFormats(cfg.Get("format"))
	return func(in Input) (string, bool, error) {
		raw := Stringify(in.Value)
		t, ok := parseDate(raw, inputs)
		if !ok {
			return raw, true, nil
		}
		return strftime.Format(output, t), true, nil
	}, nil
}

func buildRelativeDate(name string, cfg Config, env *Env) (applyFunc, error) {
	threshold, err := cfg.intOption(name, "threshold", env.relativeDays(), 0, 36500)
	if err != nil {
		return nil, err
	}
	output := cfg.GetOr("format", defaultDateOutput)
	inputs := inputFormats("")
	return func(in Input) (string, bool, error) {
		raw := Stringify(in.Value)
		t, ok := parseDate(raw, inputs)
		if !ok {
			return raw, true, nil
		}
		days := daysBetween(t, env.now())
		if days > threshold || -days > threshold {
			return strftime.Format(output, t), true, nil
		}
		return relativePhrase(days), true, nil
	}, nil
}

func inputFormats(format string) []string {
	if strings.TrimSpace(format) != "" {
		return []string{format}
	}
	return fallbackDateFormats
}

func parseDate(raw string, formats []string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, format := range formats {
		if t, err := strftime.Parse(format, raw); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// daysBetween counts calendar days from t to now; positive values lie in the
// past.
func daysBetween(t, now time.Time) int {
	now = now.In(t.Location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(day).Hours() / 24)
}

func relativePhrase(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days == -1:
		return "tomorrow"
	case days > 1:
		return strconv.Itoa(days) + " days ago"
	default:
		return "in " + strconv.Itoa(-days) + " days"
	}
}
