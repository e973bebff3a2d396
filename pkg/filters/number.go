package filters

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

func buildFormat(name string, cfg Config, _ *Env) (applyFunc, error) {
	verb := strings.TrimSpace(cfg.Get("o0"))
	if !strings.HasPrefix(verb, "%") {
		verb = "%" + verb
	}
	if strings.Count(verb, "%") != 1 {
		return nil, configError(name, "o0", "expected a single format verb, got %q", cfg.Get("o0"))
	}
	last, _ := utf8.DecodeLastRuneInString(verb)
	integer := strings.ContainsRune("dboxXc", last)
	if !integer && !strings.ContainsRune("eEfFgGs", last) {
		return nil, configError(name, "o0", "unsupported format verb %q", verb)
	}

	return func(in Input) (string, bool, error) {
		n, ok := toFloat(in.Value)
		if !ok {
			return "", false, failed(name, "%q is not a number", Stringify(in.Value))
		}
		if integer {
			return fmt.Sprintf(verb, int64(n)), true, nil
		}
		if last == 's' {
			return fmt.Sprintf(verb, formatFloat(n)), true, nil
		}
		return fmt.Sprintf(verb, n), true, nil
	}, nil
}

func buildReadable(name string, cfg Config, _ *Env) (applyFunc, error) {
	sep := cfg.GetOr("sep", ",")
	dec := cfg.GetOr("dec", ".")
	for option, value := range map[string]string{"sep": sep, "dec": dec} {
		if utf8.RuneCountInString(value) != 1 || strings.ContainsAny(value, "#0+") {
			return nil, configError(name, option, "expected a single separator character, got %q", value)
		}
	}
	if sep == dec {
		return nil, configError(name, "dec", "must differ from the thousands separator")
	}
	decimals, err := cfg.intOption(name, "decimals", 0, 0, 9)
	if err != nil {
		return nil, err
	}
	// humanize reads "#,###.##" as: thousands separator, decimal separator,
	// then one '#' per decimal digit.
	pattern := "#" + sep + "###" + dec + strings.Repeat("#", decimals)

	return func(in Input) (string, bool, error) {
		n, ok := toFloat(in.Value)
		if !ok {
			return "", false, failed(name, "%q is not a number", Stringify(in.Value))
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Stringify(in.Value), true, nil
		}
		return humanize.FormatFloat(pattern, n), true, nil
	}, nil
}

var compactUnits = []struct {
	limit  float64
	suffix string
}{
	{limit: 1e9, suffix: "B"},
	{limit: 1e6, suffix: "M"},
	{limit: 1e3, suffix: "K"},
}

func buildCompact(name string, cfg Config, _ *Env) (applyFunc, error) {
	precision, err := cfg.intOption(name, "precision", 1, 0, 6)
	if err != nil {
		return nil, err
	}
	return func(in Input) (string, bool, error) {
		n, ok := toFloat(in.Value)
		if !ok {
			return "", false, failed(name, "%q is not a number", Stringify(in.Value))
		}
		return compactNumber(n, precision), true, nil
	}, nil
}

func compactNumber(n float64, precision int) string {
	abs := math.Abs(n)
	for i, unit := range compactUnits {
		if abs < unit.limit {
			continue
		}
		scaled := strconv.FormatFloat(n/unit.limit, 'f', precision, 64)
		// Rounding can carry into the next unit: 999950 is 1M, not 1000K.
		if rounded, _ := strconv.ParseFloat(scaled, 64); math.Abs(rounded) >= 1000 && i > 0 {
			bigger := compactUnits[i-1]
			scaled = strconv.FormatFloat(n/bigger.limit, 'f', precision, 64)
			unit = bigger
		}
		return trimZeros(scaled) + unit.suffix
	}
	return formatFloat(n)
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
