// Package filters implements the named formatting steps of a template
// variable's filter chain. Filters are constructed from a parsed
// expr.FilterInvocation and validate their configuration eagerly, so a bad
// option surfaces before any value is rendered.
package filters

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-richtext/pkg/datapath"
	"github.com/goliatone/go-richtext/pkg/lookup"
)

var (
	// ErrFilterConfiguration marks invalid, missing or unknown filter options
	// and unknown filter names.
	ErrFilterConfiguration = errors.New("filters: invalid configuration")
	// ErrFilterFailed marks a render-time failure, such as a non-numeric value
	// handed to a number filter.
	ErrFilterFailed = errors.New("filters: filter failed")
)

// Universal options accepted by every filter.
const (
	OptionDefault  = "default"
	OptionSubfield = "subfield"
	OptionLimit    = "limit"
)

// ConfigurationError describes why a filter could not be constructed.
type ConfigurationError struct {
	Filter string
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("filters: filter %q %s", e.Filter, e.Reason)
	}
	return fmt.Sprintf("filters: filter %q option %q: %s", e.Filter, e.Option, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrFilterConfiguration
}

func configError(filter, option, format string, args ...any) error {
	return &ConfigurationError{Filter: filter, Option: option, Reason: fmt.Sprintf(format, args...)}
}

func failed(filter string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrFilterFailed, filter, fmt.Sprintf(format, args...))
}

// Spec lists the configuration a filter understands.
type Spec struct {
	// RequiredOptions must be present and non-empty (o0, o1, ...).
	RequiredOptions []string
	// RequiredAttributes must be present and non-empty named options.
	RequiredAttributes []string
	// AllowedOptions are accepted in addition to the required ones and the
	// universal default/subfield/limit options.
	AllowedOptions []string
	// OneOf requires at least one of the listed options.
	OneOf []string
	// WholeList filters receive sequence values as a whole instead of one
	// element at a time.
	WholeList bool
	// Markup filters produce HTML.
	Markup bool
}

func (s Spec) allows(key string) bool {
	switch key {
	case OptionDefault, OptionSubfield, OptionLimit:
		return true
	}
	for _, group := range [][]string{s.RequiredOptions, s.RequiredAttributes, s.AllowedOptions, s.OneOf} {
		for _, allowed := range group {
			if allowed == key {
				return true
			}
		}
	}
	return false
}

func (s Spec) validate(name string, cfg Config) error {
	for _, option := range s.RequiredOptions {
		if !cfg.Has(option) {
			return configError(name, option, "required option is missing")
		}
	}
	for _, attribute := range s.RequiredAttributes {
		if !cfg.Has(attribute) {
			return configError(name, attribute, "required attribute is missing")
		}
	}
	if len(s.OneOf) > 0 {
		found := false
		for _, option := range s.OneOf {
			if cfg.Has(option) {
				found = true
				break
			}
		}
		if !found {
			return configError(name, "", "requires one of %s", strings.Join(s.OneOf, ", "))
		}
	}
	for _, key := range cfg.Keys() {
		if !s.allows(key) {
			return configError(name, key, "not allowed")
		}
	}
	return nil
}

// Config is the flattened option map of one filter invocation.
type Config map[string]string

// Get returns the option value or "".
func (c Config) Get(key string) string {
	return c[key]
}

// Has reports whether key is set to a non-empty value.
func (c Config) Has(key string) bool {
	return strings.TrimSpace(c[key]) != ""
}

// GetOr returns the option value, or fallback when unset.
func (c Config) GetOr(key, fallback string) string {
	if c.Has(key) {
		return c[key]
	}
	return fallback
}

// Keys returns the configured option keys in a stable order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (c Config) intOption(filter, key string, fallback, lo, hi int) (int, error) {
	if !c.Has(key) {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(c[key]))
	if err != nil {
		return 0, configError(filter, key, "expected an integer, got %q", c[key])
	}
	if n < lo || n > hi {
		return 0, configError(filter, key, "must be between %d and %d", lo, hi)
	}
	return n, nil
}

// Env carries the render-scoped context filters consult: the data document
// for [placeholder] substitution, the output language and the collaborators.
// All fields are optional.
type Env struct {
	Context  context.Context
	Data     any
	Language string
	Choices  lookup.ChoiceResolver
	Pages    lookup.PageResolver
	Records  lookup.RecordLinker
	// Tokens maps theme colour token names to CSS values.
	Tokens map[string]string
	// FaviconService is the default favicon URL template; [host] is replaced.
	FaviconService string
	// RelativeDays is the reldate threshold used when the filter sets none.
	RelativeDays int
	Now          func() time.Time
}

func (e *Env) context() context.Context {
	if e == nil || e.Context == nil {
		return context.Background()
	}
	return e.Context
}

func (e *Env) relativeDays() int {
	if e == nil || e.RelativeDays <= 0 {
		return defaultRelativeDays
	}
	return e.RelativeDays
}

func (e *Env) now() time.Time {
	if e == nil || e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) data() any {
	if e == nil {
		return nil
	}
	return e.Data
}

func (e *Env) language() string {
	if e == nil {
		return ""
	}
	return e.Language
}

// Input is the value handed to one filter of a chain.
type Input struct {
	Value any
	// HTML reports that Value is markup produced by a preceding filter and
	// must be embedded verbatim.
	HTML bool
}

// Text returns the input as a string. Markup passes through, plain values
// are escaped when escape is set.
func (in Input) Text(escape bool) string {
	text := Stringify(in.Value)
	if escape && !in.HTML {
		return escapeText(text)
	}
	return text
}

// Filter renders one value. A false keep result means the value is omitted
// (for example a non-printable choice); the chain stops there.
type Filter interface {
	Name() string
	Kind() Kind
	Spec() Spec
	Config() Config
	Apply(in Input) (out string, keep bool, err error)
}

type applyFunc func(in Input) (string, bool, error)

type filter struct {
	name  string
	kind  Kind
	spec  Spec
	cfg   Config
	apply applyFunc
}

func (f *filter) Name() string   { return f.name }
func (f *filter) Kind() Kind     { return f.kind }
func (f *filter) Spec() Spec     { return f.spec }
func (f *filter) Config() Config { return f.cfg }

func (f *filter) Apply(in Input) (string, bool, error) {
	if subfield := f.cfg.Get(OptionSubfield); subfield != "" && !in.HTML {
		if m, ok := in.Value.(map[string]any); ok {
			if nested, err := datapath.Lookup(m, subfield); err == nil {
				in = Input{Value: Stringify(nested)}
			}
		}
	}
	return f.apply(in)
}
