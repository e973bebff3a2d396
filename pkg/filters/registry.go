package filters

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-richtext/pkg/expr"
)

// Kind identifies a filter implementation. The set is closed; names are
// mapped onto kinds by the Registry.
type Kind int

const (
	KindUpper Kind = iota + 1
	KindLower
	KindTitle
	KindCapitalize
	KindBool
	KindFieldify
	KindFieldInfo
	KindList
	KindBadge
	KindPill
	KindImage
	KindDate
	KindRelativeDate
	KindFormat
	KindReadable
	KindCompact
	KindLinkify
	KindIframe
	KindWeblinks
	KindMap
	KindTruncate
	KindDefault
	KindMarkdown
)

type definition struct {
	name  string
	spec  Spec
	build func(name string, cfg Config, env *Env) (applyFunc, error)
}

var definitions = map[Kind]definition{
	KindUpper:      {name: "upper", build: buildCase(KindUpper)},
	KindLower:      {name: "lower", build: buildCase(KindLower)},
	KindTitle:      {name: "title", build: buildCase(KindTitle)},
	KindCapitalize: {name: "capitalize", build: buildCase(KindCapitalize)},
	KindBool: {
		name:  "bool",
		spec:  Spec{RequiredOptions: []string{"o0", "o1"}},
		build: buildBool,
	},
	KindFieldify: {
		name:  "fieldify",
		spec:  Spec{RequiredOptions: []string{"o0"}},
		build: buildFieldify(false),
	},
	KindFieldInfo: {
		name:  "fieldinfo",
		spec:  Spec{RequiredOptions: []string{"o0"}},
		build: buildFieldify(true),
	},
	KindList: {
		name:  "list",
		spec:  Spec{AllowedOptions: []string{"type", "class"}, WholeList: true, Markup: true},
		build: buildList,
	},
	KindBadge: {
		name:  "badge",
		spec:  Spec{AllowedOptions: badgeOptions, Markup: true},
		build: buildBadge(false),
	},
	KindPill: {
		name:  "pill",
		spec:  Spec{AllowedOptions: badgeOptions, Markup: true},
		build: buildBadge(true),
	},
	KindImage: {
		name: "img",
		spec: Spec{
			AllowedOptions: []string{"url", "iiif_resize", "iiif_region", "width", "height", "alt", "class", "style", "title"},
			Markup:         true,
		},
		build: buildImage,
	},
	KindDate: {
		name:  "date",
		spec:  Spec{RequiredOptions: []string{"o0"}, AllowedOptions: []string{"format"}},
		build: buildDate,
	},
	KindRelativeDate: {
		name:  "reldate",
		spec:  Spec{AllowedOptions: []string{"threshold", "format"}},
		build: buildRelativeDate,
	},
	KindFormat: {
		name:  "format",
		spec:  Spec{RequiredOptions: []string{"o0"}},
		build: buildFormat,
	},
	KindReadable: {
		name:  "readable",
		spec:  Spec{AllowedOptions: []string{"sep", "dec", "decimals"}},
		build: buildReadable,
	},
	KindCompact: {
		name:  "compact",
		spec:  Spec{AllowedOptions: []string{"precision"}},
		build: buildCompact,
	},
	KindLinkify: {
		name: "linkify",
		spec: Spec{
			OneOf:          []string{"url", "page", "object"},
			AllowedOptions: []string{"query", "target", "class", "title", "rel"},
			Markup:         true,
		},
		build: buildLinkify,
	},
	KindIframe: {
		name: "iframe",
		spec: Spec{
			AllowedOptions: []string{"width", "height", "title", "frameborder", "allowfullscreen",
				"sandbox", "loading", "referrerpolicy", "class", "style", "src"},
			Markup: true,
		},
		build: buildIframe,
	},
	KindWeblinks: {
		name:  "weblinks",
		spec:  Spec{AllowedOptions: []string{"favicon", "target", "class", "label"}, WholeList: true, Markup: true},
		build: buildWeblinks,
	},
	KindMap: {
		name:  "map",
		spec:  Spec{AllowedOptions: []string{"height", "zoom", "points", "group", "label", "class"}, WholeList: true, Markup: true},
		build: buildMap,
	},
	KindTruncate: {
		name:  "truncate",
		spec:  Spec{AllowedOptions: []string{"length", "more", "less"}, Markup: true},
		build: buildTruncate,
	},
	KindDefault: {
		name:  "default",
		spec:  Spec{AllowedOptions: []string{"o0"}},
		build: buildDefault,
	},
	KindMarkdown: {
		name:  "markdown",
		spec:  Spec{Markup: true},
		build: buildMarkdown,
	},
}

// String returns the canonical filter name of the kind.
func (k Kind) String() string {
	if def, ok := definitions[k]; ok {
		return def.name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Registry maps filter names onto kinds. The zero value is empty; use
// NewRegistry for one preloaded with the built-in names.
type Registry struct {
	mu    sync.RWMutex
	names map[string]Kind
}

// NewRegistry constructs a registry with every built-in filter registered
// under its canonical name.
func NewRegistry() *Registry {
	reg := &Registry{names: make(map[string]Kind, len(definitions))}
	for kind, def := range definitions {
		reg.names[def.name] = kind
	}
	return reg
}

// Alias registers name as an additional name for kind. Re-registering a name
// replaces the previous mapping.
func (r *Registry) Alias(name string, kind Kind) error {
	if r == nil {
		return fmt.Errorf("filters: nil registry")
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("filters: alias name required")
	}
	if _, ok := definitions[kind]; !ok {
		return fmt.Errorf("filters: unknown filter kind %d", int(kind))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names == nil {
		r.names = make(map[string]Kind)
	}
	r.names[trimmed] = kind
	return nil
}

// Kind returns the kind registered under name.
func (r *Registry) Kind(name string) (Kind, bool) {
	if r == nil {
		return 0, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	kind, ok := r.names[strings.TrimSpace(name)]
	return kind, ok
}

// Spec returns the configuration spec of the filter registered under name.
func (r *Registry) Spec(name string) (Spec, bool) {
	kind, ok := r.Kind(name)
	if !ok {
		return Spec{}, false
	}
	return definitions[kind].spec, true
}

// Names lists the registered filter names in lexical order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Build constructs the filter for one invocation, validating its
// configuration against the filter's spec.
func (r *Registry) Build(invocation expr.FilterInvocation, env *Env) (Filter, error) {
	kind, ok := r.Kind(invocation.Name)
	if !ok {
		return nil, configError(invocation.Name, "", "is not registered")
	}
	def := definitions[kind]
	cfg := Config(invocation.Config())
	if err := def.spec.validate(invocation.Name, cfg); err != nil {
		return nil, err
	}
	apply, err := def.build(invocation.Name, cfg, env)
	if err != nil {
		return nil, err
	}
	return &filter{
		name:  invocation.Name,
		kind:  kind,
		spec:  def.spec,
		cfg:   cfg,
		apply: apply,
	}, nil
}

// BuildChain constructs every filter of a chain. The first configuration
// error aborts construction.
func (r *Registry) BuildChain(invocations []expr.FilterInvocation, env *Env) (Chain, error) {
	chain := make(Chain, 0, len(invocations))
	for _, invocation := range invocations {
		f, err := r.Build(invocation, env)
		if err != nil {
			return nil, err
		}
		chain = append(chain, f)
	}
	return chain, nil
}

// Chain is an ordered filter chain.
type Chain []Filter

// WholeList reports whether the leading filter consumes sequences as a whole.
func (c Chain) WholeList() bool {
	return len(c) > 0 && c[0].Spec().WholeList
}

// Limit returns the first `limit` option of the chain, or 0.
func (c Chain) Limit() int {
	for _, f := range c {
		if n, err := f.Config().intOption(f.Name(), OptionLimit, 0, 0, 1<<30); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// Apply runs value through every filter in order. The chain stops at the
// first filter that omits its value.
func (c Chain) Apply(value any) (string, bool, error) {
	in := Input{Value: value}
	if len(c) == 0 {
		return Stringify(value), true, nil
	}
	var out string
	for _, f := range c {
		rendered, keep, err := f.Apply(in)
		if err != nil {
			return "", false, err
		}
		if !keep {
			return "", false, nil
		}
		out = rendered
		in = Input{Value: rendered, HTML: in.HTML || f.Spec().Markup}
	}
	return out, true, nil
}
