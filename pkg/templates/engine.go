package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-richtext/internal/slug"
)

// DefaultExtension is appended to template names that lack it.
const DefaultExtension = ".tmpl"

var errNilEngine = errors.New("templates: engine is nil")

// Option configures the Engine before construction.
type Option func(*engineSettings)

type engineSettings struct {
	sources   []fs.FS
	extension string
	globals   map[string]any

	goTemplate []gotemplatepkg.Option
}

// WithDir adds a directory on disk as a template source.
func WithDir(dir string) Option {
	return func(s *engineSettings) {
		if dir = strings.TrimSpace(dir); dir != "" {
			s.sources = append(s.sources, os.DirFS(dir))
		}
	}
}

// WithFS adds an fs.FS template source. Sources are searched in the order
// they were added, so a theme FS added first shadows the embedded templates.
func WithFS(files fs.FS) Option {
	return func(s *engineSettings) {
		if files != nil {
			s.sources = append(s.sources, files)
		}
	}
}

// WithExtension overrides DefaultExtension.
func WithExtension(ext string) Option {
	return func(s *engineSettings) {
		ext = strings.TrimSpace(ext)
		switch {
		case ext == "":
		case ext[0] == '.':
			s.extension = ext
		default:
			s.extension = "." + ext
		}
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(s *engineSettings) {
		for key, value := range data {
			if key = strings.TrimSpace(key); key != "" {
				if s.globals == nil {
					s.globals = make(map[string]any, len(data))
				}
				s.globals[key] = value
			}
		}
	}
}

// WithGoTemplateOptions records go-template engine options. The pongo2
// Engine does not interpret them; GoTemplateOptions hands them back so a
// go-template renderer can be built from the same settings and swapped in
// behind TemplateRenderer.
func WithGoTemplateOptions(opts ...gotemplatepkg.Option) Option {
	return func(s *engineSettings) {
		s.goTemplate = append(s.goTemplate, opts...)
	}
}

// Engine executes pongo2 templates looked up in its sources. Parsed named
// templates are cached; inline content is parsed on every call.
type Engine struct {
	set *pongo2.TemplateSet
	ext string

	mu     sync.RWMutex
	parsed map[string]*pongo2.Template

	goTemplate []gotemplatepkg.Option
}

var _ TemplateRenderer = (*Engine)(nil)

// New builds an Engine. It falls back to the embedded element templates
// when no source is configured.
func New(options ...Option) (*Engine, error) {
	s := engineSettings{extension: DefaultExtension}
	for _, opt := range options {
		if opt != nil {
			opt(&s)
		}
	}
	if len(s.sources) == 0 {
		s.sources = []fs.FS{ElementsFS()}
	}

	loaders := make([]pongo2.TemplateLoader, 0, len(s.sources))
	for _, source := range s.sources {
		loaders = append(loaders, pongo2.NewFSLoader(source))
	}
	installBuiltinFilters()

	e := &Engine{
		set:    pongo2.NewSet("richtext", loaders...),
		ext:    s.extension,
		parsed: make(map[string]*pongo2.Template),

		goTemplate: s.goTemplate,
	}
	if len(s.globals) > 0 {
		if err := e.GlobalContext(s.globals); err != nil {
			return nil, fmt.Errorf("templates: global data: %w", err)
		}
	}
	return e, nil
}

// GoTemplateOptions returns the options recorded with WithGoTemplateOptions.
func (e *Engine) GoTemplateOptions() []gotemplatepkg.Option {
	return append([]gotemplatepkg.Option(nil), e.goTemplate...)
}

// Render executes name as inline content when it carries template delimiters
// and as a named template otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate executes the template called name.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	if !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}
	tpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	return e.exec(tpl, "template "+name, data, out)
}

// RenderString parses and executes content.
func (e *Engine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	tpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("templates: parse inline template: %w", err)
	}
	return e.exec(tpl, "inline template", data, out)
}

// RegisterFilter adds a pongo2 filter. Filters are shared by every pongo2
// template in the process, so a name can only be registered once.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("templates: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("templates: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the values every template sees.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errNilEngine
	}
	if data == nil {
		return nil
	}
	values, err := convertToContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = pongo2.Context{}
	}
	e.set.Globals.Update(values)
	return nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tpl, ok := e.parsed[name]
	e.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	tpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("templates: load %q: %w", name, err)
	}
	e.mu.Lock()
	if cached, ok := e.parsed[name]; ok {
		tpl = cached
	} else {
		e.parsed[name] = tpl
	}
	e.mu.Unlock()
	return tpl, nil
}

func (e *Engine) exec(tpl *pongo2.Template, label string, data any, out []io.Writer) (string, error) {
	values, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("templates: %s data: %w", label, err)
	}

	e.mu.RLock()
	rendered, err := tpl.Execute(values)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("templates: execute %s: %w", label, err)
	}
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return rendered, err
		}
	}
	return rendered, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

// convertToContext snapshots data through encoding/json so templates address
// structs by their json tags, exactly like decoded documents.
func convertToContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	values := pongo2.Context{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("expected an object, got %s", firstToken(raw))
	}
	for key := range values {
		if strings.TrimSpace(key) == "" {
			delete(values, key)
		}
	}
	return values, nil
}

func firstToken(raw []byte) string {
	if len(raw) > 16 {
		return string(raw[:16]) + "..."
	}
	return string(raw)
}

var builtinFilters = map[string]pongo2.FilterFunction{
	"trim": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(strings.TrimSpace(in.String())), nil
	},
	"slug": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(slug.Make(in.String())), nil
	},
	// tojson feeds data-* attributes; autoescaping still applies.
	"tojson": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		payload, err := json.Marshal(in.Interface())
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:tojson", OrigError: err}
		}
		return pongo2.AsValue(string(payload)), nil
	},
}

var builtinOnce sync.Once

func installBuiltinFilters() {
	builtinOnce.Do(func() {
		for name, fn := range builtinFilters {
			if !pongo2.FilterExists(name) {
				_ = pongo2.RegisterFilter(name, fn)
			}
		}
	})
}
