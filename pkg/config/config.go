// Package config loads the settings shared by the renderer, the markup
// pre-renderer and the CLI from a JSON or YAML document.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-richtext/pkg/filters"
	"github.com/goliatone/go-richtext/pkg/markup"
	"github.com/goliatone/go-richtext/pkg/render"
	"github.com/goliatone/go-richtext/pkg/templates"
)

// ErrInvalidConfig wraps every validation failure reported by Load.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// DefaultRelativeDateThreshold is the number of days reldate renders as a
// relative phrase.
const DefaultRelativeDateThreshold = 7

// Config is the settings document.
type Config struct {
	ShowErrors            bool   `json:"show_errors" yaml:"show_errors"`
	ListSeparator         string `json:"list_separator" yaml:"list_separator"`
	MaxIterations         int    `json:"max_iterations" yaml:"max_iterations" validate:"min=1,max=10000"`
	Language              string `json:"language" yaml:"language" validate:"omitempty,bcp47_language_tag"`
	Minify                bool   `json:"minify" yaml:"minify"`
	SanitizeDataObjects   bool   `json:"sanitize_data_objects" yaml:"sanitize_data_objects"`
	FaviconService        string `json:"favicon_service" yaml:"favicon_service" validate:"omitempty,contains=[host]"`
	ORCIDIcon             string `json:"orcid_icon" yaml:"orcid_icon"`
	RelativeDateThreshold int    `json:"relative_date_threshold" yaml:"relative_date_threshold" validate:"min=1,max=36500"`
	TOCTitle              string `json:"toc_title" yaml:"toc_title"`
	BackToTopLabel        string `json:"back_to_top_label" yaml:"back_to_top_label"`
	Theme                 Theme  `json:"theme" yaml:"theme"`
}

// Theme selects the element template overrides and colour tokens.
type Theme struct {
	Name    string `json:"name" yaml:"name" validate:"required_with=Variant Manifest"`
	Variant string `json:"variant" yaml:"variant"`
	// Manifest is the path of a theme manifest document. Relative paths are
	// resolved against the directory of the config file.
	Manifest string `json:"manifest" yaml:"manifest"`
}

// Default returns the configuration used when no document is given.
func Default() Config {
	return Config{
		ListSeparator:         render.DefaultSeparator,
		MaxIterations:         markup.MaxIterations,
		FaviconService:        filters.DefaultFaviconService,
		ORCIDIcon:             markup.DefaultORCIDIcon,
		RelativeDateThreshold: DefaultRelativeDateThreshold,
		TOCTitle:              "Table of Contents",
		BackToTopLabel:        "Back to top",
	}
}

var validate = validator.New()

// Load parses data over Default and validates the result. source names the
// document in error messages.
func Load(data []byte, source string) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := decodeDocument(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", source, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", source, err)
	}
	return cfg, nil
}

// LoadFile reads and parses the document at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Load(data, path)
	if err != nil {
		return Config{}, err
	}
	if manifest := cfg.Theme.Manifest; manifest != "" && !filepath.IsAbs(manifest) {
		cfg.Theme.Manifest = filepath.Join(filepath.Dir(path), manifest)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}
	return nil
}

// decodeDocument tries JSON first and falls back to YAML over the initial
// value of out.
func decodeDocument[T any](data []byte, out *T) error {
	snapshot := *out
	if err := json.Unmarshal(data, out); err == nil {
		return nil
	}
	*out = snapshot
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.New("invalid JSON or YAML")
	}
	return nil
}

func describe(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		if idx := strings.Index(field, "."); idx >= 0 {
			field = field[idx+1:]
		}
		switch e.Tag() {
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, e.Param()))
		case "bcp47_language_tag":
			msgs = append(msgs, fmt.Sprintf("%s must be a BCP 47 language tag", field))
		case "contains":
			msgs = append(msgs, fmt.Sprintf("%s must contain %s", field, e.Param()))
		case "required_with":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

// RenderOptions translates the expression settings into render options.
func (c Config) RenderOptions() []render.Option {
	return []render.Option{
		render.WithShowErrors(c.ShowErrors),
		render.WithSeparator(c.ListSeparator),
		render.WithLanguage(c.Language),
		render.WithFaviconService(c.FaviconService),
		render.WithRelativeDateThreshold(c.RelativeDateThreshold),
	}
}

// MarkupOptions translates the pre-render settings into markup options. A
// nil selector leaves the embedded element templates in place.
func (c Config) MarkupOptions(selector theme.ThemeSelector) []markup.Option {
	opts := []markup.Option{
		markup.WithMaxIterations(c.MaxIterations),
		markup.WithMinify(c.Minify),
		markup.WithSanitizedDataObjects(c.SanitizeDataObjects),
		markup.WithORCIDIcon(c.ORCIDIcon),
		markup.WithTOCTitle(c.TOCTitle),
		markup.WithBackToTopLabel(c.BackToTopLabel),
	}
	if selector != nil {
		opts = append(opts, markup.WithThemeSelector(selector, c.Theme.Name, c.Theme.Variant))
	}
	return opts
}

// ThemeSelector loads the configured manifest. It returns nil when no
// manifest is configured.
func (c Config) ThemeSelector() (theme.ThemeSelector, error) {
	if strings.TrimSpace(c.Theme.Manifest) == "" {
		return nil, nil
	}
	manifest, err := LoadManifestFile(c.Theme.Manifest)
	if err != nil {
		return nil, err
	}
	if c.Theme.Name != "" && manifest.Name != c.Theme.Name {
		return nil, fmt.Errorf("%w: %q (manifest %s declares %q)", templates.ErrThemeNotFound, c.Theme.Name, c.Theme.Manifest, manifest.Name)
	}
	return templates.NewManifestSelector(manifest), nil
}
