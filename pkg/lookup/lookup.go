// Package lookup defines the read-only collaborators the renderers consult to
// resolve external references: choice lists of search fields, UI elements,
// pages, uploaded files and records of external data sources.
package lookup

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by every resolver when the requested entity does not
// exist.
var ErrNotFound = errors.New("lookup: not found")

// Choice is one entry of a search field's choice list.
type Choice struct {
	Key       string            `json:"key" yaml:"key" validate:"required"`
	Label     string            `json:"value" yaml:"value"`
	Labels    map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Info      string            `json:"info,omitempty" yaml:"info,omitempty"`
	Infos     map[string]string `json:"infos,omitempty" yaml:"infos,omitempty"`
	Printable *bool             `json:"is_printable,omitempty" yaml:"is_printable,omitempty"`
	Color     string            `json:"color,omitempty" yaml:"color,omitempty"`
}

// IsPrintable reports whether the choice may be shown. Choices are printable
// unless explicitly disabled.
func (c Choice) IsPrintable() bool {
	return c.Printable == nil || *c.Printable
}

// LabelFor returns the label for lang, falling back to the base label.
func (c Choice) LabelFor(lang string) string {
	return localized(c.Label, c.Labels, lang)
}

// InfoFor returns the info text for lang, falling back to the base info.
func (c Choice) InfoFor(lang string) string {
	return localized(c.Info, c.Infos, lang)
}

func localized(base string, values map[string]string, lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang != "" && len(values) > 0 {
		if v := strings.TrimSpace(values[lang]); v != "" {
			return v
		}
		if idx := strings.IndexAny(lang, "-_"); idx > 0 {
			if v := strings.TrimSpace(values[lang[:idx]]); v != "" {
				return v
			}
		}
	}
	return base
}

// ChoiceResolver resolves a raw code of a choice field. Implementations must
// be safe for concurrent reads.
type ChoiceResolver interface {
	ResolveChoice(field, code string) (Choice, error)
}

// Link is a resolved page or file reference.
type Link struct {
	URL   string `json:"url" yaml:"url" validate:"required"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// PageResolver resolves internal pages by view name.
type PageResolver interface {
	ResolvePage(ctx context.Context, viewName string) (Link, error)
}

// FileResolver resolves uploaded files by id.
type FileResolver interface {
	ResolveFile(ctx context.Context, id string) (Link, error)
}

// ElementItem is one entry of a UI element (slide, card, team member, ...).
type ElementItem struct {
	Title    string         `json:"title,omitempty" yaml:"title,omitempty"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty"`
	Image    string         `json:"image,omitempty" yaml:"image,omitempty"`
	URL      string         `json:"url,omitempty" yaml:"url,omitempty"`
	Caption  string         `json:"caption,omitempty" yaml:"caption,omitempty"`
	Extra    map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
	OrderIdx int            `json:"order_idx,omitempty" yaml:"order_idx,omitempty"`
}

// DataObject configures a data_object element: one record fetched from an
// external data source and formatted with a template expression.
type DataObject struct {
	SearchConfig string `json:"search_config" yaml:"search_config" validate:"required"`
	ObjectID     string `json:"object_id" yaml:"object_id" validate:"required"`
	Expression   string `json:"expression" yaml:"expression" validate:"required"`
}

// Element describes a UI element embeddable via [[element|name]].
type Element struct {
	Name           string         `json:"name" yaml:"name"`
	Type           string         `json:"type" yaml:"type" validate:"required"`
	Label          string         `json:"label,omitempty" yaml:"label,omitempty"`
	ShowIndicators bool           `json:"show_indicators,omitempty" yaml:"show_indicators,omitempty"`
	Autoplay       bool           `json:"autoplay,omitempty" yaml:"autoplay,omitempty"`
	Items          []ElementItem  `json:"items,omitempty" yaml:"items,omitempty"`
	DataObject     *DataObject    `json:"data_object,omitempty" yaml:"data_object,omitempty"`
	Config         map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// ElementResolver resolves UI elements by name.
type ElementResolver interface {
	ResolveElement(ctx context.Context, name string) (Element, error)
}

// RecordFetcher fetches one record of a configured external data source.
type RecordFetcher interface {
	FetchRecord(ctx context.Context, searchConfig, objectID string) (map[string]any, error)
}

// RecordLinker builds the URL of a record's detail view.
type RecordLinker interface {
	RecordURL(searchConfig, objectID string) (string, error)
}
