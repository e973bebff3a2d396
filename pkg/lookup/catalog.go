package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// ErrFieldNotFound is returned by ResolveChoice when the field itself is
// unknown. Unknown codes of a known field return ErrNotFound.
var ErrFieldNotFound = errors.New("lookup: field not found")

const defaultRecordURL = "/results/{config}/record/{id}"

// Source is a configured external data source: the record detail URL pattern
// and a fixed set of records keyed by object id.
type Source struct {
	RecordURL string                    `json:"record_url,omitempty" yaml:"record_url,omitempty"`
	Records   map[string]map[string]any `json:"records,omitempty" yaml:"records,omitempty"`
}

// Catalog is an in-memory implementation of every resolver in this package.
// It is safe for concurrent use; renders only ever read from it.
type Catalog struct {
	mu       sync.RWMutex
	fields   map[string]map[string]Choice
	pages    map[string]Link
	files    map[string]Link
	elements map[string]Element
	sources  map[string]Source
}

var (
	_ ChoiceResolver  = (*Catalog)(nil)
	_ PageResolver    = (*Catalog)(nil)
	_ FileResolver    = (*Catalog)(nil)
	_ ElementResolver = (*Catalog)(nil)
	_ RecordFetcher   = (*Catalog)(nil)
	_ RecordLinker    = (*Catalog)(nil)
)

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		fields:   make(map[string]map[string]Choice),
		pages:    make(map[string]Link),
		files:    make(map[string]Link),
		elements: make(map[string]Element),
		sources:  make(map[string]Source),
	}
}

// SetChoices replaces the choice list of field.
func (c *Catalog) SetChoices(field string, choices ...Choice) {
	field = strings.TrimSpace(field)
	byKey := make(map[string]Choice, len(choices))
	for _, choice := range choices {
		byKey[choice.Key] = choice
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields[field] = byKey
}

// AddPage registers a page under its view name.
func (c *Catalog) AddPage(viewName string, link Link) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[strings.TrimSpace(viewName)] = link
}

// AddFile registers an uploaded file under its id.
func (c *Catalog) AddFile(id string, link Link) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[strings.TrimSpace(id)] = link
}

// AddElement registers a UI element. The element name defaults to name.
func (c *Catalog) AddElement(name string, element Element) {
	name = strings.TrimSpace(name)
	if element.Name == "" {
		element.Name = name
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elements[name] = element
}

// AddSource registers an external data source under its search config name.
func (c *Catalog) AddSource(searchConfig string, source Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[strings.TrimSpace(searchConfig)] = source
}

// ResolveChoice implements ChoiceResolver.
func (c *Catalog) ResolveChoice(field, code string) (Choice, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	choices, ok := c.fields[field]
	if !ok {
		return Choice{}, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}
	choice, ok := choices[code]
	if !ok {
		return Choice{}, fmt.Errorf("%w: choice %q of field %q", ErrNotFound, code, field)
	}
	return choice, nil
}

// ResolvePage implements PageResolver.
func (c *Catalog) ResolvePage(ctx context.Context, viewName string) (Link, error) {
	if err := ctx.Err(); err != nil {
		return Link{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	link, ok := c.pages[viewName]
	if !ok {
		return Link{}, fmt.Errorf("%w: page %q", ErrNotFound, viewName)
	}
	return link, nil
}

// ResolveFile implements FileResolver.
func (c *Catalog) ResolveFile(ctx context.Context, id string) (Link, error) {
	if err := ctx.Err(); err != nil {
		return Link{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	link, ok := c.files[id]
	if !ok {
		return Link{}, fmt.Errorf("%w: file %q", ErrNotFound, id)
	}
	return link, nil
}

// ResolveElement implements ElementResolver. Items are returned ordered by
// their order index.
func (c *Catalog) ResolveElement(ctx context.Context, name string) (Element, error) {
	if err := ctx.Err(); err != nil {
		return Element{}, err
	}
	c.mu.RLock()
	element, ok := c.elements[name]
	c.mu.RUnlock()
	if !ok {
		return Element{}, fmt.Errorf("%w: element %q", ErrNotFound, name)
	}
	items := append([]ElementItem(nil), element.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].OrderIdx < items[j].OrderIdx
	})
	element.Items = items
	return element, nil
}

// FetchRecord implements RecordFetcher.
func (c *Catalog) FetchRecord(ctx context.Context, searchConfig, objectID string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	source, ok := c.sources[searchConfig]
	if !ok {
		return nil, fmt.Errorf("%w: search config %q", ErrNotFound, searchConfig)
	}
	record, ok := source.Records[objectID]
	if !ok {
		return nil, fmt.Errorf("%w: record %q in %q", ErrNotFound, objectID, searchConfig)
	}
	return record, nil
}

// RecordURL implements RecordLinker. Patterns may use {config} and {id}.
func (c *Catalog) RecordURL(searchConfig, objectID string) (string, error) {
	c.mu.RLock()
	source, ok := c.sources[searchConfig]
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: search config %q", ErrNotFound, searchConfig)
	}
	pattern := source.RecordURL
	if strings.TrimSpace(pattern) == "" {
		pattern = defaultRecordURL
	}
	replacer := strings.NewReplacer(
		"{config}", url.PathEscape(searchConfig),
		"{id}", url.PathEscape(objectID),
	)
	return replacer.Replace(pattern), nil
}
