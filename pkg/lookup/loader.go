package lookup

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Fields   map[string]fieldFile `json:"fields" yaml:"fields" validate:"dive"`
	Pages    map[string]Link      `json:"pages" yaml:"pages" validate:"dive"`
	Files    map[string]Link      `json:"files" yaml:"files" validate:"dive"`
	Elements map[string]Element   `json:"elements" yaml:"elements" validate:"dive"`
	Sources  map[string]Source    `json:"sources" yaml:"sources"`
}

type fieldFile struct {
	Choices []Choice `json:"choices" yaml:"choices" validate:"dive"`
}

var validate = validator.New()

// LoadCatalog parses a JSON or YAML catalog document.
func LoadCatalog(data []byte, source string) (*Catalog, error) {
	catalog := NewCatalog()
	if err := catalog.merge(data, source); err != nil {
		return nil, err
	}
	return catalog, nil
}

// LoadCatalogFS walks fsys and merges every JSON/YAML document into one
// catalog. Duplicate names across files are rejected.
func LoadCatalogFS(fsys fs.FS) (*Catalog, error) {
	catalog := NewCatalog()
	if fsys == nil {
		return catalog, nil
	}
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("lookup: read %s: %w", path, err)
		}
		return catalog.merge(data, path)
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

func (c *Catalog) merge(data []byte, source string) error {
	doc, err := parseCatalog(data, source)
	if err != nil {
		return err
	}
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("lookup: invalid catalog %s: %w", source, err)
	}

	c.mu.RLock()
	for name := range doc.Elements {
		if _, exists := c.elements[name]; exists {
			c.mu.RUnlock()
			return fmt.Errorf("lookup: duplicate element %q (file %s)", name, source)
		}
	}
	for name := range doc.Fields {
		if _, exists := c.fields[name]; exists {
			c.mu.RUnlock()
			return fmt.Errorf("lookup: duplicate field %q (file %s)", name, source)
		}
	}
	c.mu.RUnlock()

	for name, field := range doc.Fields {
		c.SetChoices(name, field.Choices...)
	}
	for name, link := range doc.Pages {
		c.AddPage(name, link)
	}
	for id, link := range doc.Files {
		c.AddFile(id, link)
	}
	for name, element := range doc.Elements {
		c.AddElement(name, element)
	}
	for name, src := range doc.Sources {
		c.AddSource(name, src)
	}
	return nil
}

func parseCatalog(data []byte, source string) (catalogFile, error) {
	var doc catalogFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return catalogFile{}, fmt.Errorf("lookup: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	doc = catalogFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return catalogFile{}, fmt.Errorf("lookup: parse %s: invalid JSON or YAML", source)
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
