package config

import (
	"fmt"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"
)

type manifestFile struct {
	Name      string                 `json:"name" yaml:"name" validate:"required"`
	Version   string                 `json:"version" yaml:"version"`
	Tokens    map[string]string      `json:"tokens" yaml:"tokens"`
	Templates map[string]string      `json:"templates" yaml:"templates"`
	Variants  map[string]variantFile `json:"variants" yaml:"variants" validate:"dive"`
}

type variantFile struct {
	Tokens    map[string]string `json:"tokens" yaml:"tokens"`
	Templates map[string]string `json:"templates" yaml:"templates"`
}

// LoadManifest parses a JSON or YAML theme manifest. Only the template and
// token maps are read; assets are served elsewhere.
func LoadManifest(data []byte, source string) (*theme.Manifest, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("config: manifest %s is empty", source)
	}
	var doc manifestFile
	if err := decodeDocument(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse manifest %s: %w", source, err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: manifest %s: %s", ErrInvalidConfig, source, describe(err))
	}

	manifest := &theme.Manifest{
		Name:      strings.TrimSpace(doc.Name),
		Version:   doc.Version,
		Tokens:    doc.Tokens,
		Templates: doc.Templates,
	}
	if len(doc.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(doc.Variants))
		for name, variant := range doc.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    variant.Tokens,
				Templates: variant.Templates,
			}
		}
	}
	return manifest, nil
}

// LoadManifestFile reads the manifest at path.
func LoadManifestFile(path string) (*theme.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read manifest %s: %w", path, err)
	}
	return LoadManifest(data, path)
}
