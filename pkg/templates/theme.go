package templates

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// ErrThemeNotFound reports a theme name the selector does not know.
var ErrThemeNotFound = errors.New("templates: theme not found")

// ThemeSettings is the part of a go-theme selection element rendering uses:
// template overrides keyed `elements.<type>` and colour tokens.
type ThemeSettings struct {
	Theme     string
	Variant   string
	Templates map[string]string
	Tokens    map[string]string
}

// SettingsFromSelection merges the manifest templates and tokens with those of
// the selected variant. Variant values win.
func SettingsFromSelection(selection *theme.Selection) ThemeSettings {
	if selection == nil {
		return ThemeSettings{}
	}
	settings := ThemeSettings{
		Theme:   selection.Theme,
		Variant: selection.Variant,
	}
	manifest := selection.Manifest
	if manifest == nil {
		return settings
	}
	settings.Templates = mergeStrings(manifest.Templates, nil)
	settings.Tokens = mergeStrings(manifest.Tokens, nil)
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		settings.Templates = mergeStrings(settings.Templates, variant.Templates)
		settings.Tokens = mergeStrings(settings.Tokens, variant.Tokens)
	}
	return settings
}

// SelectTheme resolves name/variant through selector.
func SelectTheme(selector theme.ThemeSelector, name, variant string) (ThemeSettings, error) {
	if selector == nil {
		return ThemeSettings{}, nil
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return ThemeSettings{}, fmt.Errorf("templates: select theme %q/%q: %w", name, variant, err)
	}
	return SettingsFromSelection(selection), nil
}

// ManifestSelector is a theme.ThemeSelector over a fixed set of manifests.
// The first registered manifest is the default theme.
type ManifestSelector struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests by name; nil and unnamed manifests
// are skipped.
func NewManifestSelector(manifests ...*theme.Manifest) *ManifestSelector {
	s := &ManifestSelector{manifests: make(map[string]*theme.Manifest)}
	for _, manifest := range manifests {
		s.Add(manifest)
	}
	return s
}

// Add registers or replaces a manifest.
func (s *ManifestSelector) Add(manifest *theme.Manifest) {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name := strings.TrimSpace(manifest.Name)
	if s.fallback == "" {
		s.fallback = name
	}
	s.manifests[name] = manifest
}

// Select implements theme.ThemeSelector. An empty name selects the default
// theme; an unknown variant selects the base manifest.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = s.fallback
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	variant = strings.TrimSpace(variant)
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

func mergeStrings(base, overlay map[string]string) map[string]string {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overlay {
		out[key] = value
	}
	return out
}
