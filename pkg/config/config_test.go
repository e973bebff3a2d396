package config

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-richtext/pkg/lookup"
	"github.com/goliatone/go-richtext/pkg/markup"
	"github.com/goliatone/go-richtext/pkg/render"
	"github.com/goliatone/go-richtext/pkg/templates"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(nil, "empty")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadJSONKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load([]byte(`{"show_errors": true, "language": "fr"}`), "inline.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	want.ShowErrors = true
	want.Language = "fr"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join("testdata", "richtext.yaml")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}

	want := Default()
	want.ShowErrors = true
	want.ListSeparator = " | "
	want.MaxIterations = 20
	want.Language = "de-CH"
	want.Minify = true
	want.ORCIDIcon = "/icons/orcid.svg"
	want.RelativeDateThreshold = 3
	want.Theme = Theme{Name: "acme", Variant: "dark", Manifest: filepath.Join("testdata", "theme.yaml")}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		doc  string
		want string
	}{
		"iterations":    {doc: `max_iterations: 0`, want: "MaxIterations must be at least 1"},
		"language":      {doc: `language: "not a tag!"`, want: "Language must be a BCP 47 language tag"},
		"favicon":       {doc: `favicon_service: https://icons.example.com/`, want: "FaviconService must contain [host]"},
		"threshold":     {doc: `relative_date_threshold: 40000`, want: "RelativeDateThreshold must be at most 36500"},
		"theme name":    {doc: "theme:\n  variant: dark", want: "Theme.Name is required"},
		"not a mapping": {doc: `[1, 2`, want: "invalid JSON or YAML"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Load([]byte(tc.doc), name)
			if err == nil {
				t.Fatalf("expected error for %q", tc.doc)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}

	_, err := Load([]byte(`max_iterations: -1`), "negative")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRenderOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.ListSeparator = " | "
	cfg.ShowErrors = true

	r := render.New(cfg.RenderOptions()...)
	got := r.Render("{tags} {missing}", map[string]any{"tags": []any{"a", "b"}})
	if !strings.HasPrefix(got, "a | b ") {
		t.Fatalf("expected configured separator, got %q", got)
	}
	if !strings.Contains(got, `class="alert alert-danger"`) {
		t.Fatalf("expected error notice, got %q", got)
	}
}

func TestMarkupOptionsWithTheme(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFile(filepath.Join("testdata", "richtext.yaml"))
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	selector, err := cfg.ThemeSelector()
	if err != nil {
		t.Fatalf("theme selector: %v", err)
	}

	catalog := lookup.NewCatalog()
	catalog.AddElement("hero", lookup.Element{Type: templates.TypeBanner, Label: "Welcome"})

	opts := append(cfg.MarkupOptions(selector), markup.WithElements(catalog))
	p, err := markup.New(opts...)
	if err != nil {
		t.Fatalf("new prerenderer: %v", err)
	}
	out, err := p.PreRender(context.Background(), "[[element|hero]]")
	if err != nil {
		t.Fatalf("prerender: %v", err)
	}
	if !strings.Contains(out, `class="acme-banner"`) || !strings.Contains(out, "Welcome") {
		t.Fatalf("expected themed banner, got %q", out)
	}
}

func TestThemeSelector(t *testing.T) {
	t.Parallel()

	selector, err := Default().ThemeSelector()
	if err != nil || selector != nil {
		t.Fatalf("expected no selector without a manifest, got %v, %v", selector, err)
	}

	cfg := Default()
	cfg.Theme = Theme{Name: "other", Manifest: filepath.Join("testdata", "theme.yaml")}
	if _, err := cfg.ThemeSelector(); !errors.Is(err, templates.ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}

	cfg.Theme.Name = "acme"
	selector, err = cfg.ThemeSelector()
	if err != nil {
		t.Fatalf("theme selector: %v", err)
	}
	settings, err := templates.SelectTheme(selector, "acme", "dark")
	if err != nil {
		t.Fatalf("select theme: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"brand": "#000000"}, settings.Tokens); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadManifestRequiresName(t *testing.T) {
	t.Parallel()

	if _, err := LoadManifest([]byte("version: 1.0.0"), "nameless.yaml"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := LoadManifest(nil, "empty.yaml"); err == nil {
		t.Fatal("expected error for empty manifest")
	}
}
