package lookup

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

const catalogYAML = `
fields:
  status:
    choices:
      - key: draft
        value: Draft
        labels:
          de: Entwurf
        color: warning
      - key: hidden
        value: Hidden
        is_printable: false
pages:
  about:
    url: /about
    title: About us
files:
  "17":
    url: /media/report.pdf
    title: Report
elements:
  hero:
    type: jumbotron
    label: Welcome
    items:
      - title: second
        order_idx: 2
      - title: first
        order_idx: 1
sources:
  letters:
    record_url: /letters/{id}
    records:
      L1:
        title: First letter
`

func TestLoadCatalog_YAML(t *testing.T) {
	t.Parallel()

	catalog, err := LoadCatalog([]byte(catalogYAML), "catalog.yaml")
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}

	choice, err := catalog.ResolveChoice("status", "draft")
	if err != nil {
		t.Fatalf("ResolveChoice returned error: %v", err)
	}
	if got := choice.LabelFor("de-CH"); got != "Entwurf" {
		t.Fatalf("LabelFor(de-CH) = %q, want Entwurf", got)
	}
	if got := choice.LabelFor("fr"); got != "Draft" {
		t.Fatalf("LabelFor(fr) = %q, want Draft", got)
	}

	hidden, err := catalog.ResolveChoice("status", "hidden")
	if err != nil {
		t.Fatalf("ResolveChoice(hidden) returned error: %v", err)
	}
	if hidden.IsPrintable() {
		t.Fatalf("expected hidden choice to be non-printable")
	}

	ctx := context.Background()
	page, err := catalog.ResolvePage(ctx, "about")
	if err != nil {
		t.Fatalf("ResolvePage returned error: %v", err)
	}
	if diff := cmp.Diff(Link{URL: "/about", Title: "About us"}, page); diff != "" {
		t.Fatalf("page mismatch (-want +got):\n%s", diff)
	}

	element, err := catalog.ResolveElement(ctx, "hero")
	if err != nil {
		t.Fatalf("ResolveElement returned error: %v", err)
	}
	if element.Name != "hero" || element.Items[0].Title != "first" {
		t.Fatalf("unexpected element: %+v", element)
	}

	record, err := catalog.FetchRecord(ctx, "letters", "L1")
	if err != nil {
		t.Fatalf("FetchRecord returned error: %v", err)
	}
	if record["title"] != "First letter" {
		t.Fatalf("unexpected record: %+v", record)
	}
	link, err := catalog.RecordURL("letters", "L 1")
	if err != nil || link != "/letters/L%201" {
		t.Fatalf("RecordURL = %q, %v", link, err)
	}
}

func TestCatalog_NotFound(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	catalog.SetChoices("status", Choice{Key: "a", Label: "A"})
	ctx := context.Background()

	if _, err := catalog.ResolveChoice("unknown", "a"); !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
	if _, err := catalog.ResolveChoice("status", "b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := catalog.ResolvePage(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := catalog.ResolveFile(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := catalog.FetchRecord(ctx, "nope", "1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := catalog.ResolveElement(canceled, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCatalog_DefaultRecordURL(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	catalog.AddSource("letters", Source{})
	got, err := catalog.RecordURL("letters", "7")
	if err != nil {
		t.Fatalf("RecordURL returned error: %v", err)
	}
	if got != "/results/letters/record/7" {
		t.Fatalf("RecordURL = %q", got)
	}
}

func TestLoadCatalog_Validation(t *testing.T) {
	t.Parallel()

	_, err := LoadCatalog([]byte(`{"pages": {"about": {"title": "no url"}}}`), "bad.json")
	if err == nil {
		t.Fatalf("expected validation error for page without url")
	}
	if _, err := LoadCatalog([]byte("   "), "empty.json"); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := LoadCatalog([]byte("fields: [unterminated"), "broken.yaml"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadCatalogFS_MergesAndRejectsDuplicates(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"a.json":     {Data: []byte(`{"elements": {"hero": {"type": "banner"}}}`)},
		"b.yaml":     {Data: []byte("pages:\n  home:\n    url: /\n")},
		"readme.txt": {Data: []byte("ignored")},
	}
	catalog, err := LoadCatalogFS(fsys)
	if err != nil {
		t.Fatalf("LoadCatalogFS returned error: %v", err)
	}
	if _, err := catalog.ResolvePage(context.Background(), "home"); err != nil {
		t.Fatalf("expected merged page, got %v", err)
	}

	fsys["c.json"] = &fstest.MapFile{Data: []byte(`{"elements": {"hero": {"type": "card"}}}`)}
	if _, err := LoadCatalogFS(fsys); err == nil {
		t.Fatalf("expected duplicate element error")
	}
}
