package datapath

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fixture() map[string]any {
	return map[string]any{
		"title": "Letter",
		"a": map[string]any{
			"b": map[string]any{"c": 42.0},
		},
		"authors": []any{
			map[string]any{"name": "Ada", "roles": []any{"editor"}},
			map[string]any{"name": "Bob", "roles": []any{"author", "scribe"}},
			map[string]any{"alias": "anon"},
		},
		"tags": []any{"x", "y"},
	}
}

func TestResolve_Scalars(t *testing.T) {
	t.Parallel()

	doc := fixture()
	cases := []struct {
		keys []string
		want any
	}{
		{keys: []string{"title"}, want: "Letter"},
		{keys: []string{"a", "b", "c"}, want: 42.0},
		{keys: []string{"tags", "1"}, want: "y"},
		{keys: []string{"authors", "0", "name"}, want: "Ada"},
	}
	for _, tc := range cases {
		got, err := Resolve(doc, tc.keys)
		if err != nil {
			t.Fatalf("Resolve(%v) returned error: %v", tc.keys, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("Resolve(%v) mismatch (-want +got):\n%s", tc.keys, diff)
		}
	}
}

func TestResolve_Misses(t *testing.T) {
	t.Parallel()

	doc := fixture()
	if _, err := Resolve(doc, []string{"missing"}); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if _, err := Resolve(doc, []string{"a", "x", "c"}); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if _, err := Resolve(doc, []string{"tags", "5"}); !errors.Is(err, ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
	if _, err := Resolve(doc, []string{"title", "x"}); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound on scalar step, got %v", err)
	}
	if !IsMiss(ErrIndexNotFound) || IsMiss(errors.New("other")) {
		t.Fatalf("IsMiss misclassified errors")
	}
}

func TestResolve_FansOutOverSequences(t *testing.T) {
	t.Parallel()

	doc := fixture()
	got, err := Resolve(doc, []string{"authors", "name"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if diff := cmp.Diff([]any{"Ada", "Bob"}, got); diff != "" {
		t.Fatalf("fan-out mismatch (-want +got):\n%s", diff)
	}

	got, err = Resolve(doc, []string{"authors", "roles"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if diff := cmp.Diff([]any{"editor", "author", "scribe"}, got); diff != "" {
		t.Fatalf("flattened fan-out mismatch (-want +got):\n%s", diff)
	}

	if _, err := Resolve(doc, []string{"authors", "unknown"}); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	doc := fixture()
	doc["geo.lat"] = 1.5

	cases := map[string]any{
		"a.b.c":           42.0,
		"a[b][c]":         42.0,
		"authors[1].name": "Bob",
		"geo.lat":         1.5,
	}
	for path, want := range cases {
		got, err := Lookup(doc, path)
		if err != nil {
			t.Fatalf("Lookup(%q) returned error: %v", path, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Lookup(%q) mismatch (-want +got):\n%s", path, diff)
		}
	}

	first, err := First(doc, "tags")
	if err != nil || first != "x" {
		t.Fatalf("First(tags) = %v, %v", first, err)
	}
	if _, err := Lookup(doc, " "); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound for empty path, got %v", err)
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	if diff := cmp.Diff([]string{"a", "0", "b"}, Split("a[0].b")); diff != "" {
		t.Fatalf("Split mismatch (-want +got):\n%s", diff)
	}
	if Split("") != nil {
		t.Fatalf("expected nil for empty path")
	}
}
