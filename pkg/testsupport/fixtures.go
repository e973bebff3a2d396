// Package testsupport holds fixture helpers shared by package tests.
package testsupport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-richtext/pkg/lookup"
)

// MustDecodeData decodes an inline JSON or YAML data document.
func MustDecodeData(t *testing.T, raw string) any {
	t.Helper()

	doc, err := DecodeData([]byte(raw))
	if err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return doc
}

// DecodeData parses JSON first and falls back to YAML. Numbers come out as
// float64 either way.
func DecodeData(raw []byte) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("testsupport: data document is empty")
	}
	var doc any
	jsonErr := json.Unmarshal(raw, &doc)
	if jsonErr == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("testsupport: decode data: json: %v; yaml: %w", jsonErr, err)
	}
	return floatNumbers(doc), nil
}

func floatNumbers(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			v[key] = floatNumbers(item)
		}
	case []any:
		for i, item := range v {
			v[i] = floatNumbers(item)
		}
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return value
}

// MustLoadCatalog loads a collaborator catalog fixture.
func MustLoadCatalog(t *testing.T, path string) *lookup.Catalog {
	t.Helper()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	catalog, err := lookup.LoadCatalog(raw, path)
	if err != nil {
		t.Fatalf("load catalog %s: %v", path, err)
	}
	return catalog
}

// MustReadGoldenString returns the content of a golden file.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// AssertGolden compares got against the golden file at path. With
// UPDATE_GOLDENS set the file is rewritten instead.
func AssertGolden(t *testing.T, path, got string) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		return
	}
	if diff := cmp.Diff(MustReadGoldenString(t, path), got); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", filepath.Base(path), diff)
	}
}
