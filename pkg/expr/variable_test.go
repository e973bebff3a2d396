package expr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_BasePaths(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want []string
	}{
		{raw: "title", want: []string{"title"}},
		{raw: "a.b.c", want: []string{"a", "b", "c"}},
		{raw: "a[b][c]", want: []string{"a", "b", "c"}},
		{raw: "items[0][name]", want: []string{"items", "0", "name"}},
		{raw: "größe", want: []string{"größe"}},
	}
	for _, tc := range cases {
		v, err := Parse(tc.raw)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tc.raw, err)
		}
		if diff := cmp.Diff(tc.want, v.Path); diff != "" {
			t.Fatalf("Parse(%q) path mismatch (-want +got):\n%s", tc.raw, diff)
		}
	}
}

func TestParse_RejectsMalformedPaths(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "a.", "a..b", "a[b", "a.b[c]", "[a]", "a b", "a-b|upper", "a||upper"} {
		_, err := Parse(raw)
		if err == nil {
			t.Fatalf("Parse(%q) expected error", raw)
		}
		if !errors.Is(err, ErrVariableSyntax) {
			t.Fatalf("Parse(%q) error %v does not wrap ErrVariableSyntax", raw, err)
		}
		var syntaxErr *SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Fatalf("Parse(%q) error is not a *SyntaxError", raw)
		}
	}
}

func TestParse_FilterChain(t *testing.T) {
	t.Parallel()

	v, err := Parse("a.b|upper|bool:Yes,No|badge:color=red,field=genre")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := []FilterInvocation{
		{Name: "upper"},
		{Name: "bool", Options: []Option{
			{Key: "o0", Value: "Yes", Positional: true},
			{Key: "o1", Value: "No", Positional: true},
		}},
		{Name: "badge", Options: []Option{
			{Key: "color", Value: "red"},
			{Key: "field", Value: "genre"},
		}},
	}
	if diff := cmp.Diff(want, v.Filters); diff != "" {
		t.Fatalf("filters mismatch (-want +got):\n%s", diff)
	}
	if v.Token() != "{a.b|upper|bool:Yes,No|badge:color=red,field=genre}" {
		t.Fatalf("unexpected token %q", v.Token())
	}
}

func TestParse_QuoteAwareOptions(t *testing.T) {
	t.Parallel()

	v, err := Parse(`v|badge:tt="a, b=c"`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(v.Filters) != 1 {
		t.Fatalf("expected 1 filter, got %d", len(v.Filters))
	}
	want := []Option{{Key: "tt", Value: "a, b=c"}}
	if diff := cmp.Diff(want, v.Filters[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_QuotedPipeAndEscapes(t *testing.T) {
	t.Parallel()

	v, err := Parse(`v|linkify:url='/a|b',title="say \"hi\""|upper`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(v.Filters) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(v.Filters))
	}
	cfg := v.Filters[0].Config()
	if cfg["url"] != "/a|b" {
		t.Fatalf("url = %q", cfg["url"])
	}
	if cfg["title"] != `say "hi"` {
		t.Fatalf("title = %q", cfg["title"])
	}
}

func TestParse_PositionalIndexesCountAllOptions(t *testing.T) {
	t.Parallel()

	v := MustParse("v|bool:yes,x=1,no")
	cfg := v.Filters[0].Config()
	want := map[string]string{"o0": "yes", "x": "1", "o2": "no"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"yes", "no"}, v.Filters[0].Positional()); diff != "" {
		t.Fatalf("positional mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateVariable_Default(t *testing.T) {
	t.Parallel()

	if got, ok := MustParse("v|upper:default=D").Default(); !ok || got != "D" {
		t.Fatalf("expected default D, got %q (ok=%v)", got, ok)
	}
	if got, ok := MustParse("v|default:n/a|upper").Default(); !ok || got != "n/a" {
		t.Fatalf("expected default n/a, got %q (ok=%v)", got, ok)
	}
	if _, ok := MustParse("v|upper").Default(); ok {
		t.Fatalf("expected no default")
	}
}
