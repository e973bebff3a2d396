package render

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-richtext/pkg/datapath"
	"github.com/goliatone/go-richtext/pkg/expr"
	"github.com/goliatone/go-richtext/pkg/filters"
	"github.com/goliatone/go-richtext/pkg/lookup"
)

const noticePrefix = `<div class="alert alert-danger" role="alert">`

func TestRender(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"a":      map[string]any{"b": "x"},
		"items":  []any{"a", "b"},
		"empty":  []any{},
		"people": []any{map[string]any{"name": "ada"}, map[string]any{"name": "grace"}, map[string]any{"title": "none"}},
		"flag":   true,
		"n":      "abc",
		"nested": []any{map[string]any{"k": 1}},
	}

	cases := []struct {
		name     string
		template string
		want     string
	}{
		{name: "nested path", template: "{a.b|upper}", want: "X"},
		{name: "bracket path", template: "{a[b]}", want: "x"},
		{name: "missing path", template: "before {missing.key}after", want: "before after"},
		{name: "missing with default", template: "{missing|upper:default=D}", want: "D"},
		{name: "default passes through chain", template: "{missing|lower:default=XY}", want: "xy"},
		{name: "default filter", template: "{missing|default:fallback}", want: "fallback"},
		{name: "raw default when filter fails", template: "{n|format:%.1f,default=n/a}", want: "n/a"},
		{name: "list fan out", template: "{items|upper}", want: "A, B"},
		{name: "list without filters", template: "{items}", want: "a, b"},
		{name: "empty list", template: "[{empty|upper}]", want: "[]"},
		{name: "fan out intermediate list", template: "{people.name|capitalize}", want: "Ada, Grace"},
		{name: "limit", template: "{items|upper:limit=1}", want: "A"},
		{name: "whole list filter", template: "{items|list}", want: "<ul><li>a</li><li>b</li></ul>"},
		{name: "mapping items are json", template: "{nested}", want: `{"k":1}`},
		{name: "bool", template: "{flag|bool:yes,no}", want: "yes"},
		{name: "escaped braces are literal", template: "{{a.b}} {a.b}", want: "{{a.b}} x"},
		{name: "html entities are decoded first", template: "{flag|bool:&quot;on, really&quot;,off}", want: "on, really"},
		{name: "empty elements removed", template: "<p>{missing}</p>Hello<span>&nbsp;</span>", want: "Hello"},
		{name: "malformed variable silent", template: "x{a b}y", want: "xy"},
	}

	r := New()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := r.Render(tc.template, data)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("render mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender_ConfigurationErrorAlwaysShowsNotice(t *testing.T) {
	t.Parallel()

	got := New().Render("{a|shout}", map[string]any{"a": "x"})
	if !strings.HasPrefix(got, noticePrefix) || !strings.Contains(got, "shout") {
		t.Fatalf("expected inline notice naming the filter, got %q", got)
	}

	got = New().Render("{a|upper:colour=red}", map[string]any{"a": "x"})
	if !strings.HasPrefix(got, noticePrefix) {
		t.Fatalf("expected inline notice for disallowed option, got %q", got)
	}
}

func TestRender_ShowErrors(t *testing.T) {
	t.Parallel()

	r := New(WithShowErrors(true))
	got := r.Render("{missing}", map[string]any{})
	if !strings.HasPrefix(got, noticePrefix) || !strings.Contains(got, "key not found") {
		t.Fatalf("expected key-not-found notice, got %q", got)
	}

	got = r.Render("{a b}", map[string]any{})
	if !strings.HasPrefix(got, noticePrefix) {
		t.Fatalf("expected syntax notice, got %q", got)
	}

	got = r.Render("{missing|upper:default=ok}", map[string]any{})
	if diff := cmp.Diff("OK", got); diff != "" {
		t.Fatalf("default must win over the notice (-want +got):\n%s", diff)
	}
}

func TestRender_OneBadVariableDoesNotAbortTemplate(t *testing.T) {
	t.Parallel()

	got := New().Render("{a.b|upper} / {missing} / {a|shout} / {a.b}", map[string]any{"a": map[string]any{"b": "x"}})
	if !strings.HasPrefix(got, "X /  / "+noticePrefix) || !strings.HasSuffix(got, "</div> / x") {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRender_Options(t *testing.T) {
	t.Parallel()

	catalog := lookup.NewCatalog()
	catalog.SetChoices("status", lookup.Choice{Key: "a", Label: "Active"})

	r := New(
		WithSeparator(" | "),
		WithChoices(catalog),
		WithLanguage("en"),
	)
	got := r.Render("{codes|fieldify:status}", map[string]any{"codes": []any{"a", "zz"}})
	if diff := cmp.Diff("Active | zz", got); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_CustomRegistry(t *testing.T) {
	t.Parallel()

	reg := filters.NewRegistry()
	if err := reg.Alias("shout", filters.KindUpper); err != nil {
		t.Fatalf("Alias returned error: %v", err)
	}
	got := New(WithRegistry(reg)).Render("{a|shout}!", map[string]any{"a": "hey"})
	if diff := cmp.Diff("HEY!", got); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderVariable_ReturnsErrors(t *testing.T) {
	t.Parallel()

	r := New()
	ctx := context.Background()

	_, err := r.RenderVariable(ctx, expr.MustParse("missing|upper:default=D"), map[string]any{})
	if !errors.Is(err, datapath.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	_, err = r.RenderVariable(ctx, expr.MustParse("a|bool"), map[string]any{"a": true})
	if !errors.Is(err, filters.ErrFilterConfiguration) {
		t.Fatalf("expected ErrFilterConfiguration, got %v", err)
	}

	got, err := r.RenderVariable(ctx, expr.MustParse("a|title"), map[string]any{"a": "hello world"})
	if err != nil {
		t.Fatalf("RenderVariable returned error: %v", err)
	}
	if diff := cmp.Diff("Hello World", got); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestVariables(t *testing.T) {
	t.Parallel()

	vars, err := New().Variables("{a.b|upper} {{literal}} {a b} {c:x}")
	if !errors.Is(err, expr.ErrVariableSyntax) {
		t.Fatalf("expected joined syntax error, got %v", err)
	}
	var paths []string
	for _, v := range vars {
		paths = append(paths, v.BasePath())
	}
	if diff := cmp.Diff([]string{"a.b"}, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_ConcurrentCalls(t *testing.T) {
	t.Parallel()

	r := New()
	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := r.Render("{a.b|upper}", map[string]any{"a": map[string]any{"b": "x"}}); got != "X" {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("concurrent render = %q", got)
	}
}
