package filters

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-richtext/pkg/lookup"
)

func catalogWith(t *testing.T, printable bool) *lookup.Catalog {
	t.Helper()
	catalog := lookup.NewCatalog()
	catalog.SetChoices("status",
		lookup.Choice{Key: "draft", Label: "Draft", Labels: map[string]string{"de": "Entwurf"}, Info: "Not yet published", Color: "#ff0000"},
		lookup.Choice{Key: "secret", Label: "Secret", Printable: &printable},
	)
	catalog.AddPage("about", lookup.Link{URL: "/about"})
	catalog.AddSource("letters", lookup.Source{})
	return catalog
}

type filterCase struct {
	name  string
	raw   string
	value any
	want  string
}

func runCases(t *testing.T, env *Env, cases []filterCase) {
	t.Helper()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := apply(t, mustChain(t, tc.raw, env), tc.value)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("%s mismatch (-want +got):\n%s", tc.raw, diff)
			}
		})
	}
}

func TestCaseFilters(t *testing.T) {
	t.Parallel()

	runCases(t, nil, []filterCase{
		{name: "upper", raw: "v|upper", value: "x", want: "X"},
		{name: "lower", raw: "v|lower", value: "ABC", want: "abc"},
		{name: "title", raw: "v|title", value: "hello wORLD", want: "Hello World"},
		{name: "capitalize", raw: "v|capitalize", value: "hELLO there", want: "Hello there"},
		{name: "number value", raw: "v|upper", value: 42.0, want: "42"},
	})
}

func TestBoolFilter(t *testing.T) {
	t.Parallel()

	runCases(t, nil, []filterCase{
		{name: "true", raw: "v|bool:Yes,No", value: true, want: "Yes"},
		{name: "false string", raw: "v|bool:Yes,No", value: "false", want: "No"},
		{name: "true string", raw: "v|bool:Yes,No", value: "TRUE", want: "Yes"},
		{name: "none sentinel", raw: "v|bool:Yes,__none__", value: false, want: ""},
		{name: "other type", raw: "v|bool:Yes,No", value: 3.0, want: "3"},
	})
}

func TestFieldFilters(t *testing.T) {
	t.Parallel()

	env := &Env{Choices: catalogWith(t, true)}
	runCases(t, env, []filterCase{
		{name: "label", raw: "v|fieldify:status", value: "draft", want: "Draft"},
		{name: "unknown code", raw: "v|fieldify:status", value: "gone", want: "gone"},
		{name: "unknown field", raw: "v|fieldify:nope", value: "draft", want: "draft"},
		{name: "info", raw: "v|fieldinfo:status", value: "draft", want: "Not yet published"},
	})

	german := &Env{Choices: catalogWith(t, true), Language: "de"}
	runCases(t, german, []filterCase{
		{name: "localized", raw: "v|fieldify:status", value: "draft", want: "Entwurf"},
	})
}

func TestListFilter(t *testing.T) {
	t.Parallel()

	runCases(t, nil, []filterCase{
		{name: "unordered", raw: "v|list", value: []any{"a", "<b>"}, want: "<ul><li>a</li><li>&lt;b&gt;</li></ul>"},
		{name: "ordered with class", raw: "v|list:type=ol,class=steps", value: []any{"one"}, want: `<ol class="steps"><li>one</li></ol>`},
		{name: "empty", raw: "v|list", value: []any{}, want: ""},
	})
}

func TestBadgeFilter(t *testing.T) {
	t.Parallel()

	env := &Env{
		Choices: catalogWith(t, true),
		Data:    map[string]any{"kind": "letter"},
		Tokens:  map[string]string{"accent": "#123456"},
	}
	runCases(t, env, []filterCase{
		{
			name: "plain", raw: "v|badge", value: "new",
			want: `<span class="badge text-dark font-weight-normal">new</span>`,
		},
		{
			name: "context colour", raw: "v|badge:color=primary", value: "new",
			want: `<span class="badge font-weight-normal text-primary">new</span>`,
		},
		{
			name: "pill with background token", raw: "v|pill:bg=accent", value: "new",
			want: `<span class="badge text-dark font-weight-normal badge-pill rounded-pill" style="background-color: #123456;">new</span>`,
		},
		{
			name: "tooltip template", raw: `v|badge:tt="Status: [value] ([kind])"`, value: "new",
			want: `<span class="badge text-dark font-weight-normal" data-toggle="tooltip" data-placement="top" title="Status: new (letter)">new</span>`,
		},
		{
			name: "field label, info tooltip and field colour", raw: "v|badge:field=status,tt=__field__,color=__field__", value: "draft",
			want: `<span class="badge font-weight-normal" data-toggle="tooltip" data-placement="top" title="Not yet published" style="color: #ff0000;">Draft</span>`,
		},
		{
			name: "unknown field", raw: "v|badge:field=nope", value: "draft",
			want: `<span class="badge text-dark font-weight-normal">Field not found</span>`,
		},
		{
			name: "case filter keeps markup", raw: "v|badge|upper", value: "new & old",
			want: `<span class="badge text-dark font-weight-normal">NEW &amp; OLD</span>`,
		},
		{
			name: "capitalize keeps markup", raw: "v|badge|capitalize", value: "nEW",
			want: `<span class="badge text-dark font-weight-normal">New</span>`,
		},
	})
}

func TestImageFilter(t *testing.T) {
	t.Parallel()

	env := &Env{Data: map[string]any{"ids": []any{"p1", "p2"}}}
	runCases(t, env, []filterCase{
		{
			name: "defaults", raw: "v|img", value: "/a.png",
			want: `<img class="img-fluid" src="/a.png" alt="Image">`,
		},
		{
			name: "iiif resize", raw: "v|img:iiif_resize=50,alt=Scan", value: "https://x.org/iiif/a/full/full/0/default.jpg",
			want: `<img class="img-fluid" src="https://x.org/iiif/a/full/pct:50/0/default.jpg" alt="Scan">`,
		},
		{
			name: "iiif region", raw: "v|img:iiif_region=full", value: "https://x.org/iiif/a/0,0,10,10/max/0/default.jpg",
			want: `<img class="img-fluid" src="https://x.org/iiif/a/full/max/0/default.jpg" alt="Image">`,
		},
		{
			name: "url template and class", raw: "v|img:url=/img/[ids].jpg,class=thumb,width=80", value: "ignored",
			want: `<img class="thumb" src="/img/p1.jpg" alt="Image" width="80">`,
		},
		{
			name: "url template with current value", raw: "v|img:url=/iiif/[value]/full/max/0/default.jpg,iiif_resize=25", value: "scan-7",
			want: `<img class="img-fluid" src="/iiif/scan-7/full/pct:25/0/default.jpg" alt="Image">`,
		},
	})
}

func TestDateFilters(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)
	env := &Env{Now: func() time.Time { return now }}
	runCases(t, env, []filterCase{
		{name: "date", raw: "v|date:%d.%m.%Y", value: "2024-03-05", want: "05.03.2024"},
		{name: "date with input format", raw: "v|date:%Y,format=%d/%m/%Y", value: "05/03/2024", want: "2024"},
		{name: "date fallback german input", raw: "v|date:%Y-%m-%d", value: "05.03.2024", want: "2024-03-05"},
		{name: "date unparseable", raw: "v|date:%Y", value: "someday", want: "someday"},
		{name: "today", raw: "v|reldate", value: "2024-03-10", want: "today"},
		{name: "yesterday", raw: "v|reldate", value: "2024-03-09", want: "yesterday"},
		{name: "days ago", raw: "v|reldate", value: "2024-03-05", want: "5 days ago"},
		{name: "future", raw: "v|reldate", value: "2024-03-12", want: "in 2 days"},
		{name: "beyond threshold", raw: "v|reldate:threshold=3,format=%d.%m.%Y", value: "2024-01-01", want: "01.01.2024"},
	})

	narrow := &Env{Now: env.Now, RelativeDays: 2}
	runCases(t, narrow, []filterCase{
		{name: "env threshold", raw: "v|reldate", value: "2024-03-05", want: "2024-03-05"},
		{name: "option wins over env", raw: "v|reldate:threshold=10", value: "2024-03-05", want: "5 days ago"},
	})
}

func TestNumberFilters(t *testing.T) {
	t.Parallel()

	runCases(t, nil, []filterCase{
		{name: "zero padded", raw: "v|format:%05d", value: 42.0, want: "00042"},
		{name: "bare verb", raw: "v|format:05d", value: "42", want: "00042"},
		{name: "float", raw: "v|format:%.2f", value: 3.14159, want: "3.14"},
		{name: "readable", raw: "v|readable", value: 1234567.0, want: "1,234,567"},
		{name: "readable european", raw: "v|readable:sep=.,dec=',',decimals=2", value: 1234.5, want: "1.234,50"},
		{name: "compact thousands", raw: "v|compact", value: 1234.0, want: "1.2K"},
		{name: "compact millions", raw: "v|compact", value: "2500000", want: "2.5M"},
		{name: "compact round", raw: "v|compact", value: 1000.0, want: "1K"},
		{name: "compact billions", raw: "v|compact:precision=0", value: 3e9, want: "3B"},
		{name: "compact small", raw: "v|compact", value: 999.0, want: "999"},
		{name: "compact carries into next unit", raw: "v|compact", value: 999950.0, want: "1M"},
		{name: "compact carries into billions", raw: "v|compact:precision=0", value: -999600000.0, want: "-1B"},
	})

	_, _, err := mustChain(t, "v|format:%d", nil).Apply("abc")
	if !errors.Is(err, ErrFilterFailed) {
		t.Fatalf("expected ErrFilterFailed for non-numeric value, got %v", err)
	}
}

func TestLinkFilters(t *testing.T) {
	t.Parallel()

	env := &Env{
		Data:    map[string]any{"id": 7.0},
		Pages:   catalogWith(t, true),
		Records: catalogWith(t, true),
	}
	runCases(t, env, []filterCase{
		{
			name: "url template", raw: "v|linkify:url=/items/[id],target=blank", value: "Item",
			want: `<a href="/items/7" target="_blank" rel="noopener noreferrer">Item</a>`,
		},
		{
			name: "page with query", raw: "v|linkify:page=about,query=ref=[id],class=nav", value: "About",
			want: `<a class="nav" href="/about?ref=7">About</a>`,
		},
		{
			name: "record object", raw: "v|linkify:object=letters", value: "L1",
			want: `<a href="/results/letters/record/L1">L1</a>`,
		},
		{
			name: "unresolved page keeps content", raw: "v|linkify:page=missing", value: "x<y",
			want: `x&lt;y`,
		},
		{
			name: "iframe defaults", raw: "v|iframe", value: "https://e.org/x",
			want: `<iframe src="https://e.org/x" frameborder="0" loading="lazy" width="100%" height="400" title="Embedded content"></iframe>`,
		},
		{
			name: "iframe options", raw: "v|iframe:height=200,allowfullscreen=true,sandbox=allow-scripts", value: "https://e.org/x",
			want: `<iframe src="https://e.org/x" frameborder="0" loading="lazy" width="100%" height="200" title="Embedded content" sandbox="allow-scripts" allowfullscreen=""></iframe>`,
		},
	})
}

func TestWeblinksFilter(t *testing.T) {
	t.Parallel()

	runCases(t, nil, []filterCase{
		{
			name: "favicon and host label", raw: "v|weblinks", value: []any{"https://www.example.org/page", "not a url"},
			want: `<ul class="list-unstyled weblinks"><li><a href="https://www.example.org/page" target="_blank" rel="noopener noreferrer">` +
				`<img class="me-1" src="https://www.google.com/s2/favicons?domain=www.example.org" alt="" width="16" height="16">example.org</a></li></ul>`,
		},
		{
			name: "labelled mapping", raw: "v|weblinks:label=name,favicon=/icons/[host].png,target=_self", value: []any{map[string]any{"url": "https://a.io", "name": "A"}},
			want: `<ul class="list-unstyled weblinks"><li><a href="https://a.io" target="_self">` +
				`<img class="me-1" src="/icons/a.io.png" alt="" width="16" height="16">A</a></li></ul>`,
		},
	})
}

func TestMapFilter(t *testing.T) {
	t.Parallel()

	value := []any{
		map[string]any{"lat": 47.0, "lng": 8.0, "name": "Zurich", "kind": "city"},
		map[string]any{"type": "Point", "coordinates": []any{9.0, 46.0}, "name": "Ticino", "kind": "region"},
		map[string]any{"name": "nowhere"},
	}
	got := apply(t, mustChain(t, "v|map:label=name,group=kind,height=300", nil), value)
	for _, want := range []string{
		`class="ndr-map"`,
		`style="height: 300px;"`,
		`data-zoom="13"`,
		`data-center="[46.5,8.5]"`,
		`data-bounds="[[46,8],[47,9]]"`,
		`&#34;label&#34;:&#34;Zurich&#34;`,
		`<ul class="map-legend list-inline">`,
		`background-color: #1f77b4;`,
		` city</li>`,
		` region</li>`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in map output:\n%s", want, got)
		}
	}

	grouped := []any{map[string]any{
		"team":   "North",
		"places": []any{map[string]any{"latitude": 60.0, "longitude": 10.0}},
	}}
	got = apply(t, mustChain(t, "v|map:points=places,group=team", nil), grouped)
	if !strings.Contains(got, `data-center="[60,10]"`) || strings.Contains(got, "data-bounds") {
		t.Fatalf("unexpected grouped output:\n%s", got)
	}

	_, keep, err := mustChain(t, "v|map", nil).Apply([]any{"no coordinates"})
	if err != nil || keep {
		t.Fatalf("expected empty map to be omitted, got keep=%v err=%v", keep, err)
	}
}

func TestTruncateFilter(t *testing.T) {
	t.Parallel()

	runCases(t, nil, []filterCase{
		{name: "short text unchanged", raw: "v|truncate", value: "hello", want: "hello"},
		{
			name: "cut at word", raw: "v|truncate:length=10", value: "hello wonderful world",
			want: `<span class="truncated-text"><span class="text-short">hello&hellip;</span>` +
				`<span class="text-full d-none">hello wonderful world</span> ` +
				`<a class="truncate-toggle" href="#" data-more="Show more" data-less="Show less">Show more</a></span>`,
		},
	})

	chain := mustChain(t, "v|markdown|truncate:length=4,more=More,less=Less", nil)
	got := apply(t, chain, "**abc def**")
	if !strings.Contains(got, `<span class="text-short">abc&hellip;</span>`) ||
		!strings.Contains(got, `<span class="text-full d-none"><p><strong>abc def</strong></p></span>`) {
		t.Fatalf("unexpected truncated markup:\n%s", got)
	}
}

func TestMarkdownAndDefaultFilters(t *testing.T) {
	t.Parallel()

	runCases(t, nil, []filterCase{
		{name: "markdown", raw: "v|markdown", value: "**hi**", want: "<p><strong>hi</strong></p>"},
		{name: "default is identity", raw: "v|default:fallback", value: "x", want: "x"},
	})
}

func TestExpandPlaceholders(t *testing.T) {
	t.Parallel()

	data := map[string]any{"a": map[string]any{"b": "B"}, "list": []any{"first", "second"}}
	got := ExpandPlaceholders("/[a.b]/[list]/[missing]/[]/[value]", data, map[string]string{"value": "V"})
	if diff := cmp.Diff("/B/first//[]/V", got); diff != "" {
		t.Fatalf("ExpandPlaceholders mismatch (-want +got):\n%s", diff)
	}
	if got := ExpandPlaceholders("no [closing", nil, nil); got != "no [closing" {
		t.Fatalf("unterminated placeholder changed: %q", got)
	}
}

func TestStringify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{true, "true"},
		{3.0, "3"},
		{2.5, "2.5"},
		{map[string]any{"a": 1.0}, `{"a":1}`},
		{[]any{"x", 1.0}, `["x",1]`},
	}
	for _, tc := range cases {
		if got := Stringify(tc.value); got != tc.want {
			t.Fatalf("Stringify(%#v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
