package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		in   string
		want string
	}{
		"empty pairs":          {in: "<p></p>Hello<span>&nbsp;</span>", want: "Hello"},
		"nested until stable":  {in: "<div><p><b></b></p></div>x", want: "x"},
		"attributes are kept":  {in: `<p class="lead"></p>`, want: `<p class="lead"></p>`},
		"content is kept":      {in: "<p>text</p><p> </p>", want: "<p>text</p><p> </p>"},
		"mismatched tags kept": {in: "<p></span>", want: "<p></span>"},
		"no markup":            {in: "plain > text </", want: "plain > text </"},
		"double nbsp kept":     {in: "<i>&nbsp;&nbsp;</i>", want: "<i>&nbsp;&nbsp;</i>"},
		"numeric nbsp":         {in: "<span>&#160;</span>x", want: "x"},
		"decoded nbsp":         {in: "<span>\u00a0</span>x", want: "x"},
		"decoded double nbsp":  {in: "<i>\u00a0\u00a0</i>", want: "<i>\u00a0\u00a0</i>"},
	}
	for name, tc := range cases {
		got := SanitizeHTML(tc.in)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: sanitize mismatch (-want +got):\n%s", name, diff)
		}
	}
}
