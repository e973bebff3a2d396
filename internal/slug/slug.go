// Package slug derives URL fragment identifiers from free text.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var separatorPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Make lower-cases text, folds accents to their base letter and joins the
// remaining alphanumeric runs with dashes: "Über die Sammlung" becomes
// "uber-die-sammlung".
func Make(text string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)
	return strings.Trim(separatorPattern.ReplaceAllString(folded, "-"), "-")
}

// Anchor builds the fragment id of the n-th block: "block-2-intro" for the
// title "Intro", "block-2" when the title has no usable characters.
func Anchor(n int, title string) string {
	anchor := "block-" + strconv.Itoa(n)
	if base := Make(title); base != "" {
		anchor += "-" + base
	}
	return anchor
}
