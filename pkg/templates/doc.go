// Package templates renders UI element descriptors through type-specific
// pongo2 templates. The element templates ship embedded (see ElementsFS) and
// can be overridden per theme through `elements.<type>` template keys.
package templates
