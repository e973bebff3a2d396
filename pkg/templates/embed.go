package templates

import (
	"embed"
	"io/fs"
)

//go:embed templates/elements/*.tmpl
var embeddedTemplates embed.FS

// ElementsFS exposes the built-in templates rooted so that element templates
// resolve as "elements/<type>.tmpl".
func ElementsFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
