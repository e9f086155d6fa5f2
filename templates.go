package formguard

import (
	"io/fs"

	"github.com/goliatone/go-formguard/internal/markup"
)

// EmbeddedTemplates exposes the built-in toast and spinner templates so
// callers can copy or extend them and pass the result to page.WithTemplates.
func EmbeddedTemplates() (fs.FS, error) {
	return markup.TemplatesFS()
}
