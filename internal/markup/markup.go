// Package markup renders the HTML snippets injected by the page helpers
// (toast, loading spinner) from embedded pongo2 templates.
package markup

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var embedded embed.FS

const extension = ".tpl"

// Template names.
const (
	TemplateToast   = "toast"
	TemplateSpinner = "spinner"
)

// Engine renders named templates from a pongo2 template set.
type Engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// TemplatesFS exposes the built-in templates rooted at their directory.
func TemplatesFS() (fs.FS, error) {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("markup: templates: %w", err)
	}
	return sub, nil
}

// New returns an engine over the embedded templates.
func New() (*Engine, error) {
	sub, err := TemplatesFS()
	if err != nil {
		return nil, err
	}
	return NewFromFS(sub), nil
}

// NewFromFS returns an engine over templates stored in files.
func NewFromFS(files fs.FS) *Engine {
	return &Engine{
		set:       pongo2.NewSet("formguard", pongo2.NewFSLoader(files)),
		templates: make(map[string]*pongo2.Template),
	}
}

// Render executes the named template. Values are autoescaped unless wrapped
// with Safe.
func (e *Engine) Render(name string, data map[string]any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("markup: engine is nil")
	}
	tmpl, err := e.template(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context(data), &buf); err != nil {
		return "", fmt.Errorf("markup: execute %q: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Safe marks already sanitised markup so the template does not escape it.
func Safe(markup string) any {
	return pongo2.AsSafeValue(markup)
}

func (e *Engine) template(name string) (*pongo2.Template, error) {
	path := strings.TrimSpace(name)
	if !strings.HasSuffix(path, extension) {
		path += extension
	}

	e.mu.RLock()
	tmpl, ok := e.templates[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("markup: load %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}
