// Package dom wraps a parsed HTML document (goquery over golang.org/x/net/html)
// with the small surface the form enhancers need: selector queries, class and
// attribute mutation, field values, element creation and synchronous event
// dispatch with bubbling. Listener panics are recovered and routed to a single
// document-level error hook.
package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrEmptySelector is returned when a query is issued with a blank selector.
var ErrEmptySelector = errors.New("dom: empty selector")

// Document is a parsed page plus the listeners attached to its nodes.
type Document struct {
	doc       *goquery.Document
	listeners map[*html.Node]map[string][]Listener
	onError   func(error)
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{
		doc:       doc,
		listeners: make(map[*html.Node]map[string][]Listener),
	}, nil
}

// ParseString parses markup held in memory.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// CompileSelector compiles a CSS selector group, returning an error instead of
// panicking on malformed input.
func CompileSelector(selector string) (goquery.Matcher, error) {
	trimmed := strings.TrimSpace(selector)
	if trimmed == "" {
		return nil, ErrEmptySelector
	}
	compiled, err := cascadia.Compile(trimmed)
	if err != nil {
		return nil, fmt.Errorf("dom: selector %q: %w", trimmed, err)
	}
	return compiled, nil
}

// Root returns the document node itself. Events bubble up to it.
func (d *Document) Root() *Element {
	return d.wrap(d.doc.Nodes[0])
}

// Body returns the <body> element, or nil when the document has none.
func (d *Document) Body() *Element {
	sel := d.doc.Find("body")
	if sel.Length() == 0 {
		return nil
	}
	return d.wrap(sel.Nodes[0])
}

// Find returns every element in the document matching selector, in document
// order.
func (d *Document) Find(selector string) ([]*Element, error) {
	return d.Root().Find(selector)
}

// First returns the first element matching selector, or nil.
func (d *Document) First(selector string) (*Element, error) {
	found, err := d.Find(selector)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

// ByID returns the element whose id attribute equals id, or nil.
func (d *Document) ByID(id string) *Element {
	if id == "" {
		return nil
	}
	var match *html.Node
	walk(d.doc.Nodes[0], func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			match = n
			return false
		}
		return true
	})
	if match == nil {
		return nil
	}
	return d.wrap(match)
}

// CreateElement returns a detached element with the given tag name.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return d.wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

// Wrap exposes an existing node of this document as an Element.
func (d *Document) Wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return d.wrap(n)
}

// On registers a document-level listener.
func (d *Document) On(eventType string, fn Listener) {
	d.Root().On(eventType, fn)
}

// OnError installs the hook receiving recovered listener panics. Only one hook
// is kept; installing a new one replaces the previous.
func (d *Document) OnError(fn func(error)) {
	d.onError = fn
}

// HTML serialises the whole document.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

// Render writes the whole document to w.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.doc.Nodes[0])
}

func (d *Document) wrap(n *html.Node) *Element {
	return &Element{doc: d, node: n}
}

func (d *Document) report(err error) {
	if d.onError != nil {
		d.onError(err)
	}
}

func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
