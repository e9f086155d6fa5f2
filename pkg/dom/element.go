package dom

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Element is a handle on one node of a Document. Several handles may refer to
// the same node; compare with Same.
type Element struct {
	doc  *Document
	node *html.Node
}

func (e *Element) sel() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.node).Selection
}

// Node returns the underlying html node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// Same reports whether both handles refer to the same node.
func (e *Element) Same(other *Element) bool {
	return e != nil && other != nil && e.node == other.node
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return attr(e.node, "id")
}

// Attr returns an attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	return e.sel().Attr(name)
}

// HasAttr reports whether the attribute is present, even when empty.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets an attribute.
func (e *Element) SetAttr(name, value string) {
	e.sel().SetAttr(name, value)
}

// RemoveAttr removes an attribute.
func (e *Element) RemoveAttr(name string) {
	e.sel().RemoveAttr(name)
}

// Data returns the data-<key> attribute.
func (e *Element) Data(key string) (string, bool) {
	return e.Attr("data-" + key)
}

// SetData sets the data-<key> attribute.
func (e *Element) SetData(key, value string) {
	e.SetAttr("data-"+key, value)
}

// RemoveData removes the data-<key> attribute.
func (e *Element) RemoveData(key string) {
	e.RemoveAttr("data-" + key)
}

// AddClass adds classes, ignoring duplicates.
func (e *Element) AddClass(classes ...string) {
	e.sel().AddClass(classes...)
}

// RemoveClass removes classes.
func (e *Element) RemoveClass(classes ...string) {
	e.sel().RemoveClass(classes...)
}

// HasClass reports whether the class is present.
func (e *Element) HasClass(class string) bool {
	return e.sel().HasClass(class)
}

// ToggleClass adds the class when on is true and removes it otherwise.
func (e *Element) ToggleClass(class string, on bool) {
	if on {
		e.AddClass(class)
		return
	}
	e.RemoveClass(class)
}

// Text returns the combined text content.
func (e *Element) Text() string {
	return e.sel().Text()
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(text string) {
	e.sel().SetText(text)
}

// InnerHTML serialises the children.
func (e *Element) InnerHTML() (string, error) {
	return e.sel().Html()
}

// SetInnerHTML replaces the children with parsed markup.
func (e *Element) SetInnerHTML(markup string) {
	e.sel().SetHtml(markup)
}

// AppendHTML parses markup and appends the resulting nodes as children.
func (e *Element) AppendHTML(markup string) {
	e.sel().AppendHtml(markup)
}

// OuterHTML serialises the element itself.
func (e *Element) OuterHTML() (string, error) {
	return goquery.OuterHtml(e.sel())
}

// Value returns the current value of a form control: the text content of a
// textarea, the selected option of a select, the value attribute otherwise.
// A checkbox or radio without a value attribute reports "on".
func (e *Element) Value() string {
	switch e.Tag() {
	case "textarea":
		return e.Text()
	case "select":
		options := e.sel().Find("option")
		selected := options.FilterFunction(func(_ int, s *goquery.Selection) bool {
			_, ok := s.Attr("selected")
			return ok
		})
		if selected.Length() == 0 {
			selected = options.First()
		}
		if selected.Length() == 0 {
			return ""
		}
		if v, ok := selected.Attr("value"); ok {
			return v
		}
		return selected.Text()
	default:
		v, ok := e.Attr("value")
		if !ok && e.Tag() == "input" && checkable(e) {
			return "on"
		}
		return v
	}
}

func checkable(e *Element) bool {
	kind, _ := e.Attr("type")
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "checkbox", "radio":
		return true
	}
	return false
}

// SetValue updates the value of a form control.
func (e *Element) SetValue(value string) {
	switch e.Tag() {
	case "textarea":
		e.SetText(value)
	case "select":
		e.sel().Find("option").Each(func(_ int, s *goquery.Selection) {
			v, ok := s.Attr("value")
			if !ok {
				v = s.Text()
			}
			if v == value {
				s.SetAttr("selected", "")
			} else {
				s.RemoveAttr("selected")
			}
		})
	default:
		e.SetAttr("value", value)
	}
}

// Disabled reports whether the disabled attribute is present.
func (e *Element) Disabled() bool {
	return e.HasAttr("disabled")
}

// SetDisabled toggles the disabled attribute.
func (e *Element) SetDisabled(disabled bool) {
	if disabled {
		e.SetAttr("disabled", "")
		return
	}
	e.RemoveAttr("disabled")
}

// Parent returns the parent node, or nil for detached elements.
func (e *Element) Parent() *Element {
	if e.node.Parent == nil {
		return nil
	}
	return e.doc.wrap(e.node.Parent)
}

// AppendChild moves child to the end of e's children.
func (e *Element) AppendChild(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

// Attached reports whether the element is still reachable from the document
// root.
func (e *Element) Attached() bool {
	root := e.doc.doc.Nodes[0]
	for n := e.node; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

// LastElementChild returns the last child element, or nil.
func (e *Element) LastElementChild() *Element {
	for c := e.node.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return e.doc.wrap(c)
		}
	}
	return nil
}

// Find returns descendants matching selector in document order.
func (e *Element) Find(selector string) ([]*Element, error) {
	matcher, err := CompileSelector(selector)
	if err != nil {
		return nil, err
	}
	found := e.sel().FindMatcher(matcher)
	out := make([]*Element, 0, found.Length())
	for _, n := range found.Nodes {
		out = append(out, e.doc.wrap(n))
	}
	return out, nil
}

// Matches reports whether the element itself matches selector.
func (e *Element) Matches(selector string) (bool, error) {
	matcher, err := CompileSelector(selector)
	if err != nil {
		return false, err
	}
	return matcher.Match(e.node), nil
}

// Style returns an inline style property.
func (e *Element) Style(property string) string {
	raw, _ := e.Attr("style")
	for _, decl := range parseStyle(raw) {
		if decl[0] == property {
			return decl[1]
		}
	}
	return ""
}

// SetStyle sets an inline style property, keeping other declarations in
// place.
func (e *Element) SetStyle(property, value string) {
	raw, _ := e.Attr("style")
	decls := parseStyle(raw)
	replaced := false
	for i := range decls {
		if decls[i][0] == property {
			decls[i][1] = value
			replaced = true
		}
	}
	if !replaced {
		decls = append(decls, [2]string{property, value})
	}
	parts := make([]string, 0, len(decls))
	for _, decl := range decls {
		parts = append(parts, decl[0]+": "+decl[1])
	}
	e.SetAttr("style", strings.Join(parts, "; "))
}

func parseStyle(raw string) [][2]string {
	var out [][2]string
	for _, chunk := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(chunk, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		out = append(out, [2]string{name, strings.TrimSpace(value)})
	}
	return out
}

// FormValues collects the successful controls of a form the way a browser
// would encode them: named, enabled inputs, textareas and selects; checkboxes
// and radios only when checked; buttons and file inputs are skipped.
func FormValues(form *Element) url.Values {
	values := url.Values{}
	controls, err := form.Find("input[name], textarea[name], select[name]")
	if err != nil {
		return values
	}
	for _, control := range controls {
		if control.Disabled() {
			continue
		}
		name, _ := control.Attr("name")
		if control.Tag() == "input" {
			kind, _ := control.Attr("type")
			switch strings.ToLower(kind) {
			case "submit", "button", "reset", "image", "file":
				continue
			case "checkbox", "radio":
				if !control.HasAttr("checked") {
					continue
				}
				if _, ok := control.Attr("value"); !ok {
					values.Add(name, "on")
					continue
				}
			}
		}
		values.Add(name, control.Value())
	}
	return values
}
