// Package counter attaches live word counters to text fields. Each tracked
// field owns one display element, found or created by a deterministic id, and
// is re-evaluated synchronously on every input event. The field's invalid
// marker and the display's danger marker always move together.
package counter

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formguard/pkg/config"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/words"
)

var (
	// ErrNoParent is returned when a field cannot host a counter below it.
	ErrNoParent = errors.New("counter: field has no parent")
	// ErrFieldID is returned when no counter id can be derived for a field.
	ErrFieldID = errors.New("counter: field has neither id nor name")
)

// CounterSuffix is appended to the field id to form the display id.
const CounterSuffix = "-counter"

// Option configures a Counter.
type Option func(*Counter)

// WithMarkers overrides the marker class names.
func WithMarkers(markers config.Markers) Option {
	return func(c *Counter) {
		c.markers = markers
	}
}

// WithUnit overrides the counter unit label.
func WithUnit(unit string) Option {
	return func(c *Counter) {
		if strings.TrimSpace(unit) != "" {
			c.unit = strings.TrimSpace(unit)
		}
	}
}

// Counter owns the tracked fields of one document.
type Counter struct {
	doc     *dom.Document
	markers config.Markers
	unit    string
	fields  map[*html.Node]*TrackedField
	order   []*TrackedField
}

// New returns a Counter for doc.
func New(doc *dom.Document, options ...Option) *Counter {
	c := &Counter{
		doc:     doc,
		markers: config.DefaultMarkers(),
		unit:    words.DefaultUnit,
		fields:  make(map[*html.Node]*TrackedField),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// CounterID derives the display id for field.
func CounterID(field *dom.Element) (string, error) {
	base := strings.TrimSpace(field.ID())
	if base == "" {
		name, _ := field.Attr("name")
		base = strings.TrimSpace(name)
	}
	if base == "" {
		return "", ErrFieldID
	}
	return base + CounterSuffix, nil
}

// LimitFor resolves the limit a rule imposes on field: the rule's explicit
// limit when set, otherwise the data-word-limit attribute.
func LimitFor(rule config.WordLimitRule, field *dom.Element) words.Limit {
	if rule.Limit != nil {
		return words.NewLimit(*rule.Limit)
	}
	raw, _ := field.Attr(config.LimitAttribute)
	return words.ParseLimit(raw)
}

// Attach tracks field against limit. The display element is looked up by its
// derived id and created below the field when missing. Attaching a field
// again keeps its display and listener and only replaces the limit.
func (c *Counter) Attach(field *dom.Element, limit words.Limit) (*TrackedField, error) {
	if tracked, ok := c.fields[field.Node()]; ok {
		tracked.limit = limit
		tracked.Update()
		return tracked, nil
	}

	id, err := CounterID(field)
	if err != nil {
		return nil, err
	}
	parent := field.Parent()
	if parent == nil {
		return nil, fmt.Errorf("%w: <%s id=%q>", ErrNoParent, field.Tag(), field.ID())
	}

	display := c.doc.ByID(id)
	if display == nil {
		display = c.doc.CreateElement("div")
		display.SetAttr("id", id)
		display.AddClass(c.markers.CounterText)
		parent.AppendChild(display)
	}

	tracked := &TrackedField{
		field:   field,
		display: display,
		limit:   limit,
		markers: c.markers,
		unit:    c.unit,
	}
	c.fields[field.Node()] = tracked
	c.order = append(c.order, tracked)

	field.On("input", func(*dom.Event) { tracked.Update() })
	tracked.Update()
	return tracked, nil
}

// AttachRules discovers the fields matched by each rule under root and
// attaches them. A field that cannot be tracked does not stop discovery; the
// failures are returned joined alongside the fields that were attached.
func (c *Counter) AttachRules(root *dom.Element, rules []config.WordLimitRule) ([]*TrackedField, error) {
	var (
		out  []*TrackedField
		errs []error
	)
	for _, rule := range rules {
		fields, err := root.Find(rule.Selector)
		if err != nil {
			errs = append(errs, fmt.Errorf("counter: rule %q: %w", rule.Selector, err))
			continue
		}
		for _, field := range fields {
			tracked, err := c.Attach(field, LimitFor(rule, field))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, tracked)
		}
	}
	return out, errors.Join(errs...)
}

// Lookup returns the tracked state of field.
func (c *Counter) Lookup(field *dom.Element) (*TrackedField, bool) {
	tracked, ok := c.fields[field.Node()]
	return tracked, ok
}

// Fields returns tracked fields in attach order.
func (c *Counter) Fields() []*TrackedField {
	return append([]*TrackedField(nil), c.order...)
}

// TrackedField is a field enhanced with a live counter.
type TrackedField struct {
	field   *dom.Element
	display *dom.Element
	limit   words.Limit
	tally   words.Tally
	markers config.Markers
	unit    string
}

// Update recounts the field and reflects the result on the field and its
// display.
func (t *TrackedField) Update() words.Tally {
	t.tally = words.Evaluate(t.field.Value(), t.limit)
	t.display.SetText(t.tally.Label(t.unit))
	over := t.tally.Over()
	t.display.ToggleClass(t.markers.Danger, over)
	t.field.ToggleClass(t.markers.Invalid, over)
	return t.tally
}

// Field returns the tracked element.
func (t *TrackedField) Field() *dom.Element { return t.field }

// Display returns the counter element.
func (t *TrackedField) Display() *dom.Element { return t.display }

// Limit returns the configured limit.
func (t *TrackedField) Limit() words.Limit { return t.limit }

// Tally returns the last evaluation.
func (t *TrackedField) Tally() words.Tally { return t.tally }

// Valid reports whether the last evaluation was within the limit.
func (t *TrackedField) Valid() bool { return !t.tally.Over() }
