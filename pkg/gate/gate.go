// Package gate intercepts form submission and re-checks the required-field
// and word-limit rules synchronously. A failing form has its submit event
// cancelled; the only observable effects are the cancelled event and the
// invalid markers on the offending fields.
package gate

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formguard/pkg/config"
	"github.com/goliatone/go-formguard/pkg/counter"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/words"
)

// RequiredSelector matches the fields checked by the required rule.
const RequiredSelector = "[required]"

// Rule identifies which check an Issue comes from.
type Rule string

const (
	RuleRequired  Rule = "required"
	RuleWordLimit Rule = "word-limit"
)

// Issue is one failing field.
type Issue struct {
	Rule  Rule   `json:"rule"`
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Count int    `json:"count,omitempty"`
	Limit string `json:"limit,omitempty"`
}

// Report is the outcome of checking a form.
type Report struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Option configures a Gate.
type Option func(*Gate)

// WithMarkers overrides the marker class names.
func WithMarkers(markers config.Markers) Option {
	return func(g *Gate) {
		g.markers = markers
	}
}

// WithWordLimitRules sets the rules used to find tracked fields inside a form.
func WithWordLimitRules(rules []config.WordLimitRule) Option {
	return func(g *Gate) {
		g.rules = append([]config.WordLimitRule(nil), rules...)
	}
}

// WithCounter makes the gate read the limit of tracked fields from c, so the
// gate and the visible counter always judge a field against the same limit.
func WithCounter(c *counter.Counter) Option {
	return func(g *Gate) {
		g.counter = c
	}
}

// Gate validates forms.
type Gate struct {
	markers config.Markers
	rules   []config.WordLimitRule
	counter *counter.Counter
}

// New returns a Gate using the markup word-limit rule unless configured
// otherwise.
func New(options ...Option) *Gate {
	g := &Gate{
		markers: config.DefaultMarkers(),
		rules:   []config.WordLimitRule{{Selector: config.DefaultWordLimitSelector}},
	}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Validate reports whether form passes every rule, marking failing fields
// along the way.
func (g *Gate) Validate(form *dom.Element) bool {
	return g.Check(form).Valid
}

// Check runs both rules over form. Every required field is visited so all
// violations become visible at once; the word-limit rule runs regardless of
// the required outcome.
func (g *Gate) Check(form *dom.Element) Report {
	report := Report{Valid: true}
	if form == nil {
		return report
	}

	required, _ := form.Find(RequiredSelector)
	for _, field := range required {
		if words.Trim(field.Value()) == "" {
			field.AddClass(g.markers.Invalid)
			report.add(field, Issue{Rule: RuleRequired})
			continue
		}
		field.RemoveClass(g.markers.Invalid)
	}

	for _, limited := range g.limits(form) {
		tally := words.Evaluate(limited.field.Value(), limited.limit)
		if !tally.Over() {
			continue
		}
		limited.field.AddClass(g.markers.Invalid)
		report.add(limited.field, Issue{
			Rule:  RuleWordLimit,
			Count: tally.Count,
			Limit: tally.Limit.String(),
		})
	}
	return report
}

type limitedField struct {
	field *dom.Element
	limit words.Limit
}

// limits resolves one limit per field, in discovery order. When
// several rules match a field the last one wins, as it does for the counter;
// a field tracked by the configured counter uses the counter's limit.
func (g *Gate) limits(form *dom.Element) []limitedField {
	var out []limitedField
	index := make(map[*html.Node]int)
	for _, rule := range g.rules {
		fields, err := form.Find(rule.Selector)
		if err != nil {
			continue
		}
		for _, field := range fields {
			limit := counter.LimitFor(rule, field)
			if i, ok := index[field.Node()]; ok {
				out[i].limit = limit
				continue
			}
			index[field.Node()] = len(out)
			out = append(out, limitedField{field: field, limit: limit})
		}
	}
	if g.counter != nil {
		for i := range out {
			if tracked, ok := g.counter.Lookup(out[i].field); ok {
				out[i].limit = tracked.Limit()
			}
		}
	}
	return out
}

func (r *Report) add(field *dom.Element, issue Issue) {
	r.Valid = false
	issue.ID = field.ID()
	issue.Name, _ = field.Attr("name")
	r.Issues = append(r.Issues, issue)
}

// Attach intercepts submit events on form. A failing form has the event
// cancelled and its propagation stopped. The validated marker is applied on
// every attempt so validity styling becomes visible.
func (g *Gate) Attach(form *dom.Element) {
	form.On("submit", func(ev *dom.Event) {
		if !g.Validate(form) {
			ev.PreventDefault()
			ev.StopPropagation()
		}
		form.AddClass(g.markers.Validated)
	})
}

// AttachRules attaches every form matched by rules under root.
func (g *Gate) AttachRules(root *dom.Element, rules []config.FormRule) ([]*dom.Element, error) {
	var out []*dom.Element
	for _, rule := range rules {
		forms, err := root.Find(rule.Selector)
		if err != nil {
			return out, fmt.Errorf("gate: rule %q: %w", rule.Selector, err)
		}
		for _, form := range forms {
			g.Attach(form)
			out = append(out, form)
		}
	}
	return out, nil
}

// String summarises a report for logs and terminals.
func (r Report) String() string {
	if r.Valid {
		return "valid"
	}
	parts := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		label := issue.ID
		if label == "" {
			label = issue.Name
		}
		switch issue.Rule {
		case RuleWordLimit:
			parts = append(parts, fmt.Sprintf("%s: %d/%s words", label, issue.Count, issue.Limit))
		default:
			parts = append(parts, fmt.Sprintf("%s: required", label))
		}
	}
	return "invalid (" + strings.Join(parts, ", ") + ")"
}
