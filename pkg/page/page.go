// Package page wires the enhancers onto one document: word counters, form
// gates, tooltips, card animations, navigation, alert auto-hide and touch
// feedback. A Page owns every component it creates; nothing is shared across
// pages. All listeners and timer callbacks run through the page loop, one at
// a time.
package page

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formguard/internal/markup"
	"github.com/goliatone/go-formguard/pkg/config"
	"github.com/goliatone/go-formguard/pkg/counter"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/gate"
	"github.com/goliatone/go-formguard/pkg/helpers"
	"github.com/goliatone/go-formguard/pkg/schedule"
	"github.com/goliatone/go-formguard/pkg/toolkit"
)

// Selectors used by the cosmetic behaviours.
const (
	TooltipSelector      = `[data-bs-toggle="tooltip"]`
	CardSelector         = ".card"
	ActivityCardSelector = ".activity-card"
	NavTogglerSelector   = ".navbar-toggler"
	NavCollapseSelector  = ".navbar-collapse"
	NavLinkSelector      = ".navbar-nav .nav-link"
	AlertSelector        = `.alert[data-auto-hide="true"], .alert:not([data-auto-hide="false"])`
	ButtonSelector       = ".btn"
)

// ErrInitialized is returned when Init runs twice.
var ErrInitialized = errors.New("page: already initialized")

// Page is an enhanced document.
type Page struct {
	doc         *dom.Document
	cfg         config.Config
	logger      *slog.Logger
	loop        schedule.Loop
	baseClock   schedule.Clock
	clock       schedule.Clock
	kit         toolkit.Toolkit
	submitter   Submitter
	confirmer   helpers.Confirmer
	viewport    Viewport
	currentPath string
	templates   fs.FS

	counter *counter.Counter
	gate    *gate.Gate
	helpers *helpers.Manager
	forms   []*dom.Element

	alerts  *schedule.Task
	resize  *schedule.Task
	touch   map[*html.Node]*schedule.Task
	hovered map[*html.Node]struct{}

	initialized bool
}

// New validates cfg and prepares a page for doc. Call Init to attach the
// enhancers.
func New(doc *dom.Document, cfg config.Config, options ...Option) (*Page, error) {
	if doc == nil {
		return nil, errors.New("page: document is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Page{
		doc:       doc,
		cfg:       cfg,
		logger:    discardLogger(),
		baseClock: schedule.RealClock(),
		kit:       toolkit.Bootstrap{},
		submitter: discardSubmitter{},
		confirmer: helpers.SurveyConfirmer(),
		touch:     make(map[*html.Node]*schedule.Task),
		hovered:   make(map[*html.Node]struct{}),
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	engine, err := p.engine()
	if err != nil {
		return nil, err
	}

	p.clock = p.loop.Clock(p.baseClock)
	p.alerts = schedule.NewTask(p.clock)
	p.resize = schedule.NewTask(p.clock)

	p.counter = counter.New(doc,
		counter.WithMarkers(cfg.Markers),
		counter.WithUnit(cfg.Labels.Words),
	)
	p.gate = gate.New(
		gate.WithMarkers(cfg.Markers),
		gate.WithWordLimitRules(cfg.WordLimits),
		gate.WithCounter(p.counter),
	)
	p.helpers = &helpers.Manager{
		Toaster: helpers.NewToaster(doc, p.kit, engine,
			helpers.WithAutoHide(p.clock, cfg.Timing.ToastAutoHide.Std()),
			helpers.WithErrorHandler(p.ReportError),
		),
		Loading:   helpers.NewLoading(engine, p.clock, cfg.Timing.LoadingFallback.Std(), cfg.Labels.Loading),
		Confirmer: p.confirmer,
		Gate:      p.gate,
		Location:  cfg.TimeLocation(),
		Exec:      p.loop.Do,
	}

	doc.OnError(p.ReportError)
	return p, nil
}

// Init attaches every enhancer and schedules the alert auto-hide.
func (p *Page) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	p.loop.Do(func() {
		if p.initialized {
			err = ErrInitialized
			return
		}
		p.initialized = true
		p.logger.Debug("page loaded")

		p.initTooltips()
		p.initWordCounters()
		p.initFormValidation()
		p.initCardAnimations()
		p.initNavigation()
		p.initMobile()
		p.alerts.Schedule(p.cfg.Timing.AlertAutoHide.Std(), p.hideAlerts)

		p.logger.Debug("page initialized",
			slog.Int("tracked_fields", len(p.counter.Fields())),
			slog.Int("gated_forms", len(p.forms)),
		)
	})
	return err
}

// Do runs fn inside the page loop. fn must not call back into methods that
// enter the loop themselves.
func (p *Page) Do(fn func()) {
	p.loop.Do(fn)
}

// Dispatch fires an event at el inside the page loop.
func (p *Page) Dispatch(el *dom.Element, eventType string) *dom.Event {
	var ev *dom.Event
	p.loop.Do(func() { ev = el.Dispatch(eventType) })
	return ev
}

// Input replaces the value of field and fires an input event, as typing
// would.
func (p *Page) Input(field *dom.Element, value string) {
	p.loop.Do(func() {
		field.SetValue(value)
		field.Dispatch("input")
	})
}

// Submit fires a submit event at form. When no listener cancels it the form
// values are handed to the submitter and true is returned.
func (p *Page) Submit(ctx context.Context, form *dom.Element) (bool, error) {
	var (
		ev     *dom.Event
		values url.Values
	)
	p.loop.Do(func() {
		ev = form.Dispatch("submit")
		if !ev.DefaultPrevented() {
			values = dom.FormValues(form)
		}
	})
	if ev.DefaultPrevented() {
		return false, nil
	}
	if err := p.submitter.Submit(ctx, form, values); err != nil {
		return true, fmt.Errorf("page: submit: %w", err)
	}
	return true, nil
}

// Validate runs the form gate over form without submitting it.
func (p *Page) Validate(form *dom.Element) bool {
	var ok bool
	p.loop.Do(func() { ok = p.gate.Validate(form) })
	return ok
}

// Check runs the form gate over form and returns the detailed report.
func (p *Page) Check(form *dom.Element) gate.Report {
	var report gate.Report
	p.loop.Do(func() { report = p.gate.Check(form) })
	return report
}

// ReportError is the page-wide error handler: the error is logged and
// otherwise ignored.
func (p *Page) ReportError(err error) {
	if err == nil {
		return
	}
	p.logger.Error("page error", slog.Any("error", err))
}

// Document returns the enhanced document.
func (p *Page) Document() *dom.Document { return p.doc }

// Config returns the page configuration.
func (p *Page) Config() config.Config { return p.cfg }

// Counter returns the word counter component.
func (p *Page) Counter() *counter.Counter { return p.counter }

// Gate returns the form gate component.
func (p *Page) Gate() *gate.Gate { return p.gate }

// Helpers returns the utility surface bound to this page. Its calls enter the
// page loop, so like Do they must not be made from listeners or timers.
func (p *Page) Helpers() *helpers.Manager { return p.helpers }

// Forms returns the gated forms.
func (p *Page) Forms() []*dom.Element { return append([]*dom.Element(nil), p.forms...) }

func (p *Page) engine() (*markup.Engine, error) {
	if p.templates != nil {
		return markup.NewFromFS(p.templates), nil
	}
	return markup.New()
}

func (p *Page) find(selector string) []*dom.Element {
	found, err := p.doc.Find(selector)
	if err != nil {
		p.ReportError(err)
		return nil
	}
	return found
}

func (p *Page) initWordCounters() {
	if _, err := p.counter.AttachRules(p.doc.Root(), p.cfg.WordLimits); err != nil {
		p.ReportError(err)
	}
}

func (p *Page) initFormValidation() {
	forms, err := p.gate.AttachRules(p.doc.Root(), p.cfg.Forms)
	if err != nil {
		p.ReportError(err)
	}
	p.forms = forms
}
