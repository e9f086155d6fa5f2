package helpers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formguard/internal/markup"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/schedule"
	"github.com/goliatone/go-formguard/pkg/toolkit"
)

// ContainerClass identifies the toast container.
const ContainerClass = "toast-container"

var toastKinds = map[string]struct{}{
	"primary": {}, "secondary": {}, "success": {}, "danger": {},
	"warning": {}, "info": {}, "light": {}, "dark": {},
}

// Toaster appends toast notifications to a document.
type Toaster struct {
	doc      *dom.Document
	kit      toolkit.Toolkit
	engine   *markup.Engine
	clock    schedule.Clock
	autoHide time.Duration
	onError  func(error)
}

// ToasterOption configures a Toaster.
type ToasterOption func(*Toaster)

// WithAutoHide hides each toast after d using clock.
func WithAutoHide(clock schedule.Clock, d time.Duration) ToasterOption {
	return func(t *Toaster) {
		t.clock = clock
		t.autoHide = d
	}
}

// WithErrorHandler receives the errors raised by the auto-hide timer, which
// has no caller to return them to.
func WithErrorHandler(fn func(error)) ToasterOption {
	return func(t *Toaster) {
		t.onError = fn
	}
}

// NewToaster returns a toaster for doc.
func NewToaster(doc *dom.Document, kit toolkit.Toolkit, engine *markup.Engine, options ...ToasterOption) *Toaster {
	if kit == nil {
		kit = toolkit.Bootstrap{}
	}
	t := &Toaster{doc: doc, kit: kit, engine: engine}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Show appends a toast with the sanitised message. Unknown kinds fall back to
// "info". The toast removes itself once hidden.
func (t *Toaster) Show(message, kind string) (*dom.Element, error) {
	container, err := t.container()
	if err != nil {
		return nil, err
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if _, ok := toastKinds[kind]; !ok {
		kind = "info"
	}
	rendered, err := t.engine.Render(markup.TemplateToast, map[string]any{
		"kind":        kind,
		"message":     markup.Safe(markup.SanitizeMessage(message)),
		"close_label": "Close",
	})
	if err != nil {
		return nil, err
	}

	container.AppendHTML(rendered)
	toast := container.LastElementChild()
	if toast == nil {
		return nil, errors.New("helpers: toast markup produced no element")
	}
	toast.On(toolkit.EventToastHidden, func(*dom.Event) { toast.Remove() })

	if err := t.kit.ShowToast(toast); err != nil {
		return nil, fmt.Errorf("helpers: show toast: %w", err)
	}
	if t.clock != nil && t.autoHide > 0 {
		task := schedule.NewTask(t.clock)
		task.Schedule(t.autoHide, func() {
			if !toast.Attached() {
				return
			}
			if err := t.kit.HideToast(toast); err != nil {
				t.report(fmt.Errorf("helpers: hide toast: %w", err))
			}
		})
	}
	return toast, nil
}

func (t *Toaster) report(err error) {
	if t.onError != nil {
		t.onError(err)
	}
}

func (t *Toaster) container() (*dom.Element, error) {
	existing, err := t.doc.First("." + ContainerClass)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	body := t.doc.Body()
	if body == nil {
		return nil, errors.New("helpers: document has no body")
	}
	container := t.doc.CreateElement("div")
	container.AddClass(ContainerClass, "position-fixed", "bottom-0", "end-0", "p-3")
	body.AppendChild(container)
	return container, nil
}
