// Package helpers is the utility surface offered to other page scripts: pt-BR
// date formatting, a blocking confirmation wrapper, toast notifications,
// loading-state toggles for buttons and the form validation entry point.
package helpers

import (
	"context"
	"time"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/gate"
)

// Manager bundles the helpers bound to one page.
type Manager struct {
	Toaster   *Toaster
	Loading   *Loading
	Confirmer Confirmer
	Gate      *gate.Gate
	Location  *time.Location

	// Exec runs every call that touches the document. A page sets it to its
	// loop so helper calls serialise with listeners and timers. Calls made
	// from inside that loop must use the components directly.
	Exec func(func())
}

func (m *Manager) exec(fn func()) {
	if m.Exec == nil {
		fn()
		return
	}
	m.Exec(fn)
}

// ShowLoading puts button in the busy state.
func (m *Manager) ShowLoading(button *dom.Element) error {
	var err error
	m.exec(func() { err = m.Loading.Show(button) })
	return err
}

// HideLoading restores button.
func (m *Manager) HideLoading(button *dom.Element) {
	m.exec(func() { m.Loading.Hide(button) })
}

// FormatDate formats value as dd/mm/aaaa in the page location.
func (m *Manager) FormatDate(value string) (string, error) {
	return FormatDate(value, m.Location)
}

// FormatDateTime formats value as dd/mm/aaaa, hh:mm in the page location.
func (m *Manager) FormatDateTime(value string) (string, error) {
	return FormatDateTime(value, m.Location)
}

// ConfirmAction asks message and runs callback when confirmed. The prompt
// blocks outside Exec; only the callback runs through it.
func (m *Manager) ConfirmAction(ctx context.Context, message string, callback func()) (bool, error) {
	if callback != nil {
		cb := callback
		callback = func() { m.exec(cb) }
	}
	return ConfirmAction(ctx, m.Confirmer, message, callback)
}

// ShowToast displays a notification of the given kind.
func (m *Manager) ShowToast(message, kind string) (*dom.Element, error) {
	var (
		toast *dom.Element
		err   error
	)
	m.exec(func() { toast, err = m.Toaster.Show(message, kind) })
	return toast, err
}

// ValidateForm runs the form gate rules over form.
func (m *Manager) ValidateForm(form *dom.Element) bool {
	var ok bool
	m.exec(func() { ok = m.Gate.Validate(form) })
	return ok
}
