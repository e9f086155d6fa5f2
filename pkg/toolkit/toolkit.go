// Package toolkit defines the UI toolkit collaborator: the widgets (tooltip,
// collapsible navigation, dismissible alert, toast) the page enhancers trigger
// but do not implement. Bootstrap applies the document mutations the
// Bootstrap 5 widgets perform once their transitions complete.
package toolkit

import (
	"strings"

	"github.com/goliatone/go-formguard/pkg/dom"
)

// Toast lifecycle events dispatched by Bootstrap.
const (
	EventToastShown  = "shown.bs.toast"
	EventToastHidden = "hidden.bs.toast"
	EventAlertClosed = "closed.bs.alert"
)

// Toolkit instantiates and triggers widgets on already resolved elements.
type Toolkit interface {
	Tooltip(el *dom.Element) error
	CollapseHide(el *dom.Element) error
	CloseAlert(el *dom.Element) error
	ShowToast(el *dom.Element) error
	HideToast(el *dom.Element) error
}

// Bootstrap mirrors the end state of the Bootstrap widgets.
type Bootstrap struct{}

var _ Toolkit = Bootstrap{}

// Tooltip moves the title into data-bs-original-title so the native tooltip
// does not compete with the widget, and links the trigger to its tip.
func (Bootstrap) Tooltip(el *dom.Element) error {
	title, _ := el.Attr("title")
	if title = strings.TrimSpace(title); title != "" {
		el.SetAttr("data-bs-original-title", title)
		el.RemoveAttr("title")
	}
	if label, ok := el.Attr("data-bs-original-title"); ok && !el.HasAttr("aria-label") {
		el.SetAttr("aria-label", label)
	}
	return nil
}

// CollapseHide closes a collapsible panel.
func (Bootstrap) CollapseHide(el *dom.Element) error {
	el.RemoveClass("show", "collapsing")
	el.AddClass("collapse")
	return nil
}

// CloseAlert removes the alert from the document and announces it.
func (Bootstrap) CloseAlert(el *dom.Element) error {
	el.RemoveClass("show")
	el.Dispatch(EventAlertClosed)
	el.Remove()
	return nil
}

// ShowToast reveals a toast.
func (Bootstrap) ShowToast(el *dom.Element) error {
	el.RemoveClass("hide")
	el.AddClass("show")
	el.Dispatch(EventToastShown)
	return nil
}

// HideToast hides a toast and announces it, letting listeners discard it.
func (Bootstrap) HideToast(el *dom.Element) error {
	el.RemoveClass("show")
	el.AddClass("hide")
	el.Dispatch(EventToastHidden)
	return nil
}
