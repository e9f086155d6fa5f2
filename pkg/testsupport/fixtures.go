// Package testsupport holds fixtures shared by the package tests.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/toolkit"
)

// ParseDocument parses markup, failing the test on error.
func ParseDocument(t *testing.T, markup string) *dom.Document {
	t.Helper()

	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

// LoadDocument reads an HTML fixture, failing the test on error.
func LoadDocument(t *testing.T, path string) *dom.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a parsed fixture without requiring testing.T.
func LoadDocumentFromPath(path string) (*dom.Document, error) {
	if path == "" {
		return nil, errors.New("testsupport: document path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: open document: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse document: %w", err)
	}
	return doc, nil
}

// MustByID returns the element with id, failing the test when it is missing.
func MustByID(t *testing.T, doc *dom.Document, id string) *dom.Element {
	t.Helper()

	el := doc.ByID(id)
	if el == nil {
		t.Fatalf("element #%s not found", id)
	}
	return el
}

// RecordingToolkit applies the Bootstrap end states and records every widget
// call as "widget:id".
type RecordingToolkit struct {
	toolkit.Bootstrap
	Calls []string
}

var _ toolkit.Toolkit = (*RecordingToolkit)(nil)

func (k *RecordingToolkit) record(widget string, el *dom.Element) {
	k.Calls = append(k.Calls, widget+":"+el.ID())
}

// Tooltip implements toolkit.Toolkit.
func (k *RecordingToolkit) Tooltip(el *dom.Element) error {
	k.record("tooltip", el)
	return k.Bootstrap.Tooltip(el)
}

// CollapseHide implements toolkit.Toolkit.
func (k *RecordingToolkit) CollapseHide(el *dom.Element) error {
	k.record("collapse", el)
	return k.Bootstrap.CollapseHide(el)
}

// CloseAlert implements toolkit.Toolkit.
func (k *RecordingToolkit) CloseAlert(el *dom.Element) error {
	k.record("alert", el)
	return k.Bootstrap.CloseAlert(el)
}

// ShowToast implements toolkit.Toolkit.
func (k *RecordingToolkit) ShowToast(el *dom.Element) error {
	k.record("toast.show", el)
	return k.Bootstrap.ShowToast(el)
}

// HideToast implements toolkit.Toolkit.
func (k *RecordingToolkit) HideToast(el *dom.Element) error {
	k.record("toast.hide", el)
	return k.Bootstrap.HideToast(el)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
