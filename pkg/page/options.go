package page

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/url"

	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/helpers"
	"github.com/goliatone/go-formguard/pkg/schedule"
	"github.com/goliatone/go-formguard/pkg/toolkit"
)

// Submitter receives forms whose submission was not cancelled. It stands in
// for the backend form handler; the page itself has no transport.
type Submitter interface {
	Submit(ctx context.Context, form *dom.Element, values url.Values) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, form *dom.Element, values url.Values) error

// Submit implements Submitter.
func (f SubmitterFunc) Submit(ctx context.Context, form *dom.Element, values url.Values) error {
	return f(ctx, form, values)
}

type discardSubmitter struct{}

func (discardSubmitter) Submit(context.Context, *dom.Element, url.Values) error { return nil }

// Viewport describes the environment the page is displayed in.
type Viewport struct {
	Width int
	Touch bool
}

// Option configures a Page.
type Option func(*Page)

// WithLogger sets the logger used by the error handler.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Page) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock sets the clock driving timers. Callbacks are serialised through
// the page loop regardless of the clock.
func WithClock(clock schedule.Clock) Option {
	return func(p *Page) {
		if clock != nil {
			p.baseClock = clock
		}
	}
}

// WithToolkit sets the UI toolkit collaborator.
func WithToolkit(kit toolkit.Toolkit) Option {
	return func(p *Page) {
		if kit != nil {
			p.kit = kit
		}
	}
}

// WithSubmitter sets the backend collaborator receiving submitted forms.
func WithSubmitter(submitter Submitter) Option {
	return func(p *Page) {
		if submitter != nil {
			p.submitter = submitter
		}
	}
}

// WithConfirmer sets the confirmation prompt used by the helpers.
func WithConfirmer(confirmer helpers.Confirmer) Option {
	return func(p *Page) {
		if confirmer != nil {
			p.confirmer = confirmer
		}
	}
}

// WithViewport sets the initial viewport.
func WithViewport(viewport Viewport) Option {
	return func(p *Page) {
		p.viewport = viewport
	}
}

// WithCurrentPath sets the path used to highlight the active navigation link.
func WithCurrentPath(path string) Option {
	return func(p *Page) {
		p.currentPath = path
	}
}

// WithTemplates replaces the toast and spinner templates. files must hold
// toast.tpl and spinner.tpl at its root.
func WithTemplates(files fs.FS) Option {
	return func(p *Page) {
		if files != nil {
			p.templates = files
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
