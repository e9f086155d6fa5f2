package formguard

import (
	"context"
	"fmt"
	"io"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formguard/pkg/config"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/gate"
	"github.com/goliatone/go-formguard/pkg/page"
)

// Config aliases config.Config so callers can configure pages from the root
// package.
type Config = config.Config

// WordLimitRule aliases config.WordLimitRule.
type WordLimitRule = config.WordLimitRule

// FormRule aliases config.FormRule.
type FormRule = config.FormRule

// Page aliases page.Page.
type Page = page.Page

// Option aliases page.Option.
type Option = page.Option

// Report aliases gate.Report.
type Report = gate.Report

// DefaultConfig returns the configuration matching the markup opt-in
// protocol.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// ApplyTheme resolves marker class names from a go-theme selection and
// returns cfg with them applied.
func ApplyTheme(cfg Config, selector theme.ThemeSelector, name, variant string) (Config, error) {
	markers, err := config.MarkersFromTheme(selector, name, variant, cfg.Markers)
	if err != nil {
		return cfg, err
	}
	cfg.Markers = markers
	return cfg, nil
}

// Enhance parses an HTML document from r and attaches every enhancer
// described by cfg. It is the simplest entry point for callers holding
// server-rendered markup.
func Enhance(ctx context.Context, r io.Reader, cfg Config, options ...Option) (*Page, error) {
	doc, err := dom.Parse(r)
	if err != nil {
		return nil, err
	}
	p, err := page.New(doc, cfg, options...)
	if err != nil {
		return nil, err
	}
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// EnhanceString is Enhance over an in-memory document.
func EnhanceString(ctx context.Context, markup string, cfg Config, options ...Option) (*Page, error) {
	return Enhance(ctx, strings.NewReader(markup), cfg, options...)
}

// EnhanceHTML enhances the document from r and returns the resulting markup.
// Pending timers are dropped, so the output reflects the state right after
// initialisation.
func EnhanceHTML(ctx context.Context, r io.Reader, cfg Config, options ...Option) ([]byte, error) {
	p, err := Enhance(ctx, r, cfg, options...)
	if err != nil {
		return nil, err
	}
	p.CancelTimers()

	var out strings.Builder
	if err := p.Document().Render(&out); err != nil {
		return nil, fmt.Errorf("formguard: render: %w", err)
	}
	return []byte(out.String()), nil
}
