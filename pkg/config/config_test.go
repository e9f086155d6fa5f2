package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"
)

func TestParseEmptyReturnsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOverrides(t *testing.T) {
	raw := []byte(`
word_limits:
  - selector: "#comment"
    limit: 5
  - selector: "textarea.summary"
forms:
  - selector: "form#activity"
markers:
  invalid: "has-error"
timing:
  resize_debounce: "400ms"
location: "America/Sao_Paulo"
`)
	cfg, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	five := 5
	wantRules := []WordLimitRule{
		{Selector: "#comment", Limit: &five},
		{Selector: "textarea.summary"},
	}
	if diff := cmp.Diff(wantRules, cfg.WordLimits); diff != "" {
		t.Fatalf("word limit rules mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]FormRule{{Selector: "form#activity"}}, cfg.Forms); diff != "" {
		t.Fatalf("form rules mismatch (-want +got):\n%s", diff)
	}
	if cfg.Markers.Invalid != "has-error" || cfg.Markers.Danger != "text-danger" {
		t.Fatalf("unexpected markers: %+v", cfg.Markers)
	}
	if cfg.Timing.ResizeDebounce.Std() != 400*time.Millisecond {
		t.Fatalf("resize debounce = %v", cfg.Timing.ResizeDebounce.Std())
	}
	if cfg.Timing.AlertAutoHide.Std() != 5*time.Second {
		t.Fatalf("unspecified timings should keep defaults, got %v", cfg.Timing.AlertAutoHide.Std())
	}
	if cfg.TimeLocation().String() != "America/Sao_Paulo" {
		t.Fatalf("unexpected location %s", cfg.TimeLocation())
	}
}

func TestParseRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"bad selector":   "word_limits:\n  - selector: \"[data-word-limit\"\n",
		"empty selector": "forms:\n  - selector: \"  \"\n",
		"negative limit": "word_limits:\n  - selector: \"#a\"\n    limit: -1\n",
		"zero timing":    "timing:\n  touch_release: \"0s\"\n",
		"bad location":   "location: \"Nowhere/Special\"\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := Parse([]byte("timing:\n  touch_release: \"soon\"\n")); err == nil {
		t.Fatalf("expected duration decode error")
	}
}

func TestBadLocationSuggestsZones(t *testing.T) {
	_, err := Parse([]byte("location: \"Brazil/Sao_Paulo_City\"\n"))
	if err == nil {
		t.Fatalf("expected invalid location")
	}
	_, err = Parse([]byte("location: \"Sao_Paulo\"\n"))
	if err == nil || !strings.Contains(err.Error(), "did you mean America/Sao_Paulo?") {
		t.Fatalf("expected a zone suggestion, got %v", err)
	}
}

func TestSuggestZones(t *testing.T) {
	cases := []struct {
		query string
		limit int
		want  []string
	}{
		{query: "sao paulo", limit: 3, want: []string{"America/Sao_Paulo"}},
		{query: "europe/l", limit: 2, want: []string{"Europe/Lisbon", "Europe/London"}},
		{query: "an", limit: 0, want: nil},
		{query: "  ", limit: 5, want: nil},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, SuggestZones(tc.query, tc.limit)); diff != "" {
			t.Fatalf("SuggestZones(%q) mismatch (-want +got):\n%s", tc.query, diff)
		}
	}

	zones, err := Zones()
	if err != nil || len(zones) == 0 {
		t.Fatalf("expected embedded zones, got %d (%v)", len(zones), err)
	}
}

func TestZeroLimitIsAccepted(t *testing.T) {
	if _, err := Parse([]byte("word_limits:\n  - selector: \"#a\"\n    limit: 0\n")); err != nil {
		t.Fatalf("limit 0 should be valid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formguard.yaml")
	if err := os.WriteFile(path, []byte("labels:\n  words: \"words\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Labels.Words != "words" || cfg.Labels.Loading != "Carregando..." {
		t.Fatalf("unexpected labels: %+v", cfg.Labels)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestMarkersFromTheme(t *testing.T) {
	selector := &stubThemeSelector{selection: &theme.Selection{
		Theme:   "tailwind",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:    "tailwind",
			Version: "1.0.0",
			Tokens: map[string]string{
				TokenInvalid: "border-red-500",
				TokenDanger:  "text-red-600",
				"brand":      "#123456",
			},
			Variants: map[string]theme.Variant{
				"dark": {Tokens: map[string]string{TokenDanger: "text-red-300"}},
			},
		},
	}}

	markers, err := MarkersFromTheme(selector, "tailwind", "dark", DefaultMarkers())
	if err != nil {
		t.Fatalf("markers: %v", err)
	}
	want := DefaultMarkers()
	want.Invalid = "border-red-500"
	want.Danger = "text-red-300"
	if diff := cmp.Diff(want, markers); diff != "" {
		t.Fatalf("markers mismatch (-want +got):\n%s", diff)
	}
	if len(selector.calls) != 1 || selector.calls[0] != "tailwind/dark" {
		t.Fatalf("unexpected selector calls: %v", selector.calls)
	}
}

func TestMarkersFromThemeError(t *testing.T) {
	selector := &stubThemeSelector{err: errors.New("unknown theme")}
	markers, err := MarkersFromTheme(selector, "missing", "", DefaultMarkers())
	if err == nil {
		t.Fatalf("expected selector error")
	}
	if diff := cmp.Diff(DefaultMarkers(), markers); diff != "" {
		t.Fatalf("base markers should be returned on error (-want +got):\n%s", diff)
	}
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []string
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, name+"/"+variant)
	return s.selection, s.err
}
