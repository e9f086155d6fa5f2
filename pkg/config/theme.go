package config

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Theme tokens read by MarkersFromTheme. Variant tokens win over the base
// manifest tokens.
const (
	TokenInvalid     = "formguard.invalid"
	TokenDanger      = "formguard.danger"
	TokenValidated   = "formguard.validated"
	TokenCounterText = "formguard.counter"
	TokenFadeIn      = "formguard.fade-in"
	TokenActive      = "formguard.active"
	TokenTouchDevice = "formguard.touch-device"
)

// MarkersFromTheme resolves marker class names from a go-theme selection,
// keeping base for every token the theme does not define.
func MarkersFromTheme(selector theme.ThemeSelector, name, variant string, base Markers) (Markers, error) {
	if selector == nil {
		return base, nil
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return base, fmt.Errorf("config: select theme %q/%q: %w", name, variant, err)
	}
	return MarkersFromSelection(selection, base), nil
}

// MarkersFromSelection applies the formguard.* tokens of selection to base.
func MarkersFromSelection(selection *theme.Selection, base Markers) Markers {
	tokens := selectionTokens(selection)
	if len(tokens) == 0 {
		return base
	}
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(tokens[key]); v != "" {
			*dst = v
		}
	}
	out := base
	override(&out.Invalid, TokenInvalid)
	override(&out.Danger, TokenDanger)
	override(&out.Validated, TokenValidated)
	override(&out.CounterText, TokenCounterText)
	override(&out.FadeIn, TokenFadeIn)
	override(&out.Active, TokenActive)
	override(&out.TouchDevice, TokenTouchDevice)
	return out
}

func selectionTokens(selection *theme.Selection) map[string]string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	tokens := make(map[string]string, len(manifest.Tokens))
	for k, v := range manifest.Tokens {
		tokens[k] = v
	}
	if selection.Variant != "" {
		if variant, ok := manifest.Variants[selection.Variant]; ok {
			for k, v := range variant.Tokens {
				tokens[k] = v
			}
		}
	}
	return tokens
}
