// Package config describes which elements of a page are enhanced and how.
// Word-limited fields and gated forms are enumerated explicitly as selector
// rules so the attachment surface can be inspected and tested without a
// document. The defaults reproduce the markup opt-in protocol
// (`[data-word-limit]` fields and `form[data-validate]` forms).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formguard/pkg/dom"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

const (
	// LimitAttribute carries the word limit in markup.
	LimitAttribute = "data-word-limit"
	// DefaultWordLimitSelector matches fields opting in through markup.
	DefaultWordLimitSelector = "[data-word-limit]"
	// DefaultFormSelector matches forms opting in through markup.
	DefaultFormSelector = "form[data-validate]"
)

// WordLimitRule enhances every element matched by Selector with a counter.
// When Limit is nil the limit is read from the element's data-word-limit
// attribute.
type WordLimitRule struct {
	Selector string `yaml:"selector"`
	Limit    *int   `yaml:"limit,omitempty"`
}

// FormRule gates submission of every form matched by Selector.
type FormRule struct {
	Selector string `yaml:"selector"`
}

// Markers are the class names reflecting component state.
type Markers struct {
	Invalid     string `yaml:"invalid"`
	Danger      string `yaml:"danger"`
	Validated   string `yaml:"validated"`
	CounterText string `yaml:"counter_text"`
	FadeIn      string `yaml:"fade_in"`
	Active      string `yaml:"active"`
	TouchDevice string `yaml:"touch_device"`
}

// Labels are the hardcoded pt-BR strings.
type Labels struct {
	Words   string `yaml:"words"`
	Loading string `yaml:"loading"`
}

// Timing holds the delays of the cosmetic behaviours.
type Timing struct {
	AlertAutoHide   Duration `yaml:"alert_auto_hide"`
	ToastAutoHide   Duration `yaml:"toast_auto_hide"`
	LoadingFallback Duration `yaml:"loading_fallback"`
	TouchRelease    Duration `yaml:"touch_release"`
	ResizeDebounce  Duration `yaml:"resize_debounce"`
	CardStagger     Duration `yaml:"card_stagger"`
}

// Navigation configures navbar behaviour.
type Navigation struct {
	CollapseBelow int `yaml:"collapse_below"`
}

// Config is the full page enhancement configuration.
type Config struct {
	WordLimits []WordLimitRule `yaml:"word_limits"`
	Forms      []FormRule      `yaml:"forms"`
	Markers    Markers         `yaml:"markers"`
	Labels     Labels          `yaml:"labels"`
	Timing     Timing          `yaml:"timing"`
	Navigation Navigation      `yaml:"navigation"`
	// Location names the IANA zone used by the date helpers; empty means the
	// local zone.
	Location string `yaml:"location"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration matching the markup protocol.
func Default() Config {
	return Config{
		WordLimits: []WordLimitRule{{Selector: DefaultWordLimitSelector}},
		Forms:      []FormRule{{Selector: DefaultFormSelector}},
		Markers:    DefaultMarkers(),
		Labels: Labels{
			Words:   "palavras",
			Loading: "Carregando...",
		},
		Timing: Timing{
			AlertAutoHide:   Duration(5 * time.Second),
			ToastAutoHide:   Duration(5 * time.Second),
			LoadingFallback: Duration(3 * time.Second),
			TouchRelease:    Duration(150 * time.Millisecond),
			ResizeDebounce:  Duration(250 * time.Millisecond),
			CardStagger:     Duration(100 * time.Millisecond),
		},
		Navigation: Navigation{CollapseBelow: 992},
		LogLevel:   "info",
	}
}

// DefaultMarkers returns the Bootstrap class names.
func DefaultMarkers() Markers {
	return Markers{
		Invalid:     "is-invalid",
		Danger:      "text-danger",
		Validated:   "was-validated",
		CounterText: "form-text",
		FadeIn:      "fade-in",
		Active:      "active",
		TouchDevice: "touch-device",
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result. Rule
// lists present in the document replace the default rules.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Markers = cfg.Markers.withDefaults(DefaultMarkers())
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks selectors, limits and timings.
func (c Config) Validate() error {
	var problems []string
	for i, rule := range c.WordLimits {
		if _, err := dom.CompileSelector(rule.Selector); err != nil {
			problems = append(problems, fmt.Sprintf("word_limits[%d]: %v", i, err))
		}
		if rule.Limit != nil && *rule.Limit < 0 {
			problems = append(problems, fmt.Sprintf("word_limits[%d]: negative limit %d", i, *rule.Limit))
		}
	}
	for i, rule := range c.Forms {
		if _, err := dom.CompileSelector(rule.Selector); err != nil {
			problems = append(problems, fmt.Sprintf("forms[%d]: %v", i, err))
		}
	}
	timings := map[string]Duration{
		"alert_auto_hide":  c.Timing.AlertAutoHide,
		"toast_auto_hide":  c.Timing.ToastAutoHide,
		"loading_fallback": c.Timing.LoadingFallback,
		"touch_release":    c.Timing.TouchRelease,
		"resize_debounce":  c.Timing.ResizeDebounce,
	}
	for _, name := range []string{"alert_auto_hide", "toast_auto_hide", "loading_fallback", "touch_release", "resize_debounce"} {
		if timings[name] <= 0 {
			problems = append(problems, fmt.Sprintf("timing.%s must be positive", name))
		}
	}
	if c.Timing.CardStagger < 0 {
		problems = append(problems, "timing.card_stagger must not be negative")
	}
	if c.Location != "" {
		if _, err := time.LoadLocation(c.Location); err != nil {
			problem := fmt.Sprintf("location: %v", err)
			city := c.Location[strings.LastIndex(c.Location, "/")+1:]
			if suggestions := SuggestZones(city, 3); len(suggestions) > 0 {
				problem += fmt.Sprintf(" (did you mean %s?)", strings.Join(suggestions, ", "))
			}
			problems = append(problems, problem)
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

// TimeLocation resolves Location, falling back to time.Local.
func (c Config) TimeLocation() *time.Location {
	if c.Location == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.Local
	}
	return loc
}

func (m Markers) withDefaults(def Markers) Markers {
	pick := func(v, fallback string) string {
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return strings.TrimSpace(v)
	}
	return Markers{
		Invalid:     pick(m.Invalid, def.Invalid),
		Danger:      pick(m.Danger, def.Danger),
		Validated:   pick(m.Validated, def.Validated),
		CounterText: pick(m.CounterText, def.CounterText),
		FadeIn:      pick(m.FadeIn, def.FadeIn),
		Active:      pick(m.Active, def.Active),
		TouchDevice: pick(m.TouchDevice, def.TouchDevice),
	}
}

// Duration decodes YAML values such as "250ms" or "5s".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("config: duration: %w", err)
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("config: duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
