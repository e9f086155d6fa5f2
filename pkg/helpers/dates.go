package helpers

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a value cannot be parsed as a date.
var ErrInvalidDate = errors.New("helpers: invalid date")

// pt-BR display layouts.
const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006, 15:04"
)

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate accepts ISO 8601 style timestamps as emitted by the backend.
// Values without an offset are read in loc; values with one are converted to
// loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// FormatDate renders value as dd/mm/aaaa.
func FormatDate(value string, loc *time.Location) (string, error) {
	t, err := ParseDate(value, loc)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// FormatDateTime renders value as dd/mm/aaaa, hh:mm.
func FormatDateTime(value string, loc *time.Location) (string, error) {
	t, err := ParseDate(value, loc)
	if err != nil {
		return "", err
	}
	return t.Format(DateTimeLayout), nil
}
