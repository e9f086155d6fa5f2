// Package words implements the word counting rule shared by the live field
// counters and the submit-time form gate. Counting is locale naive: tokens are
// maximal runs of non-whitespace, where whitespace means the ASCII set
// (space, tab, newline, vertical tab, form feed, carriage return). Punctuation
// and multi-byte scripts are not special cased, which is acceptable for
// Portuguese text.
package words

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultUnit is the label appended to counter text.
const DefaultUnit = "palavras"

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

// Trim removes leading and trailing ASCII whitespace.
func Trim(text string) string {
	return strings.TrimFunc(text, isSpace)
}

// Count returns the number of whitespace-delimited, non-empty tokens in text.
func Count(text string) int {
	trimmed := Trim(text)
	if trimmed == "" {
		return 0
	}
	return len(strings.FieldsFunc(trimmed, isSpace))
}

// Limit is a parsed word limit. An invalid limit (for example a non-numeric
// data-word-limit attribute) never reports an overflow.
type Limit struct {
	Value int
	Valid bool
}

// NewLimit returns a valid limit of n words.
func NewLimit(n int) Limit {
	return Limit{Value: n, Valid: true}
}

// ParseLimit reads the leading integer of raw, ignoring surrounding
// whitespace and any trailing garbage ("12 words" is 12). A "0x" prefix reads
// hexadecimal digits ("0x10" is 16). Input without a leading integer yields an
// invalid limit.
func ParseLimit(raw string) Limit {
	s := strings.TrimSpace(raw)
	end := 0
	negative := false
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		negative = s[end] == '-'
		end++
	}
	base, isDigit := 10, isDecimal
	if len(s) > end+1 && s[end] == '0' && (s[end+1] == 'x' || s[end+1] == 'X') {
		base, isDigit = 16, isHex
		end += 2
	}
	digits := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == digits {
		return Limit{}
	}
	n, err := strconv.ParseInt(s[digits:end], base, strconv.IntSize)
	if err != nil {
		return Limit{}
	}
	if negative {
		n = -n
	}
	return NewLimit(int(n))
}

func isDecimal(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Exceeded reports whether count is over the limit.
func (l Limit) Exceeded(count int) bool {
	return l.Valid && count > l.Value
}

func (l Limit) String() string {
	if !l.Valid {
		return "NaN"
	}
	return strconv.Itoa(l.Value)
}

// Tally is the outcome of counting a text against a limit.
type Tally struct {
	Count int
	Limit Limit
}

// Evaluate counts text and pairs the result with limit.
func Evaluate(text string, limit Limit) Tally {
	return Tally{Count: Count(text), Limit: limit}
}

// Over reports whether the tally exceeds its limit.
func (t Tally) Over() bool {
	return t.Limit.Exceeded(t.Count)
}

// Label renders the counter text, e.g. "6/5 palavras". An empty unit falls
// back to DefaultUnit.
func (t Tally) Label(unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = DefaultUnit
	}
	return fmt.Sprintf("%d/%s %s", t.Count, t.Limit, unit)
}
