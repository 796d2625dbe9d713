// Package dateutil turns report date formats such as "DD/MM/YYYY" or a
// preset name into Go time layouts.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultPreset is the report date format when none is configured.
const DefaultPreset = "long"

// dateTokens maps format tokens to Go layout components.
// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets names common formats. Names are matched case-insensitively.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// Layout returns the Go time layout for a preset name or a token format.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D. Text in brackets is copied
// literally, so "[Generated] DD.MM.YYYY" keeps the word. An empty format
// selects DefaultPreset.
func Layout(format string) (string, error) {
	if format == "" {
		format = DefaultPreset
	}
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	b.Grow(len(format) + 8)

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}

	return b.String(), nil
}
