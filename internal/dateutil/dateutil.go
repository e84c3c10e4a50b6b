// Package dateutil formats the run date for the date tag and for "auto"
// date values in item data.
//
// Formats are written with tokens rather than Go reference layouts:
//
//	YYYY 2026   YY 26
//	MMMM January   MMM Jan   MM 01   M 1
//	DD 02   D 2
//	dddd Monday   ddd Mon
//
// Text in brackets is copied as is: "[Week of] MMM D". Any other character
// is a literal. A format may also name a preset (iso, european, us, long).
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxFormatLength bounds token formats.
const MaxFormatLength = 50

// DefaultFormat is used for an empty format and a bare "auto".
const DefaultFormat = "YYYY-MM-DD"

// Presets are named formats, matched case-insensitively.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// tokens is ordered longest first so "MMMM" wins over "MM".
var tokens = []struct{ token, layout string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"dddd", "Monday"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Layout converts a preset name or token format to a Go time layout.
func Layout(format string) (string, error) {
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}
	switch {
	case format == "":
		return "", fmt.Errorf("%w: empty format", ErrInvalidDateFormat)
	case len(format) > MaxFormatLength:
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidDateFormat, MaxFormatLength)
	}

	var b strings.Builder
	rest := format
	for rest != "" {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket in %q", ErrInvalidDateFormat, format)
			}
			b.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}
		n := 1
		lit := rest[:1]
		for _, t := range tokens {
			if strings.HasPrefix(rest, t.token) {
				n, lit = len(t.token), t.layout
				break
			}
		}
		b.WriteString(lit)
		rest = rest[n:]
	}
	return b.String(), nil
}

// Format formats t with a token format or preset. An empty format uses
// DefaultFormat.
func Format(t time.Time, format string) (string, error) {
	if format == "" {
		format = DefaultFormat
	}
	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// ResolveAuto formats t when value is "auto" or "auto:FORMAT" and returns
// any other value unchanged.
func ResolveAuto(value string, t time.Time) (string, error) {
	prefix, format, hasFormat := strings.Cut(value, ":")
	if !strings.EqualFold(prefix, "auto") {
		return value, nil
	}
	if !hasFormat {
		return Format(t, "")
	}
	if format == "" {
		return "", fmt.Errorf("%w: nothing after \"auto:\"", ErrInvalidDateFormat)
	}
	return Format(t, format)
}
