package dateutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// Friday, 2026-01-02 14:05 UTC.
var fixed = time.Date(2026, time.January, 2, 14, 5, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// TestLayout - Token and preset conversion
// ---------------------------------------------------------------------------

func TestLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "iso tokens", format: "YYYY-MM-DD", want: "2006-01-02"},
		{name: "short tokens", format: "D/M/YY", want: "2/1/06"},
		{name: "month names", format: "MMMM MMM", want: "January Jan"},
		{name: "weekday names", format: "dddd ddd", want: "Monday Mon"},
		{name: "bracket literal", format: "[Day] D", want: "Day 2"},
		{name: "bracket keeps tokens", format: "[YYYY]", want: "YYYY"},
		{name: "plain literals", format: "D.M @ YYYY", want: "2.1 @ 2006"},
		{name: "preset", format: "european", want: "02/01/2006"},
		{name: "preset case-insensitive", format: "LONG", want: "January 2, 2006"},
		{name: "empty", format: "", wantErr: true},
		{name: "too long", format: strings.Repeat("D", MaxFormatLength+1), wantErr: true},
		{name: "unclosed bracket", format: "[Day D", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Layout(tt.format)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDateFormat) {
					t.Errorf("Layout(%q) error = %v, want ErrInvalidDateFormat", tt.format, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Layout(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("Layout(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFormat - Formatting a fixed instant
// ---------------------------------------------------------------------------

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"", "2026-01-02"},
		{"iso", "2026-01-02"},
		{"us", "01/02/2026"},
		{"long", "January 2, 2026"},
		{"dddd, D MMM", "Friday, 2 Jan"},
		{"[Week] YYYY", "Week 2026"},
	}

	for _, tt := range tests {
		got, err := Format(fixed, tt.format)
		if err != nil {
			t.Errorf("Format(%q) unexpected error: %v", tt.format, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestResolveAuto - "auto" date values
// ---------------------------------------------------------------------------

func TestResolveAuto(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "auto", value: "auto", want: "2026-01-02"},
		{name: "auto uppercase", value: "AUTO", want: "2026-01-02"},
		{name: "auto with preset", value: "auto:long", want: "January 2, 2026"},
		{name: "auto with tokens", value: "auto:DD.MM.YYYY", want: "02.01.2026"},
		{name: "literal date", value: "2025-12-31", want: "2025-12-31"},
		{name: "word starting with auto", value: "automatic", want: "automatic"},
		{name: "empty value", value: "", want: ""},
		{name: "empty format", value: "auto:", wantErr: true},
		{name: "bad format", value: "auto:[oops", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveAuto(tt.value, fixed)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDateFormat) {
					t.Errorf("ResolveAuto(%q) error = %v, want ErrInvalidDateFormat", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveAuto(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("ResolveAuto(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
