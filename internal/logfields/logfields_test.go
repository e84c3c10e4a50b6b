package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Pipeline", KeyPipeline, "docs", Pipeline("docs")},
		{"Item", KeyItem, "docs/a.md", Item("docs/a.md")},
		{"Stage", KeyStage, "resolve", Stage("resolve")},
		{"Module", KeyModule, "site.yaml", Module("site.yaml")},
		{"Path", KeyPath, "dist/a.html", Path("dist/a.html")},
		{"Count", KeyCount, "3", Count(3)},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestErrorHelper(t *testing.T) {
	t.Parallel()

	if attr := Error(nil); attr.Key != KeyError || attr.Value.String() != "" {
		t.Fatalf("Error(nil) = %v", attr)
	}
	if attr := Error(errors.New("boom")); attr.Value.String() != "boom" {
		t.Fatalf("Error() value = %s, want boom", attr.Value.String())
	}
}

func TestDurationMS(t *testing.T) {
	t.Parallel()

	if v := DurationMS(12.5); v.Key != KeyDurationMS || v.Value.Float64() != 12.5 {
		t.Fatalf("DurationMS() = %v", v)
	}
}
