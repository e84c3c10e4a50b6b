package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level   string
		want    slog.Level
		enabled bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelDebug, false},
		{"warn", slog.LevelInfo, false},
		{"error", slog.LevelWarn, false},
		{"", slog.LevelInfo, true},
		{"bogus", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			logger := newLogger(tt.level, "text", &bytes.Buffer{})
			if got := logger.Enabled(context.Background(), tt.want); got != tt.enabled {
				t.Errorf("Enabled(%v) = %v, want %v", tt.want, got, tt.enabled)
			}
		})
	}
}

func TestNewLogger_Format(t *testing.T) {
	t.Parallel()

	var jsonBuf, textBuf bytes.Buffer
	newLogger("info", "json", &jsonBuf).Info("built", "count", 2)
	newLogger("info", "text", &textBuf).Info("built", "count", 2)

	var rec map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &rec); err != nil {
		t.Fatalf("json output not decodable: %v (%q)", err, jsonBuf.String())
	}
	if rec["msg"] != "built" {
		t.Errorf("msg = %v, want %q", rec["msg"], "built")
	}
	if !strings.Contains(textBuf.String(), "count=2") {
		t.Errorf("text output = %q, want count=2", textBuf.String())
	}
}
