// Package logfields holds the canonical slog attribute keys of the engine.
package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyPipeline   = "pipeline"
	KeyItem       = "item"
	KeyStage      = "stage"
	KeyModule     = "module"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyError      = "error"
)

func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Pipeline(dir string) slog.Attr   { return slog.String(KeyPipeline, dir) }
func Item(path string) slog.Attr      { return slog.String(KeyItem, path) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Module(path string) slog.Attr    { return slog.String(KeyModule, path) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
