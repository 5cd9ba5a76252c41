package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyDocument   = "document"
	KeyAsset      = "asset"
	KeySnippet    = "snippet"
	KeySection    = "section"
	KeyWeight     = "weight"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Document(d string) slog.Attr     { return slog.String(KeyDocument, d) }
func Asset(a string) slog.Attr        { return slog.String(KeyAsset, a) }
func Snippet(s string) slog.Attr      { return slog.String(KeySnippet, s) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Weight(w int) slog.Attr          { return slog.Int(KeyWeight, w) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
