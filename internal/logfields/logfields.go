package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID       = "run_id"
	KeySourcePath  = "source_path"
	KeyTargetPath  = "target_path"
	KeyPhase       = "phase"
	KeyDurationMS  = "duration_ms"
	KeyVault       = "vault"
	KeySite        = "site"
	KeyFeature     = "feature"
	KeyLinkCount   = "link_count"
	KeyAttachments = "attachments"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func SourcePath(p string) slog.Attr   { return slog.String(KeySourcePath, p) }
func TargetPath(p string) slog.Attr   { return slog.String(KeyTargetPath, p) }
func Phase(name string) slog.Attr     { return slog.String(KeyPhase, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Vault(name string) slog.Attr     { return slog.String(KeyVault, name) }
func Site(name string) slog.Attr      { return slog.String(KeySite, name) }
func Feature(name string) slog.Attr   { return slog.String(KeyFeature, name) }
func LinkCount(n int) slog.Attr       { return slog.Int(KeyLinkCount, n) }
func AttachmentCount(n int) slog.Attr { return slog.Int(KeyAttachments, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
