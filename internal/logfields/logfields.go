package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDocumentID = "document_id"
	KeyPath       = "path"
	KeyHref       = "href"
	KeyAnchor     = "anchor"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyURL        = "url"
	KeyBranch     = "branch"
	KeyCommit     = "commit"
	KeyOutput     = "output"
	KeyBuildID    = "build_id"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyError      = "error"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func DocumentID(id string) slog.Attr  { return slog.String(KeyDocumentID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Href(h string) slog.Attr         { return slog.String(KeyHref, h) }
func Anchor(a string) slog.Attr       { return slog.String(KeyAnchor, a) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Commit(c string) slog.Attr       { return slog.String(KeyCommit, c) }
func Output(o string) slog.Attr       { return slog.String(KeyOutput, o) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr   { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
