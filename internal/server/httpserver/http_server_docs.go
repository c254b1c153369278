package httpserver

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	derrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/logfields"
)

var statusPage = template.Must(template.New("status").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>body{font-family:sans-serif;max-width:800px;margin:50px auto;padding:20px}h1.failed{color:#d32f2f}pre{background:#f5f5f5;padding:15px;border-radius:4px;overflow-x:auto;white-space:pre-wrap}</style>
</head><body>
<h1{{if .Error}} class="failed"{{end}}>{{.Title}}</h1>
<p>{{.Message}}</p>
{{- if .Error}}
<h2>Error details</h2>
<pre>{{.Error}}</pre>
{{- end}}
{{- if .Script}}
<script>{{.Script}}</script>
{{- end}}
</body></html>
`))

type statusPageData struct {
	Title   string
	Message string
	Error   string
	Script  template.JS
}

// handlePage serves the current page at "/" and "/index.html".
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		s.errorAdapter.WriteErrorResponse(w, r, derrors.NewError(derrors.CategoryNotFound, "not found").
			WithContext("path", r.URL.Path).
			Build())
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	page, hash, lastErr := s.page, s.hash, s.lastError
	s.mu.RUnlock()

	if page == nil {
		s.renderStatusPage(w, lastErr)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", `"`+hash+`"`)
	if r.Header.Get("If-None-Match") == `"`+hash+`"` {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(page); err != nil {
		slog.Debug("page write failed", logfields.Error(err))
	}
}

// renderStatusPage is shown until the first build succeeds.
func (s *Server) renderStatusPage(w http.ResponseWriter, buildErr error) {
	data := statusPageData{
		Title:   "Reference is being prepared",
		Message: "The page has not been built yet. It will load automatically once the build completes.",
		Script:  s.opts.LiveReloadScript,
	}
	if buildErr != nil {
		data.Title = "Build failed"
		data.Message = "The reference page failed to build. Fix the error below and save to rebuild."
		data.Error = buildErr.Error()
	}
	if s.opts.LiveReloadHub == nil {
		data.Script = ""
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusServiceUnavailable)
	if err := statusPage.Execute(w, data); err != nil {
		slog.Debug("status page write failed", logfields.Error(err))
	}
}

// handleHealth reports build state as JSON. It answers 200 once a page
// exists, even when the latest rebuild failed, and 503 before that.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	h := Health{
		HasBuild:      s.page != nil,
		Builds:        s.builds,
		PageHash:      s.hash,
		UptimeSeconds: time.Since(s.startTime).Seconds(),
	}
	if !s.lastBuild.IsZero() {
		h.LastBuild = s.lastBuild.UTC().Format(time.RFC3339)
	}
	if s.lastError != nil {
		h.LastError = s.lastError.Error()
	}
	s.mu.RUnlock()

	status := http.StatusOK
	switch {
	case h.HasBuild && h.LastError != "":
		h.Status = HealthDegraded
	case h.HasBuild:
		h.Status = HealthOK
	case h.LastError != "":
		h.Status = HealthFailed
		status = http.StatusServiceUnavailable
	default:
		h.Status = HealthPending
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(h)
}
