package httpserver

import (
	"html/template"
	"net/http"
)

// LiveReloadHub serves the live reload endpoint and notifies connected browsers.
type LiveReloadHub interface {
	http.Handler
	Broadcast(hash string) int
	Shutdown()
}

// Options configures additional server wiring that is runtime-specific.
type Options struct {
	// Optional: live reload support (preview mode).
	LiveReloadHub LiveReloadHub
	// LiveReloadScript is embedded in status pages so browsers reload once a
	// build succeeds.
	LiveReloadScript template.JS

	// Optional: Prometheus exposition handler, mounted on the metrics path.
	PrometheusHandler http.Handler
}

// Health is the JSON body of the health endpoint.
type Health struct {
	Status        string  `json:"status"`
	HasBuild      bool    `json:"has_build"`
	Builds        int     `json:"builds"`
	LastBuild     string  `json:"last_build,omitempty"`
	LastError     string  `json:"last_error,omitempty"`
	PageHash      string  `json:"page_hash,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Health status values.
const (
	HealthOK       = "ok"
	HealthPending  = "pending"
	HealthDegraded = "degraded"
	HealthFailed   = "failed"
)
