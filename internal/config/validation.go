package config

import (
	"fmt"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
)

// Validate checks a defaulted configuration for values that cannot work.
func Validate(cfg *Config) error {
	var problems []string

	for _, ext := range cfg.Source.Extensions {
		if !strings.HasPrefix(ext, ".") {
			problems = append(problems, fmt.Sprintf("source.extensions: %q must start with a dot", ext))
		}
	}
	if repo := cfg.Source.Repository; repo != nil && strings.TrimSpace(repo.URL) == "" {
		problems = append(problems, "source.repository.url is required when a repository is configured")
	}
	if repo := cfg.Source.Repository; repo != nil && (repo.Depth < 0 || repo.MaxRetries < 0) {
		problems = append(problems, "source.repository depth and max_retries cannot be negative")
	}
	if !strings.HasPrefix(cfg.Links.BasePath, "/") {
		problems = append(problems, fmt.Sprintf("links.base_path: %q must be absolute", cfg.Links.BasePath))
	}
	if cfg.TOC.MaxDepth < 1 || cfg.TOC.MaxDepth > MaxTOCDepth {
		problems = append(problems, fmt.Sprintf("toc.max_depth: %d out of range 1..%d", cfg.TOC.MaxDepth, MaxTOCDepth))
	}
	if cfg.Preview.Port < 1 || cfg.Preview.Port > 65535 {
		problems = append(problems, fmt.Sprintf("preview.port: %d out of range", cfg.Preview.Port))
	}
	if !strings.HasPrefix(cfg.Monitoring.Metrics.Path, "/") {
		problems = append(problems, "monitoring.metrics.path must start with /")
	}
	if !strings.HasPrefix(cfg.Monitoring.HealthPath, "/") {
		problems = append(problems, "monitoring.health_path must start with /")
	}
	if reserved(cfg.Monitoring.HealthPath) || cfg.Monitoring.HealthPath == cfg.Monitoring.Metrics.Path {
		problems = append(problems, "monitoring.health_path collides with another route")
	}
	if cfg.Monitoring.Metrics.Enabled && reserved(cfg.Monitoring.Metrics.Path) {
		problems = append(problems, "monitoring.metrics.path collides with another route")
	}
	if cfg.Schedule.RefreshInterval != "" {
		if d, err := time.ParseDuration(cfg.Schedule.RefreshInterval); err != nil || d <= 0 {
			problems = append(problems, fmt.Sprintf("schedule.refresh_interval: %q is not a positive duration", cfg.Schedule.RefreshInterval))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return ferrors.ConfigError("configuration validation failed").
		WithContext("problems", problems).
		Build()
}

// reserved reports paths the preview server routes itself.
func reserved(path string) bool {
	switch path {
	case "/", "/index.html", "/livereload":
		return true
	}
	return false
}

// Interval returns the parsed refresh interval, or zero when disabled.
func (s ScheduleConfig) Interval() time.Duration {
	d, err := time.ParseDuration(s.RefreshInterval)
	if err != nil {
		return 0
	}
	return d
}
