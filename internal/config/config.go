// Package config loads and validates the apiref YAML configuration.
package config

// CurrentVersion is the only configuration version understood by this build.
const CurrentVersion = "1.0"

// Config is the root configuration document (apiref.yaml).
type Config struct {
	Version    string           `yaml:"version"`
	Source     SourceConfig     `yaml:"source"`
	Query      QueryConfig      `yaml:"query,omitempty"`
	Links      LinksConfig      `yaml:"links"`
	TOC        TOCConfig        `yaml:"toc"`
	Page       PageConfig       `yaml:"page"`
	Theme      ThemeConfig      `yaml:"theme"`
	Output     OutputConfig     `yaml:"output"`
	Cache      CacheConfig      `yaml:"cache,omitempty"`
	Logging    LoggingConfig    `yaml:"logging"`
	Preview    PreviewConfig    `yaml:"preview"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Events     EventsConfig     `yaml:"events,omitempty"`
	Schedule   ScheduleConfig   `yaml:"schedule,omitempty"`
}

// SourceConfig describes where reference documents are read from.
type SourceConfig struct {
	Dir        string            `yaml:"dir"`        // Directory holding the documents (relative to the clone when Repository is set)
	Extensions []string          `yaml:"extensions"` // File extensions treated as documents
	Repository *RepositoryConfig `yaml:"repository,omitempty"`
}

// RepositoryConfig points the source at a git repository instead of a local directory.
type RepositoryConfig struct {
	URL          string      `yaml:"url"`
	Branch       string      `yaml:"branch,omitempty"`
	WorkspaceDir string      `yaml:"workspace_dir"` // Where the clone lives between builds
	Depth        int         `yaml:"depth,omitempty"`       // Clone depth; 0 means full history
	MaxRetries   int         `yaml:"max_retries,omitempty"` // Retries for transient network failures
	Auth         *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig holds HTTP basic credentials for the source repository.
type AuthConfig struct {
	Username string `yaml:"username,omitempty"`
	Token    string `yaml:"token"`
}

// QueryConfig selects which documents appear on the page. Empty IDs selects all.
type QueryConfig struct {
	IDs []string `yaml:"ids,omitempty"`
}

// LinksConfig controls rewriting of document hrefs.
type LinksConfig struct {
	BasePath   string         `yaml:"base_path"`
	Resolution LinkResolution `yaml:"resolution"`
}

// TOCConfig controls outline extraction.
type TOCConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// PageConfig holds page-level text and ids.
type PageConfig struct {
	Title     string `yaml:"title"`
	PageName  string `yaml:"page_name"`  // Shown next to the logo in the navigation frame
	ContentID string `yaml:"content_id"` // id of the main content container
}

// ThemeConfig is the explicit theme threaded through page rendering.
type ThemeConfig struct {
	SideNavBackground string `yaml:"side_nav_background"`
	NavText           string `yaml:"nav_text"`
	NavHover          string `yaml:"nav_hover"`
	TransitionSpeed   string `yaml:"transition_speed"`
	FontWeightNormal  int    `yaml:"font_weight_normal"`
	FontWeightBold    int    `yaml:"font_weight_bold"`
}

// OutputConfig describes where the rendered page is written.
type OutputConfig struct {
	File string `yaml:"file"`
}

// CacheConfig enables the SQLite parse cache when Path is set.
type CacheConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// PreviewConfig configures the preview and serve HTTP server.
type PreviewConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	LiveReload bool   `yaml:"live_reload"`
}

// MonitoringConfig configures health and metrics endpoints.
type MonitoringConfig struct {
	Metrics    MetricsConfig `yaml:"metrics"`
	HealthPath string        `yaml:"health_path"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// EventsConfig enables NATS build events when NATSURL is set.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// ScheduleConfig configures periodic refresh in serve mode.
type ScheduleConfig struct {
	RefreshInterval string `yaml:"refresh_interval,omitempty"` // Go duration, empty disables
}
