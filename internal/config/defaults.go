package config

// Default values applied by ApplyDefaults.
const (
	DefaultSourceDir      = "./docs/api"
	DefaultBasePath       = "/docs/api"
	DefaultTOCMaxDepth    = 4
	DefaultPageTitle      = "API Reference"
	DefaultPageName       = "Documentation"
	DefaultContentID      = "content"
	DefaultOutputFile     = "./public/docs/api/index.html"
	DefaultWorkspaceDir   = "./.apiref/workspace"
	DefaultPreviewHost    = "localhost"
	DefaultPreviewPort    = 1316
	DefaultMetricsPath    = "/metrics"
	DefaultHealthPath     = "/health"
	DefaultEventsSubject  = "apiref.builds"
	DefaultFontWeightNorm = 400
	DefaultFontWeightBold = 700
)

// MaxTOCDepth is the deepest heading level the page makes scrollable, so
// outline entries below it would never have a target.
const MaxTOCDepth = 4

// DefaultExtensions are the document extensions discovered when none are configured.
var DefaultExtensions = []string{".md", ".mdx"}

// Default returns a fully defaulted configuration.
func Default() *Config {
	cfg := &Config{
		Version: CurrentVersion,
		Links:   LinksConfig{Resolution: LinkResolutionLegacy},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Preview: PreviewConfig{LiveReload: true},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields. It runs after normalization.
func ApplyDefaults(cfg *Config) {
	if cfg.Source.Dir == "" {
		cfg.Source.Dir = DefaultSourceDir
	}
	if len(cfg.Source.Extensions) == 0 {
		cfg.Source.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if repo := cfg.Source.Repository; repo != nil && repo.WorkspaceDir == "" {
		repo.WorkspaceDir = DefaultWorkspaceDir
	}

	if cfg.Links.BasePath == "" {
		cfg.Links.BasePath = DefaultBasePath
	}
	if cfg.Links.Resolution == "" {
		cfg.Links.Resolution = LinkResolutionLegacy
	}
	if cfg.TOC.MaxDepth == 0 {
		cfg.TOC.MaxDepth = DefaultTOCMaxDepth
	}

	applyPageDefaults(&cfg.Page)
	applyThemeDefaults(&cfg.Theme)

	if cfg.Output.File == "" {
		cfg.Output.File = DefaultOutputFile
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}

	if cfg.Preview.Host == "" {
		cfg.Preview.Host = DefaultPreviewHost
	}
	if cfg.Preview.Port == 0 {
		cfg.Preview.Port = DefaultPreviewPort
	}
	if cfg.Monitoring.Metrics.Path == "" {
		cfg.Monitoring.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Monitoring.HealthPath == "" {
		cfg.Monitoring.HealthPath = DefaultHealthPath
	}
	if cfg.Events.NATSURL != "" && cfg.Events.Subject == "" {
		cfg.Events.Subject = DefaultEventsSubject
	}
}

func applyPageDefaults(p *PageConfig) {
	if p.Title == "" {
		p.Title = DefaultPageTitle
	}
	if p.PageName == "" {
		p.PageName = DefaultPageName
	}
	if p.ContentID == "" {
		p.ContentID = DefaultContentID
	}
}

func applyThemeDefaults(t *ThemeConfig) {
	if t.SideNavBackground == "" {
		t.SideNavBackground = "#f6f6f6"
	}
	if t.NavText == "" {
		t.NavText = "#333"
	}
	if t.NavHover == "" {
		t.NavHover = "#999"
	}
	if t.TransitionSpeed == "" {
		t.TransitionSpeed = "0.2s"
	}
	if t.FontWeightNormal == 0 {
		t.FontWeightNormal = DefaultFontWeightNorm
	}
	if t.FontWeightBold == 0 {
		t.FontWeightBold = DefaultFontWeightBold
	}
}
