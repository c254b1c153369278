// Package commands implements the apiref command line.
package commands

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/apiref/internal/build"
	"git.home.luguber.info/inful/apiref/internal/cache"
	"git.home.luguber.info/inful/apiref/internal/config"
	"git.home.luguber.info/inful/apiref/internal/events"
	ferrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/logfields"
	"git.home.luguber.info/inful/apiref/internal/metrics"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"apiref.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Render the reference page once"`
	Init    InitCmd    `cmd:"" help:"Write a default configuration file"`
	TOC     TOCCmd     `cmd:"" name:"toc" help:"Print the aggregated navigation"`
	Show    ShowCmd    `cmd:"" help:"Render one document in the terminal"`
	Preview PreviewCmd `cmd:"" help:"Serve the page and rebuild on file changes"`
	Serve   ServeCmd   `cmd:"" help:"Serve the page and refresh it on a schedule"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration and reconfigures logging from it.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(cfg.Logging, root.Verbose))
	return cfg, nil
}

// newLogger builds the process logger. -v always wins over the configured level.
func newLogger(lc config.LoggingConfig, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(lc.Level, verbose)}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseLogLevel(level config.LogLevel, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// runtimeDeps are the collaborators a build service is wired with.
type runtimeDeps struct {
	service        *build.DefaultBuildService
	recorder       metrics.Recorder
	metricsHandler http.Handler
	closers        []func() error
}

// Close releases the cache and event connections.
func (d *runtimeDeps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			slog.Warn("Failed to release resource", logfields.Error(err))
		}
	}
}

// newRuntimeDeps wires metrics, the parse cache and the event publisher into
// a build service according to cfg.
func newRuntimeDeps(cfg *config.Config) (*runtimeDeps, error) {
	deps := &runtimeDeps{service: build.NewBuildService(), recorder: metrics.NoopRecorder{}}

	if cfg.Monitoring.Metrics.Enabled {
		reg := prom.NewRegistry()
		deps.recorder = metrics.NewPrometheusRecorder(reg)
		deps.metricsHandler = metrics.HTTPHandler(reg)
		deps.service.WithRecorder(deps.recorder)
	}

	if cfg.Cache.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o750); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create cache directory").
				WithContext("path", cfg.Cache.Path).
				Build()
		}
		c, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryCache, "failed to open parse cache").
				WithContext("path", cfg.Cache.Path).
				Build()
		}
		deps.service.WithCache(c)
		deps.closers = append(deps.closers, c.Close)
	}

	if cfg.Events.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.service.WithPublisher(pub)
		deps.closers = append(deps.closers, pub.Close)
	}
	return deps, nil
}
