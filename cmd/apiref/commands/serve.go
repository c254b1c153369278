package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/apiref/internal/config"
	"git.home.luguber.info/inful/apiref/internal/daemon"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port    int           `short:"p" help:"Override preview.port"`
	Refresh time.Duration `help:"Override schedule.refresh_interval (e.g. 10m)"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	s.apply(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps, err := newRuntimeDeps(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	return daemon.Serve(ctx, cfg, daemon.Options{
		Builder:        deps.service,
		Recorder:       deps.recorder,
		MetricsHandler: deps.metricsHandler,
	})
}

func (s *ServeCmd) apply(cfg *config.Config) {
	if s.Port != 0 {
		cfg.Preview.Port = s.Port
	}
	if s.Refresh > 0 {
		cfg.Schedule.RefreshInterval = s.Refresh.String()
	}
}
