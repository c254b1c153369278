package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/apiref/internal/config"
	"git.home.luguber.info/inful/apiref/internal/daemon"
)

// PreviewCmd implements the 'preview' command.
type PreviewCmd struct {
	Host         string `help:"Override preview.host"`
	Port         int    `short:"p" help:"Override preview.port"`
	NoLiveReload bool   `name:"no-livereload" help:"Disable browser live reload"`
}

func (p *PreviewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	p.apply(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps, err := newRuntimeDeps(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	return daemon.StartLocalPreview(ctx, cfg, daemon.Options{
		Builder:        deps.service,
		Recorder:       deps.recorder,
		MetricsHandler: deps.metricsHandler,
	})
}

func (p *PreviewCmd) apply(cfg *config.Config) {
	if p.Host != "" {
		cfg.Preview.Host = p.Host
	}
	if p.Port != 0 {
		cfg.Preview.Port = p.Port
	}
	if p.NoLiveReload {
		cfg.Preview.LiveReload = false
	}
}
