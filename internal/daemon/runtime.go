// Package daemon runs the long-lived modes: a watching preview server and a
// serving mode that refreshes on a schedule.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/apiref/internal/build"
	"git.home.luguber.info/inful/apiref/internal/build/queue"
	"git.home.luguber.info/inful/apiref/internal/config"
	"git.home.luguber.info/inful/apiref/internal/logfields"
	"git.home.luguber.info/inful/apiref/internal/metrics"
	"git.home.luguber.info/inful/apiref/internal/server/httpserver"
)

const shutdownTimeout = 5 * time.Second

// Options are the collaborators shared by preview and serve.
type Options struct {
	Builder        build.BuildService
	Recorder       metrics.Recorder
	MetricsHandler http.Handler
	// Listener replaces binding preview.host:preview.port when set.
	Listener net.Listener
}

// runtime wires the build queue to the HTTP server and live reload hub.
type runtime struct {
	cfg   *config.Config
	srv   *httpserver.Server
	hub   *LiveReloadHub
	queue *queue.BuildQueue
	ln    net.Listener
}

func newRuntime(cfg *config.Config, opts Options, liveReload, skipIfUnchanged bool) (*runtime, error) {
	if opts.Builder == nil {
		return nil, errors.New("daemon: builder is required")
	}
	rt := &runtime{cfg: cfg, ln: opts.Listener}

	script := LiveReloadScript()
	srvOpts := httpserver.Options{PrometheusHandler: opts.MetricsHandler}
	if liveReload {
		rt.hub = NewLiveReloadHub(opts.Recorder)
		srvOpts.LiveReloadHub = rt.hub
		srvOpts.LiveReloadScript = script
	} else {
		script = ""
	}
	rt.srv = httpserver.New(cfg, srvOpts)

	rt.queue = queue.New(opts.Builder, func(trigger build.Trigger) build.BuildRequest {
		return build.BuildRequest{
			Config:  cfg,
			Trigger: trigger,
			Options: build.BuildOptions{
				SkipIfUnchanged: skipIfUnchanged,
				LiveReload:      script,
			},
		}
	}).OnComplete(rt.onComplete)
	return rt, nil
}

// start serves HTTP, starts the worker and queues the initial build.
func (rt *runtime) start(ctx context.Context) error {
	var err error
	if rt.ln != nil {
		err = rt.srv.StartWithListener(rt.ln)
	} else {
		err = rt.srv.Start(ctx)
	}
	if err != nil {
		return err
	}
	rt.queue.Start(ctx)
	rt.queue.Enqueue(build.TriggerCLI)
	return nil
}

// stop drains the worker and shuts the server down.
func (rt *runtime) stop() {
	rt.queue.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rt.srv.Stop(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
}

// onComplete publishes a finished job to the server and notifies browsers.
func (rt *runtime) onComplete(job *queue.Job) {
	switch job.Status {
	case queue.JobStatusCompleted:
		if job.Result == nil || job.Result.Page == nil {
			return
		}
		hash := rt.srv.Publish(job.Result.Page)
		slog.Info("Page updated",
			slog.String("job_id", job.ID),
			slog.String("trigger", string(job.Trigger)),
			slog.String("page_hash", hash),
			slog.Bool("skipped", job.Result.Skipped),
			slog.Duration("duration", job.Duration))
		rt.broadcast(hash)
	case queue.JobStatusFailed:
		slog.Warn("Rebuild failed", slog.String("job_id", job.ID), slog.String("error", job.Error))
		rt.srv.Fail(errors.New(job.Error))
		rt.broadcast("error:" + strconv.FormatInt(time.Now().UnixNano(), 10))
	case queue.JobStatusCancelled:
		slog.Debug("Build canceled", slog.String("job_id", job.ID))
	}
}

func (rt *runtime) broadcast(hash string) {
	if rt.hub == nil {
		return
	}
	rt.hub.Broadcast(hash)
}
