package daemon

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/apiref/internal/config"
	"git.home.luguber.info/inful/apiref/internal/logfields"
)

// Serve serves the page without watching files. When schedule.refresh_interval
// is set, the source is refreshed and rebuilt on that interval; builds whose
// inputs did not change are skipped. It blocks until ctx is canceled.
func Serve(ctx context.Context, cfg *config.Config, opts Options) error {
	rt, err := newRuntime(cfg, opts, false, true)
	if err != nil {
		return err
	}

	var sched *Scheduler
	if interval := cfg.Schedule.Interval(); interval > 0 {
		sched, err = NewScheduler(rt.queue)
		if err != nil {
			return err
		}
		if _, err := sched.SchedulePeriodicBuild(interval); err != nil {
			_ = sched.Stop(ctx)
			return err
		}
	}

	if err := rt.start(ctx); err != nil {
		if sched != nil {
			_ = sched.Stop(ctx)
		}
		return err
	}
	if sched != nil {
		sched.Start(ctx)
	}
	slog.Info("Serving reference page",
		logfields.URL("http://"+rt.srv.Addr()),
		slog.String("refresh_interval", cfg.Schedule.RefreshInterval))

	<-ctx.Done()
	slog.Info("Shutting down server...")
	if sched != nil {
		if err := sched.Stop(context.Background()); err != nil {
			slog.Warn("scheduler shutdown error", logfields.Error(err))
		}
	}
	rt.stop()
	return nil
}
