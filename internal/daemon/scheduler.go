package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/apiref/internal/build"
	"git.home.luguber.info/inful/apiref/internal/build/queue"
)

// Enqueuer accepts build requests. *queue.BuildQueue satisfies it.
type Enqueuer interface {
	Enqueue(trigger build.Trigger) (*queue.Job, bool)
}

// Scheduler wraps gocron scheduler for managing periodic tasks.
type Scheduler struct {
	scheduler gocron.Scheduler
	enqueuer  Enqueuer
}

// NewScheduler creates a scheduler whose periodic builds go to enqueuer.
func NewScheduler(enqueuer Enqueuer) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		enqueuer:  enqueuer,
	}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start(_ context.Context) {
	slog.Info("Starting scheduler", slog.Int("jobs", len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(_ context.Context) error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery runs task every interval. Runs never overlap; a tick that
// arrives while task is still running is skipped.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, task func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create job %q: %w", name, err)
	}
	return job.ID().String(), nil
}

// SchedulePeriodicBuild enqueues a scheduled build every interval.
// Returns the job ID for later management.
func (s *Scheduler) SchedulePeriodicBuild(interval time.Duration) (string, error) {
	if s.enqueuer == nil {
		return "", errors.New("scheduler enqueuer not set")
	}
	return s.ScheduleEvery("refresh-build", interval, s.executeBuild)
}

// executeBuild is called by gocron to request a scheduled build.
func (s *Scheduler) executeBuild() {
	job, queued := s.enqueuer.Enqueue(build.TriggerSchedule)
	if !queued {
		slog.Debug("Scheduled build coalesced into pending build")
		return
	}
	slog.Info("Scheduled build queued", slog.String("job_id", job.ID))
}
