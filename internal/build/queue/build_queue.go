// Package queue runs builds one at a time and coalesces requests that arrive
// while a build is already pending.
package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/apiref/internal/build"
	dberrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/logfields"
	"git.home.luguber.info/inful/apiref/internal/retry"
)

// JobStatus represents the current status of a build job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "canceled"
)

// Job represents a single build job in the queue.
type Job struct {
	ID          string        `json:"id"`
	Trigger     build.Trigger `json:"trigger"`
	Status      JobStatus     `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Retries     int           `json:"retries,omitempty"`
	Error       string        `json:"error,omitempty"`

	Result *build.BuildResult `json:"-"`

	cancel context.CancelFunc
}

// RequestFunc builds the request for a job. It is called when the job
// starts, so it sees the latest configuration.
type RequestFunc func(trigger build.Trigger) build.BuildRequest

// CompletionFunc is called after every job, successful or not.
type CompletionFunc func(job *Job)

// BuildQueue runs jobs on a single worker. At most one job waits behind the
// running one; further requests are coalesced into it.
type BuildQueue struct {
	pending     chan *Job
	mu          sync.RWMutex
	active      *Job
	history     []*Job
	historySize int
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup

	builder     build.BuildService
	requestFor  RequestFunc
	onComplete  CompletionFunc
	retryPolicy retry.Policy
}

// New creates a queue executing builds through builder.
func New(builder build.BuildService, requestFor RequestFunc) *BuildQueue {
	if builder == nil {
		panic("queue.New: builder is required")
	}
	if requestFor == nil {
		panic("queue.New: request function is required")
	}
	return &BuildQueue{
		pending:     make(chan *Job, 1),
		historySize: 50,
		stopChan:    make(chan struct{}),
		builder:     builder,
		requestFor:  requestFor,
		retryPolicy: retry.NewPolicy(retry.BackoffLinear, 0, 0, 0),
	}
}

// WithRetryPolicy retries builds failing with a retryable error. The
// default policy never retries.
func (bq *BuildQueue) WithRetryPolicy(p retry.Policy) *BuildQueue {
	bq.retryPolicy = p
	return bq
}

// OnComplete registers fn to run after every job.
func (bq *BuildQueue) OnComplete(fn CompletionFunc) *BuildQueue {
	bq.onComplete = fn
	return bq
}

// Start begins processing jobs.
func (bq *BuildQueue) Start(ctx context.Context) {
	slog.Debug("Starting build queue")
	bq.wg.Add(1)
	go bq.worker(ctx)
}

// Stop cancels the running job and waits for the worker to exit.
func (bq *BuildQueue) Stop() {
	bq.stopOnce.Do(func() {
		close(bq.stopChan)
		bq.mu.Lock()
		if bq.active != nil && bq.active.cancel != nil {
			bq.active.cancel()
		}
		bq.mu.Unlock()
	})
	bq.wg.Wait()
}

// Enqueue requests a build. It returns the queued job and true, or the
// already pending job and false when the request was coalesced.
func (bq *BuildQueue) Enqueue(trigger build.Trigger) (*Job, bool) {
	job := &Job{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Status:    JobStatusQueued,
		CreatedAt: time.Now(),
	}
	select {
	case bq.pending <- job:
		slog.Debug("Build queued", slog.String("job_id", job.ID), slog.String("trigger", string(trigger)))
		return job, true
	default:
		slog.Debug("Build already pending, request coalesced", slog.String("trigger", string(trigger)))
		return nil, false
	}
}

// Length returns the number of waiting jobs (0 or 1).
func (bq *BuildQueue) Length() int {
	return len(bq.pending)
}

// Active returns a copy of the running job.
func (bq *BuildQueue) Active() (*Job, bool) {
	bq.mu.RLock()
	defer bq.mu.RUnlock()
	if bq.active == nil {
		return nil, false
	}
	cp := *bq.active
	return &cp, true
}

// JobSnapshot returns a copy of a job (active first, then history).
func (bq *BuildQueue) JobSnapshot(id string) (*Job, bool) {
	bq.mu.RLock()
	defer bq.mu.RUnlock()

	if bq.active != nil && bq.active.ID == id {
		cp := *bq.active
		return &cp, true
	}
	for _, j := range bq.history {
		if j.ID == id {
			cp := *j
			return &cp, true
		}
	}
	return nil, false
}

// History returns copies of finished jobs, oldest first.
func (bq *BuildQueue) History() []Job {
	bq.mu.RLock()
	defer bq.mu.RUnlock()
	out := make([]Job, 0, len(bq.history))
	for _, j := range bq.history {
		out = append(out, *j)
	}
	return out
}

func (bq *BuildQueue) worker(ctx context.Context) {
	defer bq.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-bq.stopChan:
			return
		case job := <-bq.pending:
			if job != nil {
				bq.processJob(ctx, job)
			}
		}
	}
}

func (bq *BuildQueue) processJob(ctx context.Context, job *Job) {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	startTime := time.Now()
	bq.mu.Lock()
	job.cancel = cancel
	job.StartedAt = &startTime
	job.Status = JobStatusRunning
	bq.active = job
	bq.mu.Unlock()

	err := bq.executeBuild(jobCtx, job)
	bq.markJobCompleted(job, err)

	if bq.onComplete != nil {
		bq.onComplete(job)
	}
}

func (bq *BuildQueue) executeBuild(ctx context.Context, job *Job) error {
	return retry.Do(ctx, bq.retryPolicy, func() error {
		result, err := bq.builder.Run(ctx, bq.requestFor(job.Trigger))
		bq.mu.Lock()
		job.Result = result
		bq.mu.Unlock()
		return err
	}, isPermanent, func(attempt int, err error) {
		bq.mu.Lock()
		job.Retries = attempt
		bq.mu.Unlock()
		slog.Warn("Transient build error, retrying",
			slog.String("job_id", job.ID),
			slog.Int("retry", attempt),
			slog.Int("max_retries", bq.retryPolicy.MaxRetries),
			logfields.Error(err))
	})
}

func (bq *BuildQueue) markJobCompleted(job *Job, err error) {
	endTime := time.Now()
	bq.mu.Lock()
	defer bq.mu.Unlock()

	job.CompletedAt = &endTime
	if job.StartedAt != nil {
		job.Duration = endTime.Sub(*job.StartedAt)
	}
	job.cancel = nil
	switch {
	case err == nil:
		job.Status = JobStatusCompleted
	case job.Result != nil && job.Result.Status == build.BuildStatusCancelled:
		job.Status = JobStatusCancelled
		job.Error = err.Error()
	default:
		job.Status = JobStatusFailed
		job.Error = err.Error()
	}
	bq.active = nil
	bq.addToHistory(job)
}

func (bq *BuildQueue) addToHistory(job *Job) {
	bq.history = append(bq.history, job)
	if len(bq.history) > bq.historySize {
		copy(bq.history, bq.history[len(bq.history)-bq.historySize:])
		bq.history = bq.history[:bq.historySize]
	}
}

// isPermanent reports whether err should not be retried: anything that is
// not a classified, retryable error.
func isPermanent(err error) bool {
	classified, ok := dberrors.AsClassified(err)
	return !ok || !classified.CanRetry()
}
