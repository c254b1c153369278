package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"git.home.luguber.info/inful/apiref/internal/build"
	dberrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/retry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gatedBuilder blocks every Run until release receives a value.
type gatedBuilder struct {
	mu       sync.Mutex
	started  chan build.Trigger
	release  chan error
	triggers []build.Trigger
}

func newGatedBuilder() *gatedBuilder {
	return &gatedBuilder{started: make(chan build.Trigger, 8), release: make(chan error)}
}

func (g *gatedBuilder) Run(ctx context.Context, req build.BuildRequest) (*build.BuildResult, error) {
	g.mu.Lock()
	g.triggers = append(g.triggers, req.Trigger)
	g.mu.Unlock()
	g.started <- req.Trigger
	select {
	case err := <-g.release:
		if err != nil {
			return &build.BuildResult{Status: build.BuildStatusFailed}, err
		}
		return &build.BuildResult{Status: build.BuildStatusSuccess}, nil
	case <-ctx.Done():
		return &build.BuildResult{Status: build.BuildStatusCancelled}, ctx.Err()
	}
}

func requestFor(trigger build.Trigger) build.BuildRequest {
	return build.BuildRequest{Trigger: trigger}
}

func collect(bq *BuildQueue) chan *Job {
	done := make(chan *Job, 8)
	bq.OnComplete(func(j *Job) { done <- j })
	return done
}

func waitJob(t *testing.T, done chan *Job) *Job {
	t.Helper()
	select {
	case j := <-done:
		return j
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job")
		return nil
	}
}

func TestEnqueue_CoalescesWhilePending(t *testing.T) {
	g := newGatedBuilder()
	bq := New(g, requestFor)
	done := collect(bq)
	bq.Start(context.Background())
	defer bq.Stop()

	first, ok := bq.Enqueue(build.TriggerWatch)
	require.True(t, ok)
	assert.Equal(t, build.TriggerWatch, <-g.started)

	active, ok := bq.Active()
	require.True(t, ok)
	assert.Equal(t, first.ID, active.ID)
	assert.Equal(t, JobStatusRunning, active.Status)

	second, ok := bq.Enqueue(build.TriggerWatch)
	require.True(t, ok)
	assert.Equal(t, 1, bq.Length())

	_, ok = bq.Enqueue(build.TriggerWatch)
	assert.False(t, ok, "third request should coalesce into the pending one")

	g.release <- nil
	assert.Equal(t, first.ID, waitJob(t, done).ID)
	<-g.started
	g.release <- nil
	j := waitJob(t, done)
	assert.Equal(t, second.ID, j.ID)
	assert.Equal(t, JobStatusCompleted, j.Status)
	assert.NotNil(t, j.CompletedAt)
	assert.NotNil(t, j.Result)

	assert.Len(t, bq.History(), 2)
	snap, ok := bq.JobSnapshot(second.ID)
	require.True(t, ok)
	assert.Equal(t, JobStatusCompleted, snap.Status)
	_, ok = bq.Active()
	assert.False(t, ok)
}

func TestFailedJob(t *testing.T) {
	g := newGatedBuilder()
	bq := New(g, requestFor)
	done := collect(bq)
	bq.Start(context.Background())
	defer bq.Stop()

	_, ok := bq.Enqueue(build.TriggerCLI)
	require.True(t, ok)
	<-g.started
	g.release <- errors.New("render failed")

	j := waitJob(t, done)
	assert.Equal(t, JobStatusFailed, j.Status)
	assert.Equal(t, "render failed", j.Error)
	assert.Equal(t, 0, j.Retries)
}

func TestRetryableFailureIsRetried(t *testing.T) {
	g := newGatedBuilder()
	bq := New(g, requestFor).WithRetryPolicy(retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, 2))
	done := collect(bq)
	bq.Start(context.Background())
	defer bq.Stop()

	_, ok := bq.Enqueue(build.TriggerSchedule)
	require.True(t, ok)

	<-g.started
	g.release <- dberrors.NewError(dberrors.CategoryNetwork, "timeout").Retryable().Build()
	<-g.started
	g.release <- nil

	j := waitJob(t, done)
	assert.Equal(t, JobStatusCompleted, j.Status)
	assert.Equal(t, 1, j.Retries)
	g.mu.Lock()
	assert.Equal(t, []build.Trigger{build.TriggerSchedule, build.TriggerSchedule}, g.triggers)
	g.mu.Unlock()
}

func TestStopCancelsRunningJob(t *testing.T) {
	g := newGatedBuilder()
	bq := New(g, requestFor)
	done := collect(bq)
	bq.Start(context.Background())

	_, ok := bq.Enqueue(build.TriggerWatch)
	require.True(t, ok)
	<-g.started

	bq.Stop()
	j := waitJob(t, done)
	assert.Equal(t, JobStatusCancelled, j.Status)

	// Stop is idempotent.
	bq.Stop()
}

func TestNewPanicsWithoutCollaborators(t *testing.T) {
	assert.Panics(t, func() { New(nil, requestFor) })
	assert.Panics(t, func() { New(newGatedBuilder(), nil) })
}
