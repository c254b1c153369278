package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apiref/internal/build"
	"git.home.luguber.info/inful/apiref/internal/build/queue"
)

type chanEnqueuer struct {
	triggers chan build.Trigger
}

func (e *chanEnqueuer) Enqueue(trigger build.Trigger) (*queue.Job, bool) {
	select {
	case e.triggers <- trigger:
		return &queue.Job{ID: "job", Trigger: trigger}, true
	default:
		return nil, false
	}
}

func TestScheduler_ScheduleEvery(t *testing.T) {
	t.Run("returns job id for valid interval", func(t *testing.T) {
		s, err := NewScheduler(nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		id, err := s.ScheduleEvery("test", 10*time.Second, func() {})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		s, err := NewScheduler(nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		_, err = s.ScheduleEvery("test", 0, func() {})
		require.Error(t, err)
	})
}

func TestScheduler_PeriodicBuildRequiresEnqueuer(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	_, err = s.SchedulePeriodicBuild(time.Minute)
	require.Error(t, err)
}

func TestScheduler_PeriodicBuildEnqueuesScheduleTrigger(t *testing.T) {
	enq := &chanEnqueuer{triggers: make(chan build.Trigger, 1)}
	s, err := NewScheduler(enq)
	require.NoError(t, err)

	_, err = s.SchedulePeriodicBuild(20 * time.Millisecond)
	require.NoError(t, err)
	s.Start(context.Background())
	defer func() { require.NoError(t, s.Stop(context.Background())) }()

	select {
	case trig := <-enq.triggers:
		require.Equal(t, build.TriggerSchedule, trig)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled build was never enqueued")
	}
}
