package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel is the final status of a build.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeWarning  BuildOutcomeLabel = "warning"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
	BuildOutcomeSkipped  BuildOutcomeLabel = "skipped"
)

// Recorder defines observability hooks for builds and their stages.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	SetDocuments(n int)
	SetNavEntries(n int)
	SetStaleAnchors(n int)
	AddSectionCacheHits(n int)
	ObserveSync(d time.Duration, success bool)
	IncLiveReloadBroadcast(clients int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)          {}
func (NoopRecorder) SetDocuments(int)                           {}
func (NoopRecorder) SetNavEntries(int)                          {}
func (NoopRecorder) SetStaleAnchors(int)                        {}
func (NoopRecorder) AddSectionCacheHits(int)                    {}
func (NoopRecorder) ObserveSync(time.Duration, bool)            {}
func (NoopRecorder) IncLiveReloadBroadcast(int)                 {}
