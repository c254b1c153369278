package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("render", time.Millisecond)
	r.ObserveBuildDuration(time.Millisecond)
	r.IncStageResult("render", ResultSuccess)
	r.IncBuildOutcome(BuildOutcomeSuccess)
	r.SetDocuments(1)
	r.SetNavEntries(1)
	r.SetStaleAnchors(0)
	r.AddSectionCacheHits(1)
	r.ObserveSync(time.Millisecond, true)
	r.IncLiveReloadBroadcast(2)
}

// gathered returns the value of the first sample of metric name.
func gathered(t *testing.T, reg *prom.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		m := mf.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			return m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			return m.GetGauge().GetValue()
		case m.GetHistogram() != nil:
			return float64(m.GetHistogram().GetSampleCount())
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncStageResult("render", ResultSuccess)
	pr.IncStageResult("render", ResultSuccess)
	pr.IncBuildOutcome(BuildOutcomeWarning)
	pr.SetDocuments(7)
	pr.SetNavEntries(42)
	pr.SetStaleAnchors(3)
	pr.AddSectionCacheHits(5)
	pr.AddSectionCacheHits(0)
	pr.IncLiveReloadBroadcast(2)
	pr.ObserveStageDuration("render", 10*time.Millisecond)
	pr.ObserveSync(time.Second, false)

	assert.InDelta(t, 2, gathered(t, reg, "apiref_stage_results_total"), 0)
	assert.InDelta(t, 1, gathered(t, reg, "apiref_build_outcomes_total"), 0)
	assert.InDelta(t, 7, gathered(t, reg, "apiref_documents"), 0)
	assert.InDelta(t, 42, gathered(t, reg, "apiref_nav_entries"), 0)
	assert.InDelta(t, 3, gathered(t, reg, "apiref_stale_anchors"), 0)
	assert.InDelta(t, 5, gathered(t, reg, "apiref_section_cache_hits_total"), 0)
	assert.InDelta(t, 1, gathered(t, reg, "apiref_livereload_broadcasts_total"), 0)
	assert.InDelta(t, 2, gathered(t, reg, "apiref_livereload_clients"), 0)
	assert.InDelta(t, 1, gathered(t, reg, "apiref_stage_duration_seconds"), 0)
	assert.InDelta(t, 1, gathered(t, reg, "apiref_source_sync_duration_seconds"), 0)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.SetDocuments(1)
	pr.IncBuildOutcome(BuildOutcomeFailed)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).SetDocuments(3)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "apiref_documents 3")
}
