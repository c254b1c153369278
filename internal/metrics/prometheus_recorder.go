package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "apiref"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration    *prom.HistogramVec
	buildDuration    prom.Histogram
	stageResults     *prom.CounterVec
	buildOutcome     *prom.CounterVec
	documents        prom.Gauge
	navEntries       prom.Gauge
	staleAnchors     prom.Gauge
	sectionCacheHits prom.Counter
	syncDuration     *prom.HistogramVec
	reloads          prom.Counter
	reloadClients    prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		documents: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "documents",
			Help:      "Documents rendered by the last build",
		}),
		navEntries: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "nav_entries",
			Help:      "Side navigation entries in the last build",
		}),
		staleAnchors: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "stale_anchors",
			Help:      "Navigation entries without a scroll target in the last build",
		}),
		sectionCacheHits: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "section_cache_hits_total",
			Help:      "Document sections served from the rendered-section cache",
		}),
		syncDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "source_sync_duration_seconds",
			Help:      "Duration of git source synchronisation",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		reloads: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "livereload_broadcasts_total",
			Help:      "Live reload notifications sent",
		}),
		reloadClients: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "livereload_clients",
			Help:      "Clients reached by the last live reload broadcast",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.documents, pr.navEntries, pr.staleAnchors, pr.sectionCacheHits, pr.syncDuration,
		pr.reloads, pr.reloadClients)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetDocuments(n int) {
	if p == nil {
		return
	}
	p.documents.Set(float64(n))
}

func (p *PrometheusRecorder) SetNavEntries(n int) {
	if p == nil {
		return
	}
	p.navEntries.Set(float64(n))
}

func (p *PrometheusRecorder) SetStaleAnchors(n int) {
	if p == nil {
		return
	}
	p.staleAnchors.Set(float64(n))
}

func (p *PrometheusRecorder) AddSectionCacheHits(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.sectionCacheHits.Add(float64(n))
}

func (p *PrometheusRecorder) ObserveSync(d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.syncDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncLiveReloadBroadcast(clients int) {
	if p == nil {
		return
	}
	p.reloads.Inc()
	p.reloadClients.Set(float64(clients))
}
