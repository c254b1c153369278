// Package metrics provides build observability for the reference page builder.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default and does nothing; PrometheusRecorder forwards to a Prometheus
// registry that HTTPHandler serves on the monitoring path.
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	builder := build.New(cfg, build.WithRecorder(recorder))
package metrics
