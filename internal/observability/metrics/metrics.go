// Package metrics records batch conversion counters on a private Prometheus
// registry. payloadforge runs as a short-lived command, so the registry is
// written out in the text exposition format for a node-exporter textfile
// collector instead of being served.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Recorder is safe for concurrent use. A nil *Recorder ignores observations.
type Recorder struct {
	registry *prometheus.Registry

	payloads    *prometheus.CounterVec
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	transforms  prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		payloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payloadforge_payloads_total",
			Help: "Number of payloads written, by transform and outcome.",
		}, []string{"transform", "outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payloadforge_transform_runs_total",
			Help: "Number of per-transform conversions, by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payloadforge_transform_duration_seconds",
			Help:    "Time spent converting one export with one transform.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"outcome"}),
		transforms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "payloadforge_registered_transforms",
			Help: "Number of transforms in the registry used by the run.",
		}),
	}
	r.registry.MustRegister(r.payloads, r.runs, r.runDuration, r.transforms)
	return r
}

// ObserveRun records one conversion of n payloads.
func (r *Recorder) ObserveRun(transform, outcome string, n int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.payloads.WithLabelValues(transform, outcome).Add(float64(n))
	r.runs.WithLabelValues(outcome).Inc()
	r.runDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (r *Recorder) SetRegistered(n int) {
	if r == nil {
		return
	}
	r.transforms.Set(float64(n))
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes the current values to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
