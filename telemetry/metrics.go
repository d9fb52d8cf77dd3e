package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per run counters on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	structures *prometheus.CounterVec
	stages     *prometheus.HistogramVec
	atoms      *prometheus.CounterVec
}

// NewMetrics registers the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		structures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corefeatures",
			Name:      "structures_total",
			Help:      "Structures processed, by outcome.",
		}, []string{"status"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "corefeatures",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		atoms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corefeatures",
			Name:      "atoms_total",
			Help:      "Atoms assigned to each region.",
		}, []string{"region"}),
	}

	m.Registry.MustRegister(m.structures, m.stages, m.atoms)
	return m
}

// Structure counts a finished structure. status is "ok" or the failed stage.
func (m *Metrics) Structure(status string) {
	if m == nil {
		return
	}
	m.structures.WithLabelValues(status).Inc()
}

// Stage records the duration of a stage started at start.
func (m *Metrics) Stage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Atoms adds n atoms to a region.
func (m *Metrics) Atoms(region string, n int) {
	if m == nil {
		return
	}
	m.atoms.WithLabelValues(region).Add(float64(n))
}

// WriteTextfile writes the metrics in the Prometheus text format, for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
