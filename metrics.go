package lintel

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "lintel"

// Metrics exposes Prometheus counters describing how much work each run
// recomputed versus served from the cache.
type Metrics struct {
	// Recomputed counts knowledge values extracted in a run.
	// Labels: review, kind (manifest, dependencies, module, extra_file)
	Recomputed *prometheus.CounterVec

	// Reused counts per-file knowledge values copied from the previous cache.
	// Labels: review, kind (module, extra_file)
	Reused *prometheus.CounterVec

	// Dropped counts per-file knowledge values removed with their file.
	// Labels: review, kind (module, extra_file)
	Dropped *prometheus.CounterVec

	// ErrorsReported counts errors returned to the caller after filtering.
	// Labels: review
	ErrorsReported *prometheus.CounterVec

	// RunDuration measures the wall time of one run.
	// Labels: review
	RunDuration *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg. A nil reg
// registers with prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Recomputed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "knowledge_recomputed_total",
			Help:      "Knowledge values extracted from project parts",
		}, []string{"review", "kind"}),
		Reused: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "knowledge_reused_total",
			Help:      "Per-file knowledge values served from the cache",
		}, []string{"review", "kind"}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "knowledge_dropped_total",
			Help:      "Per-file knowledge values dropped because their file was removed",
		}, []string{"review", "kind"}),
		ErrorsReported: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_reported_total",
			Help:      "Errors returned by runs after path filtering",
		}, []string{"review"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of one review run",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}, []string{"review"}),
	}
}

// observe records one run. Safe to call on a nil *Metrics.
func (m *Metrics) observe(review string, s runStats, errs int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if s.manifest {
		m.Recomputed.WithLabelValues(review, kindManifest.String()).Inc()
	}
	if s.dependencies {
		m.Recomputed.WithLabelValues(review, kindDependencies.String()).Inc()
	}
	m.Recomputed.WithLabelValues(review, kindModule.String()).Add(float64(s.modules.recomputed))
	m.Recomputed.WithLabelValues(review, kindExtraFile.String()).Add(float64(s.extraFiles.recomputed))
	m.Reused.WithLabelValues(review, kindModule.String()).Add(float64(s.modules.reused))
	m.Reused.WithLabelValues(review, kindExtraFile.String()).Add(float64(s.extraFiles.reused))
	m.Dropped.WithLabelValues(review, kindModule.String()).Add(float64(s.modules.dropped))
	m.Dropped.WithLabelValues(review, kindExtraFile.String()).Add(float64(s.extraFiles.dropped))
	m.ErrorsReported.WithLabelValues(review).Add(float64(errs))
	m.RunDuration.WithLabelValues(review).Observe(elapsed.Seconds())
}
