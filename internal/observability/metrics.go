package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "planet_fusion"

// Metrics holds the Prometheus collectors for the fusion service.
type Metrics struct {
	FusionRequests      *prometheus.CounterVec   // labels: outcome={success,error}
	FusionCache         *prometheus.CounterVec   // labels: result={hit,miss,error}
	FusionStageDuration *prometheus.HistogramVec // labels: stage

	// Upstream API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: source={swapi,open-meteo}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: source

	// Persistence metrics.
	RecordsSaved  *prometheus.CounterVec // labels: type={fused,custom}
	PublishErrors prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FusionRequests,
		m.FusionCache,
		m.FusionStageDuration,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.RecordsSaved,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FusionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fusion_requests_total",
			Help:      "Fusion requests by outcome.",
		}, []string{"outcome"}),
		FusionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fusion_cache_total",
			Help:      "Fusion cache lookups by result.",
		}, []string{"result"}),
		FusionStageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fusion_stage_duration_seconds",
			Help:      "Duration of each fusion pipeline stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		RecordsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_saved_total",
			Help:      "Records persisted to the history store by type.",
		}, []string{"type"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Fused records that could not be published to Kafka.",
		}),
	}
}
