package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hotspot_engine"

// Run outcomes recorded on Metrics.Runs.
const (
	OutcomeSuccess      = "success"
	OutcomeInsufficient = "insufficient"
	OutcomeSkipped      = "skipped"
	OutcomeFetchError   = "fetch_error"
	OutcomeWriteError   = "write_error"
)

// Metrics holds the Prometheus collectors for the hotspot generation engine.
type Metrics struct {
	Runs                 *prometheus.CounterVec // labels: outcome
	ObservationsFetched  prometheus.Counter
	MalformedSkipped     prometheus.Counter
	CandidateClusters    prometheus.Histogram
	HotspotsCurrent      prometheus.Gauge
	CycleDuration        prometheus.Histogram
	LastSuccessTimestamp prometheus.Gauge
	PublishErrors        prometheus.Counter

	// Geocoding metrics.
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeFailures prometheus.Counter
	GeocodeEnabled  prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Generation cycles by outcome.",
		}, []string{"outcome"}),
		ObservationsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_fetched_total",
			Help:      "Observations read from the source across all cycles.",
		}),
		MalformedSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_observations_total",
			Help:      "Observations excluded for invalid coordinates or timestamps.",
		}),
		CandidateClusters: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidate_clusters",
			Help:      "Scored candidate clusters per cycle, before deduplication.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		HotspotsCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hotspots_current",
			Help:      "Hotspots in the most recently persisted generation.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-generate-store cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last cycle that persisted a generation.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failures publishing a generation to the partner feed.",
		}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_failures_total",
			Help:      "Hotspot centroids that could not be reverse geocoded.",
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when place-name enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Runs,
		m.ObservationsFetched,
		m.MalformedSkipped,
		m.CandidateClusters,
		m.HotspotsCurrent,
		m.CycleDuration,
		m.LastSuccessTimestamp,
		m.PublishErrors,
		m.GeocodeCache,
		m.GeocodeFailures,
		m.GeocodeEnabled,
	}
}

// NewMetrics creates and registers all engine metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
