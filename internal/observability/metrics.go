package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the checker.
type Metrics struct {
	ChecksTotal *prometheus.CounterVec // labels: outcome={all_allowed,some_cancelled,all_cancelled}
	CheckErrors prometheus.Counter

	// Weather provider metrics.
	ProviderRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	ProviderCache       *prometheus.CounterVec // labels: result={hit,miss}
	ProviderAPIDuration prometheus.Histogram

	// Decision publishing metrics.
	PublishErrors  prometheus.Counter
	PublishEnabled prometheus.Gauge
}

// NewMetrics creates and registers all checker metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ChecksTotal,
		m.CheckErrors,
		m.ProviderRequests,
		m.ProviderCache,
		m.ProviderAPIDuration,
		m.PublishErrors,
		m.PublishEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "condition_checker",
			Name:      "checks_total",
			Help:      "Boat checks evaluated, by decision outcome.",
		}, []string{"outcome"}),
		CheckErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "condition_checker",
			Name:      "check_errors_total",
			Help:      "Boat checks that could not be evaluated.",
		}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "condition_checker",
			Name:      "provider_requests_total",
			Help:      "Weather provider requests by outcome.",
		}, []string{"outcome"}),
		ProviderCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "condition_checker",
			Name:      "provider_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		ProviderAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "condition_checker",
			Name:      "provider_api_duration_seconds",
			Help:      "OpenWeather API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "condition_checker",
			Name:      "publish_errors_total",
			Help:      "Boat checks that failed to publish.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "condition_checker",
			Name:      "publish_enabled",
			Help:      "1 when decision publishing is enabled, 0 otherwise.",
		}),
	}
}
