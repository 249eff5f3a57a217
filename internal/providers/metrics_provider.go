package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"drinkaware/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncUpstreamRequests(endpoint string, status int)
	ObserveUpstreamDuration(endpoint string, duration time.Duration)
	IncRateLimitHits()
	IncTokenRefreshes(result string)
	ObservePollCycle(account string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	upstreamTotal       *prometheus.CounterVec
	upstreamDuration    *prometheus.HistogramVec
	rateLimitHits       prometheus.Counter
	tokenRefreshes      *prometheus.CounterVec
	pollCycleDuration   *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncUpstreamRequests(endpoint string, status int) {
	m.upstreamTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveUpstreamDuration(endpoint string, duration time.Duration) {
	m.upstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncRateLimitHits() {
	m.rateLimitHits.Inc()
}

func (m *MetricsProvider) IncTokenRefreshes(result string) {
	m.tokenRefreshes.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObservePollCycle(account string, duration time.Duration) {
	m.pollCycleDuration.WithLabelValues(account).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "daw_requests_total",
			Help: "Total number of control API requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "daw_request_duration_seconds",
			Help:    "Control API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		upstreamTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "daw_upstream_requests_total",
			Help: "Total number of requests issued to the Drinkaware API",
		}, []string{"endpoint", "status"}),

		upstreamDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "daw_upstream_request_duration_seconds",
			Help:    "Drinkaware API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		rateLimitHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "daw_upstream_rate_limit_hits_total",
			Help: "Total number of 429 responses from the Drinkaware API",
		}),

		tokenRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "daw_token_refreshes_total",
			Help: "Total number of OAuth token refresh attempts by result",
		}, []string{"result"}),

		pollCycleDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "daw_poll_cycle_duration_seconds",
			Help:    "Duration of a full account poll cycle in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"account"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "daw_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "daw_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "daw_persistence_duration_seconds",
			Help:    "Duration of state file persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                   {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)   {}
func (n *noopMetrics) IncUpstreamRequests(_ string, _ int)                {}
func (n *noopMetrics) ObserveUpstreamDuration(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncRateLimitHits()                                  {}
func (n *noopMetrics) IncTokenRefreshes(_ string)                         {}
func (n *noopMetrics) ObservePollCycle(_ string, _ time.Duration)         {}
func (n *noopMetrics) IncCacheHits()                                      {}
func (n *noopMetrics) IncCacheMisses()                                    {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)         {}
