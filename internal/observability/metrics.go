package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riskibarqy/whereismatch/internal/platform/resilience"
)

const metricsNamespace = "whereismatch"

// Metrics counts query-cache activity and upstream API calls. It satisfies
// cache.Recorder and footyapi.Recorder.
type Metrics struct {
	reg              prometheus.Registerer
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	cacheEvictions   prometheus.Counter
	requestCoalesced prometheus.Counter
	requestFailed    prometheus.Counter
	apiRequests      *prometheus.CounterVec
	apiLatency       *prometheus.HistogramVec
	prefetchDropped  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reg: reg,
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "query_cache_hits_total",
			Help:      "Match queries answered from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "query_cache_misses_total",
			Help:      "Match queries not found in the cache.",
		}),
		cacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "query_cache_evictions_total",
			Help:      "Entries evicted under capacity pressure.",
		}),
		requestCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "query_coalesced_total",
			Help:      "Resolves that joined an in-flight request.",
		}),
		requestFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "query_failed_total",
			Help:      "Producer calls that failed and cached nothing.",
		}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "api_requests_total",
			Help:      "Upstream API requests by path and status code.",
		}, []string{"path", "status_code"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "api_request_duration_seconds",
			Help:      "Upstream API latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		prefetchDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "prefetch_dropped_total",
			Help:      "Prefetches skipped by the rate limit or a saturated worker pool.",
		}),
	}

	reg.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.cacheEvictions,
		m.requestCoalesced,
		m.requestFailed,
		m.apiRequests,
		m.apiLatency,
		m.prefetchDropped,
	)
	return m
}

func (m *Metrics) CacheHit()         { m.cacheHits.Inc() }
func (m *Metrics) CacheMiss()        { m.cacheMisses.Inc() }
func (m *Metrics) CacheEviction()    { m.cacheEvictions.Inc() }
func (m *Metrics) RequestCoalesced() { m.requestCoalesced.Inc() }
func (m *Metrics) RequestFailed()    { m.requestFailed.Inc() }
func (m *Metrics) PrefetchDropped()  { m.prefetchDropped.Inc() }

// ObserveRequest records one upstream call. status 0 is reported as "error".
func (m *Metrics) ObserveRequest(path string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.apiRequests.WithLabelValues(path, code).Inc()
	m.apiLatency.WithLabelValues(path).Observe(elapsed.Seconds())
}

// WatchCircuit exports the API circuit breaker as api_circuit_state, one
// series per state with 1 on the current one.
func (m *Metrics) WatchCircuit(state func() resilience.CircuitState) {
	for _, s := range []resilience.CircuitState{
		resilience.CircuitStateClosed,
		resilience.CircuitStateHalfOpen,
		resilience.CircuitStateOpen,
	} {
		m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "api_circuit_state",
			Help:        "Upstream API circuit breaker state.",
			ConstLabels: prometheus.Labels{"state": string(s)},
		}, func() float64 {
			if state() == s {
				return 1
			}
			return 0
		}))
	}
}

// MetricsHandler serves the Prometheus exposition format.
func MetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
