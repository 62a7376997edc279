// ABOUTME: Prometheus instrumentation for router timing and merger flushes (§4.C.1, ACP_TIMING)
// ABOUTME: Registered against a caller-supplied Registerer, never the global default

package acpmetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters and histograms emitted when ACP_TIMING is
// enabled. A nil *Metrics is valid and simply does nothing, so callers with
// instrumentation disabled never pay registration cost.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	updateFlushes   prometheus.Counter
}

// New registers ACP metrics against reg and returns the handle. Pass
// prometheus.NewRegistry() for an isolated registry (the default, so an
// embedding host's own metrics are never polluted) or the caller's own
// Registerer to fold ACP metrics into a larger exposition.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acp_requests_total",
			Help: "Outbound JSON-RPC requests completed, by method.",
		}, []string{"method"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "acp_request_duration_seconds",
			Help:    "Outbound JSON-RPC request round-trip latency, by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		updateFlushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "acp_update_flush_total",
			Help: "Number of merged session/update batches delivered to the delegate.",
		}),
	}

	reg.MustRegister(m.requestsTotal, m.requestDuration, m.updateFlushes)
	return m
}

// ObserveRequest records one completed outbound request's method and latency.
func (m *Metrics) ObserveRequest(method string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method).Inc()
	m.requestDuration.WithLabelValues(method).Observe(seconds)
}

// ObserveFlush records one merger flush delivered to the delegate.
func (m *Metrics) ObserveFlush() {
	if m == nil {
		return
	}
	m.updateFlushes.Inc()
}
