package metrics

import "github.com/prometheus/client_golang/prometheus"

// APIMetrics exposes counters/histograms for outbound API calls.
type APIMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	mockTotal       prometheus.Counter
}

func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	m := &APIMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nurse24",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total outbound API requests",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nurse24",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency of outbound API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		mockTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nurse24",
			Subsystem: "api",
			Name:      "mock_backend_total",
			Help:      "Requests served by the in-process mock backend",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration, m.mockTotal)
	return m
}

func (m *APIMetrics) ObserveRequest(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, path, status).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(seconds)
}

func (m *APIMetrics) ObserveMockHit() {
	if m == nil {
		return
	}
	m.mockTotal.Inc()
}
