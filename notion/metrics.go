package notion

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments the client's API traffic. Collectors register on
// the Registerer passed to NewMetrics, so each job (or test) can own an
// isolated registry.
type Metrics struct {
	Requests    *prometheus.CounterVec
	Retries     prometheus.Counter
	RateLimited prometheus.Counter
}

// NewMetrics creates and registers the client collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockclone_api_requests_total",
				Help: "API requests by endpoint and outcome.",
			},
			[]string{"endpoint", "outcome"},
		),
		Retries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "blockclone_api_retries_total",
				Help: "Requests retried after a rate-limit response.",
			},
		),
		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "blockclone_api_rate_limited_total",
				Help: "Rate-limit responses received.",
			},
		),
	}
	reg.MustRegister(m.Requests, m.Retries, m.RateLimited)
	return m
}

func (m *Metrics) observe(endpoint string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Requests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) observeRateLimit() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

func (m *Metrics) observeRetry() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}
