package netx

import "github.com/prometheus/client_golang/prometheus"

const (
	clientGeneral = "general"
	clientProxy   = "proxy"

	reasonThreshold   = "threshold"
	reasonFailures    = "failures"
	reasonTimeout     = "timeout"
	reasonManual      = "manual"
	reasonProxyConfig = "proxy_config"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeTimeout = "timeout"
)

// Metrics exposes supervisor activity to Prometheus. A nil *Metrics records
// nothing.
type Metrics struct {
	rebuilds *prometheus.CounterVec
	failures prometheus.Gauge
	requests *prometheus.CounterVec
}

// NewMetrics creates the supervisor metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountkeeper_http_client_rebuilds_total",
			Help: "HTTP client reconstructions by client and reason.",
		}, []string{"client", "reason"}),
		failures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "accountkeeper_http_consecutive_failures",
			Help: "Current consecutive request failures of the general client.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountkeeper_http_requests_total",
			Help: "Requests performed through the supervisor by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.rebuilds, m.failures, m.requests)
	return m
}

func (m *Metrics) recordRebuild(client, reason string) {
	if m == nil {
		return
	}
	m.rebuilds.WithLabelValues(client, reason).Inc()
}

func (m *Metrics) setFailures(n int32) {
	if m == nil {
		return
	}
	m.failures.Set(float64(n))
}

func (m *Metrics) recordRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}
