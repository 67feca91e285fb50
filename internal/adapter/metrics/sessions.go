package metrics

import "github.com/prometheus/client_golang/prometheus"

// SessionMetrics holds Prometheus metrics for session mutations.
type SessionMetrics struct {
	Mutations *prometheus.CounterVec
	Stored    prometheus.Gauge
}

// NewSessionMetrics creates and registers session metrics on the given registry.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "mutations_total",
			Help:      "Total number of applied session mutations, by operation.",
		}, []string{"op"}),
		Stored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "stored",
			Help:      "Number of sessions in the state document after the last mutation.",
		}),
	}

	reg.MustRegister(m.Mutations, m.Stored)
	return m
}

// Record counts a mutation and updates the stored gauge. A nil receiver is a no-op.
func (m *SessionMetrics) Record(op string, stored int) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op).Inc()
	m.Stored.Set(float64(stored))
}
