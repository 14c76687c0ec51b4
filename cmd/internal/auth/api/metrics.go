package api

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts auth outcomes. Rotation results carry an outcome label
// so dashboards can watch the invalid rate next to successes.
type Metrics struct {
	rotations     *prometheus.CounterVec
	reuseDetected prometheus.Counter
	logins        *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymgate",
			Subsystem: "auth",
			Name:      "refresh_rotations_total",
			Help:      "Refresh token rotation attempts by outcome.",
		}, []string{"outcome"}),
		reuseDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gymgate",
			Subsystem: "auth",
			Name:      "refresh_reuse_detected_total",
			Help:      "Spent refresh tokens presented again.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymgate",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.rotations, m.reuseDetected, m.logins)
	}
	return m
}

func (m *Metrics) rotation(outcome string) {
	if m != nil {
		m.rotations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) reuse() {
	if m != nil {
		m.reuseDetected.Inc()
	}
}

func (m *Metrics) login(outcome string) {
	if m != nil {
		m.logins.WithLabelValues(outcome).Inc()
	}
}
