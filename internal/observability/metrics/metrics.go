package metrics

import "github.com/prometheus/client_golang/prometheus"

// CallMetrics exposes counters/histograms for the conversation engine.
type CallMetrics struct {
	turnsTotal       *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	delegateTotal    *prometheus.CounterVec
	violationsTotal  *prometheus.CounterVec
	escalationsTotal *prometheus.CounterVec
	turnLatency      *prometheus.HistogramVec
}

func NewCallMetrics(reg prometheus.Registerer) *CallMetrics {
	m := &CallMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callflow",
			Subsystem: "engine",
			Name:      "turns_total",
			Help:      "Total conversation turns processed",
		}, []string{"phase", "status"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callflow",
			Subsystem: "engine",
			Name:      "phase_transitions_total",
			Help:      "Total committed phase transitions",
		}, []string{"from", "to"}),
		delegateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callflow",
			Subsystem: "gateway",
			Name:      "delegate_calls_total",
			Help:      "Total delegated external calls",
		}, []string{"action", "outcome"}),
		violationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callflow",
			Subsystem: "contract",
			Name:      "violations_total",
			Help:      "Total response contract violations",
		}, []string{"code"}),
		escalationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callflow",
			Subsystem: "engine",
			Name:      "escalations_total",
			Help:      "Total calls terminated by escalation policy",
		}, []string{"reason"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "callflow",
			Subsystem: "engine",
			Name:      "turn_latency_seconds",
			Help:      "Latency of full turn processing including delegation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.transitionsTotal, m.delegateTotal, m.violationsTotal, m.escalationsTotal, m.turnLatency)
	return m
}

func (m *CallMetrics) ObserveTurn(phase, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(phase, status).Inc()
}

func (m *CallMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *CallMetrics) ObserveDelegate(action, outcome string) {
	if m == nil {
		return
	}
	m.delegateTotal.WithLabelValues(action, outcome).Inc()
}

func (m *CallMetrics) ObserveViolation(code string) {
	if m == nil {
		return
	}
	m.violationsTotal.WithLabelValues(code).Inc()
}

func (m *CallMetrics) ObserveEscalation(reason string) {
	if m == nil {
		return
	}
	m.escalationsTotal.WithLabelValues(reason).Inc()
}

func (m *CallMetrics) ObserveTurnLatency(phase string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(phase).Observe(seconds)
}
