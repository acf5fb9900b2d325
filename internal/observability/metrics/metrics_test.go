package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCallMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCallMetrics(reg)

	m.ObserveTurn("wait_for_id", "ok")
	m.ObserveTurn("wait_for_id", "ok")
	m.ObserveDelegate("FORMAT_ID", "failure")
	m.ObserveViolation("missing_next_phase")
	m.ObserveEscalation("silence-exhausted")
	m.ObserveTransition("start_greeting", "wait_for_id")
	m.ObserveTurnLatency("wait_for_id", 0.02)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.turnsTotal.WithLabelValues("wait_for_id", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.delegateTotal.WithLabelValues("FORMAT_ID", "failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.violationsTotal.WithLabelValues("missing_next_phase")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.escalationsTotal.WithLabelValues("silence-exhausted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.transitionsTotal.WithLabelValues("start_greeting", "wait_for_id")))
}

func TestCallMetricsNilSafe(t *testing.T) {
	var m *CallMetrics
	assert.NotPanics(t, func() {
		m.ObserveTurn("x", "ok")
		m.ObserveDelegate("x", "ok")
		m.ObserveViolation("x")
		m.ObserveEscalation("x")
		m.ObserveTransition("a", "b")
		m.ObserveTurnLatency("x", 0.1)
	})
}
