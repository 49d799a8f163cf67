package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.Transition("idle", "slot_filling")
	m.Transition("idle", "idle")
	m.ObserveExecution("stake", "success", 2*time.Second)
	m.SecretPrompt("supplied")
	m.Response("ask")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("idle", "slot_filling")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.transitions.WithLabelValues("idle", "idle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.executions.WithLabelValues("stake", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.secretPrompts.WithLabelValues("supplied")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "taox_executions_total")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Transition("idle", "confirming")
		m.ObserveExecution("stake", "failed", time.Second)
		m.SecretPrompt("supplied")
		m.Response("none")
	})
	assert.Nil(t, m.Registry())
}
