// Package observability exposes Prometheus metrics for the command pipeline.
// A nil *Metrics is valid and records nothing.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taox"

// Metrics groups the collectors of the dialogue engine and the process executor.
type Metrics struct {
	registry *prometheus.Registry

	transitions   *prometheus.CounterVec
	executions    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	secretPrompts *prometheus.CounterVec
	responses     *prometheus.CounterVec
}

// New creates the collectors and registers them on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dialogue_transitions_total",
				Help:      "Total number of conversation state transitions",
			},
			[]string{"from", "to"},
		),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "executions_total",
				Help:      "Total number of invocations of the wrapped tool by outcome",
			},
			[]string{"intent", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "execution_duration_seconds",
				Help:      "Duration of wrapped tool invocations",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"intent"},
		),
		secretPrompts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "secret_prompts_total",
				Help:      "Secret prompts answered or refused by the executor",
			},
			[]string{"outcome"},
		),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "responses_total",
				Help:      "Responses returned by the dialogue engine",
			},
			[]string{"kind"},
		),
	}
	m.registry.MustRegister(m.transitions, m.executions, m.duration, m.secretPrompts, m.responses)
	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Transition records a conversation state change.
func (m *Metrics) Transition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// ObserveExecution records the outcome of one invocation.
func (m *Metrics) ObserveExecution(intent, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(intent, status).Inc()
	m.duration.WithLabelValues(intent).Observe(d.Seconds())
}

// SecretPrompt records how a secret prompt was handled.
func (m *Metrics) SecretPrompt(outcome string) {
	if m == nil {
		return
	}
	m.secretPrompts.WithLabelValues(outcome).Inc()
}

// Response records the kind of a dialogue response.
func (m *Metrics) Response(kind string) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(kind).Inc()
}
