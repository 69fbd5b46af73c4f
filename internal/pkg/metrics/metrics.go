// Package metrics exposes the dialog engine counters on a dedicated prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "school_assist"

type Metrics struct {
	Registry *prometheus.Registry

	Turns              *prometheus.CounterVec
	ParseTiers         *prometheus.CounterVec
	HandoffTransitions *prometheus.CounterVec
	ExternalCalls      *prometheus.HistogramVec
	AdmissionsCreated  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		Turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialog_turns_total",
			Help:      "Dialog turns handled, by domain and resolved intent.",
		}, []string{"domain", "intent"}),
		ParseTiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesizer_parse_tier_total",
			Help:      "Generation outcomes by parse tier (direct, repair, fallback).",
		}, []string{"tier"}),
		HandoffTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_handoff_transitions_total",
			Help:      "Email hand-off state transitions.",
		}, []string{"from", "to"}),
		ExternalCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "external_call_duration_seconds",
			Help:      "Latency of calls to external collaborators.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"collaborator", "outcome"}),
		AdmissionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admission_requests_total",
			Help:      "Admission requests persisted.",
		}),
	}

	reg.MustRegister(
		m.Turns,
		m.ParseTiers,
		m.HandoffTransitions,
		m.ExternalCalls,
		m.AdmissionsCreated,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveCall records one external call; outcome is "ok" or "error"
func (m *Metrics) ObserveCall(collaborator string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ExternalCalls.WithLabelValues(collaborator, outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveTurn(domain, intent string) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(domain, intent).Inc()
}

func (m *Metrics) ObserveTier(tier string) {
	if m == nil {
		return
	}
	m.ParseTiers.WithLabelValues(tier).Inc()
}

func (m *Metrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.HandoffTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveAdmission() {
	if m == nil {
		return
	}
	m.AdmissionsCreated.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
