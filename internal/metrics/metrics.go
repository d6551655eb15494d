// Package metrics exposes relay counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a POST /api/chat.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeUpstream   = "upstream"
	OutcomeInternal   = "internal"
)

type Relay struct {
	reg      *prometheus.Registry
	requests *prometheus.CounterVec
	upstream prometheus.Histogram
}

// NewRelay registers the relay collectors on a private registry so tests and
// multiple instances never collide on the global one.
func NewRelay() *Relay {
	m := &Relay{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_chat_requests_total",
				Help: "Chat requests handled by the relay, by outcome.",
			},
			[]string{"outcome"},
		),
		upstream: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "relay_upstream_duration_seconds",
				Help:    "Time spent waiting on the Ollama chat endpoint.",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 240},
			},
		),
	}
	m.reg.MustRegister(m.requests, m.upstream)
	for _, o := range []string{OutcomeOK, OutcomeValidation, OutcomeUpstream, OutcomeInternal} {
		m.requests.WithLabelValues(o)
	}
	return m
}

func (m *Relay) Observe(outcome string) {
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Relay) ObserveUpstream(d time.Duration) {
	m.upstream.Observe(d.Seconds())
}

// Requests exposes the counter vector for assertions.
func (m *Relay) Requests() *prometheus.CounterVec { return m.requests }

func (m *Relay) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
