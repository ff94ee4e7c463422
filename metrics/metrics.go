// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
}

// Metrics methods are safe to call on a nil receiver.
type Metrics struct {
	Registry       *prometheus.Registry
	SessionsOpened prometheus.Counter
	SessionsActive prometheus.Gauge
	Terminations   *prometheus.CounterVec
	BytesIn        prometheus.Counter
	BytesOut       prometheus.Counter
	Requests       *prometheus.CounterVec
	Connections    prometheus.Gauge
}

const namespace = "taibf"

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_opened_total",
			Help:      "Sessions opened.",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions not yet closed.",
		}),
		Terminations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "terminations_total",
			Help:      "Interpreter runs stopped, by reason.",
		}, []string{"reason"}),
		BytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_bytes_total",
			Help:      "Bytes accepted as program input.",
		}),
		BytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      "Bytes of program output delivered to readers.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Transport requests served, by op and status.",
		}, []string{"op", "status"}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Open transport connections.",
		}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SessionsOpened,
		m.SessionsActive,
		m.Terminations,
		m.BytesIn,
		m.BytesOut,
		m.Requests,
		m.Connections,
	)
	return m
}

func (Module) Metrics() *Metrics {
	return New()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsOpened.Inc()
	m.SessionsActive.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

func (m *Metrics) Terminated(reason string) {
	if m == nil {
		return
	}
	m.Terminations.WithLabelValues(reason).Inc()
}

func (m *Metrics) InputBytes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BytesIn.Add(float64(n))
}

func (m *Metrics) OutputBytes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BytesOut.Add(float64(n))
}

func (m *Metrics) Request(op string, status string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(op, status).Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.Connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.Connections.Dec()
}
