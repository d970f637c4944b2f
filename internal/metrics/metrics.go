package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cafeteria"

type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	CheckoutOutcomes *prometheus.CounterVec
	IntegrityFaults  *prometheus.CounterVec
	WebhookEvents    *prometheus.CounterVec
	Refunds          *prometheus.CounterVec
	Notifications    *prometheus.CounterVec
}

// New registers every collector on reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		CheckoutOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "outcomes_total",
			Help:      "Checkout reconciliations by entry point and outcome.",
		}, []string{"entry", "outcome"}),
		IntegrityFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "integrity_faults_total",
			Help:      "Data-integrity faults detected during reconciliation.",
		}, []string{"kind"}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Verified payment webhook events by type.",
		}, []string{"type"}),
		Refunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cancellation",
			Name:      "refunds_total",
			Help:      "Refund attempts by outcome.",
		}, []string{"outcome"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Order emails by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.CheckoutOutcomes, m.IntegrityFaults,
		m.WebhookEvents, m.Refunds, m.Notifications)
	return m
}

// The helpers below accept a nil receiver so callers can run without metrics.

func (m *Metrics) Checkout(entry, outcome string) {
	if m != nil {
		m.CheckoutOutcomes.WithLabelValues(entry, outcome).Inc()
	}
}

func (m *Metrics) IntegrityFault(kind string) {
	if m != nil {
		m.IntegrityFaults.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Webhook(eventType string) {
	if m != nil {
		m.WebhookEvents.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) Refund(outcome string) {
	if m != nil {
		m.Refunds.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Notification(outcome string) {
	if m != nil {
		m.Notifications.WithLabelValues(outcome).Inc()
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
