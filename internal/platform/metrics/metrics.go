package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus instruments for the service. Constructed once
// in main and injected; nil receivers are tolerated so tests can pass nil.
type Metrics struct {
	SlotsCreated           prometheus.Counter
	PaymentIntentsCreated  prometheus.Counter
	ContributionsCompleted prometheus.Counter
	ContributionsFailed    prometheus.Counter
	WebhookEvents          *prometheus.CounterVec
	OTPIssued              prometheus.Counter
	OTPVerified            *prometheus.CounterVec
	RequestLatency         *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		SlotsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "harambee_slots_created_total",
			Help: "Total number of sponsorship slots created",
		}),
		PaymentIntentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "harambee_payment_intents_created_total",
			Help: "Total number of gateway payment intents created",
		}),
		ContributionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "harambee_contributions_completed_total",
			Help: "Total number of contributions confirmed by the gateway",
		}),
		ContributionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "harambee_contributions_failed_total",
			Help: "Total number of contributions the gateway reported failed",
		}),
		WebhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "harambee_webhook_events_total",
			Help: "Gateway webhook deliveries by application result",
		}, []string{"result"}),
		OTPIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "harambee_otp_issued_total",
			Help: "Total number of OTP challenges issued",
		}),
		OTPVerified: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "harambee_otp_verify_total",
			Help: "OTP verification attempts by outcome",
		}, []string{"outcome"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "harambee_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveRequest records a request latency sample.
func (m *Metrics) ObserveRequest(route string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(route).Observe(d.Seconds())
}

// IncWebhookEvent counts one webhook delivery with its application result
// (applied, duplicate, unmatched, error).
func (m *Metrics) IncWebhookEvent(result string) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(result).Inc()
}
