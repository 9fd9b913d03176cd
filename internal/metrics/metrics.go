package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess         = "success"
	OutcomeFailure         = "failure"
	OutcomeValidationError = "validation_error"
	OutcomeConfigError     = "config_error"
	OutcomeTransportError  = "transport_error"
)

var (
	NotificationRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "appointment_notifier_requests_total",
		Help: "Total number of appointment notification requests grouped by outcome",
	}, []string{"outcome"})
	// Keyed by recipient role, never by address.
	MailSend = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "appointment_notifier_mail_send_total",
		Help: "Total number of appointment emails submitted to the relay grouped by recipient and outcome",
	}, []string{"recipient", "outcome"})
	BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "appointment_notifier_breaker_state",
		Help: "Current SMTP circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})
)

func init() {
	prometheus.MustRegister(NotificationRequests)
	prometheus.MustRegister(MailSend)
	prometheus.MustRegister(BreakerState)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
