package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(MailSend.WithLabelValues("doctor", OutcomeSuccess))
	MailSend.WithLabelValues("doctor", OutcomeSuccess).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(MailSend.WithLabelValues("doctor", OutcomeSuccess)))

	before = testutil.ToFloat64(NotificationRequests.WithLabelValues(OutcomeTransportError))
	NotificationRequests.WithLabelValues(OutcomeTransportError).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(NotificationRequests.WithLabelValues(OutcomeTransportError)))
}

func TestMetricsHandler(t *testing.T) {
	NotificationRequests.WithLabelValues(OutcomeSuccess).Inc()

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "appointment_notifier_requests_total")
}
