package handlers

import (
	"net/http"

	"github.com/franzego/apptnotifier/internal/logging"
	"github.com/franzego/apptnotifier/internal/metrics"
	"github.com/franzego/apptnotifier/internal/models"
	"github.com/franzego/apptnotifier/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Notification struct {
	Service services.AppointmentNotifier
	Log     *zap.SugaredLogger
}

func NewNotificationHandler(service services.AppointmentNotifier, log *zap.SugaredLogger) *Notification {
	return &Notification{
		Service: service,
		Log:     log,
	}
}

// SendEmails handles POST /send-emails. Malformed payloads get 422; every
// other failure collapses to 500 with the error text in "detail".
func (no *Notification) SendEmails(c *gin.Context) {
	log := logging.GetReqLogger(c, no.Log)

	var req models.AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Infow("Rejected appointment payload", "error", err)
		metrics.NotificationRequests.WithLabelValues(metrics.OutcomeValidationError).Inc()
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Detail: err.Error()})
		return
	}

	resp, err := no.Service.SendAppointmentEmails(c.Request.Context(), req)
	if err != nil {
		switch services.KindOf(err) {
		case services.KindValidation:
			metrics.NotificationRequests.WithLabelValues(metrics.OutcomeValidationError).Inc()
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Detail: err.Error()})
			return
		case services.KindConfig:
			log.Errorw("Mail sender is not configured", "error", err)
			metrics.NotificationRequests.WithLabelValues(metrics.OutcomeConfigError).Inc()
		default:
			log.Errorw("Failed to deliver appointment emails", "error", err)
			metrics.NotificationRequests.WithLabelValues(metrics.OutcomeTransportError).Inc()
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: err.Error()})
		return
	}

	metrics.NotificationRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	c.JSON(http.StatusOK, resp)
}

func (no *Notification) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
