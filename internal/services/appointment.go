package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/franzego/apptnotifier/internal/config"
	"github.com/franzego/apptnotifier/internal/mailer"
	"github.com/franzego/apptnotifier/internal/metrics"
	"github.com/franzego/apptnotifier/internal/models"
	"github.com/franzego/apptnotifier/pkg/circuitbreaker"
	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const ConfirmationMessage = "Emails sent successfully"

type AppointmentNotifier interface {
	SendAppointmentEmails(ctx context.Context, req models.AppointmentRequest) (*models.MessageResponse, error)
}

type AppointmentService struct {
	mailer   mailer.Mailer
	sender   config.EmailConfig
	cb       *gobreaker.CircuitBreaker
	validate *validator.Validate
	log      *zap.SugaredLogger
}

func NewAppointmentService(m mailer.Mailer, sender config.EmailConfig, breaker config.BreakerConfig, log *zap.SugaredLogger) *AppointmentService {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &AppointmentService{
		mailer: m,
		sender: sender,
		cb: circuitbreaker.CircuitBreaker("smtp-breaker", circuitbreaker.Options{
			MaxFailures: breaker.MaxFailures,
			OpenTimeout: breaker.OpenTimeout,
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warnw("SMTP circuit breaker changed state", "breaker", name, "from", from.String(), "to", to.String())
				metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			},
			// A relay that refuses one recipient or message is still healthy.
			IsSuccessful: func(err error) bool {
				return err == nil || mailer.IsRejection(err)
			},
		}),
		validate: v,
		log:      log,
	}
}

// SendAppointmentEmails renders the doctor and patient emails and submits both
// over one relay session, doctor first. Empty strings are passed through; only
// absent fields are rejected.
func (s *AppointmentService) SendAppointmentEmails(ctx context.Context, req models.AppointmentRequest) (*models.MessageResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, &Error{Kind: KindValidation, Op: "validate appointment", Err: err}
	}
	n := req.Notification()
	if err := s.sender.Validate(); err != nil {
		return nil, &Error{Kind: KindConfig, Op: "load smtp credentials", Err: err}
	}

	emails := []models.Email{
		RenderDoctorEmail(s.sender.User, n),
		RenderPatientEmail(s.sender.User, n),
	}

	var delivered int
	_, err := s.cb.Execute(func() (interface{}, error) {
		var sendErr error
		delivered, sendErr = s.mailer.Send(ctx, emails...)
		return nil, sendErr
	})
	if err != nil {
		s.log.Errorw("Failed to send appointment emails",
			"error", err,
			"delivered", delivered,
			"expected", len(emails),
		)
		return nil, &Error{Kind: KindTransport, Op: "send appointment emails", Delivered: delivered, Err: err}
	}

	s.log.Infow("Appointment emails sent", "delivered", delivered)
	return &models.MessageResponse{Message: ConfirmationMessage}, nil
}

func (s *AppointmentService) validateRequest(req models.AppointmentRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
}
