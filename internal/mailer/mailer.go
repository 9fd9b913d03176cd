package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/textproto"

	"github.com/franzego/apptnotifier/internal/config"
	"github.com/franzego/apptnotifier/internal/metrics"
	"github.com/franzego/apptnotifier/internal/models"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer submits rendered emails to the relay over a single session and
// reports how many of them were accepted before any failure.
type Mailer interface {
	Send(ctx context.Context, emails ...models.Email) (int, error)
}

type SMTPMailer struct {
	host          string
	port          int
	username      string
	password      string
	allowLoopback bool
	log           *zap.SugaredLogger
}

func NewSMTPMailer(smtpCfg config.SMTPConfig, sender config.EmailConfig, log *zap.SugaredLogger) *SMTPMailer {
	log.Infow("Initializing SMTP mailer", "host", smtpCfg.Host, "port", smtpCfg.Port, "user", sender.User)
	return &SMTPMailer{
		host:          smtpCfg.Host,
		port:          smtpCfg.Port,
		username:      sender.User,
		password:      sender.Pass,
		allowLoopback: true,
		log:           log,
	}
}

// RejectedError reports that the relay refused a single message with a
// permanent (5xx) reply after the session was set up.
type RejectedError struct {
	Recipient models.Recipient
	Err       error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("relay rejected %s email: %v", e.Recipient, e.Err)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// IsRejection reports whether err is a per-message rejection rather than a
// failure to reach or authenticate against the relay.
func IsRejection(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// Send dials the relay, upgrades with STARTTLS, authenticates and submits the
// emails in order. Credentials are never sent over an unencrypted session
// except to a loopback relay. The session is closed on every path.
func (m *SMTPMailer) Send(ctx context.Context, emails ...models.Email) (delivered int, err error) {
	defer func() {
		if err == nil {
			return
		}
		for _, e := range emails[delivered:] {
			metrics.MailSend.WithLabelValues(string(e.Recipient), metrics.OutcomeFailure).Inc()
		}
	}()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// A dialer per session: the auth mechanism is negotiated per connection.
	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	d.TLSConfig = &tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12}
	d.Auth = &relayAuth{
		username:      m.username,
		password:      m.password,
		host:          m.host,
		allowLoopback: m.allowLoopback,
	}

	s, err := d.Dial()
	if err != nil {
		return 0, fmt.Errorf("connect to smtp relay %s:%d: %w", m.host, m.port, err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			m.log.Warnw("Failed to close SMTP session", "host", m.host, "error", cerr)
		}
	}()

	for _, e := range emails {
		if err := s.Send(e.From, []string{e.To}, buildMessage(e)); err != nil {
			var tpErr *textproto.Error
			if errors.As(err, &tpErr) && tpErr.Code >= 500 {
				return delivered, &RejectedError{Recipient: e.Recipient, Err: err}
			}
			return delivered, fmt.Errorf("send %s email: %w", e.Recipient, err)
		}
		delivered++
		metrics.MailSend.WithLabelValues(string(e.Recipient), metrics.OutcomeSuccess).Inc()
		m.log.Debugw("Email accepted by relay", "recipient", e.Recipient, "subject", e.Subject)
	}
	return delivered, nil
}

func buildMessage(e models.Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", e.From)
	msg.SetHeader("To", e.To)
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/plain", e.Text)
	msg.AddAlternative("text/html", e.HTML)
	return msg
}
