package service

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	mail "github.com/go-mail/mail/v2"

	"github.com/spec-kit/escalation-service/internal/config"
	"github.com/spec-kit/escalation-service/internal/domain"
)

// EmailChannel sends messages over SMTP with mandatory STARTTLS.
type EmailChannel struct {
	from   string
	dialer *mail.Dialer
}

// NewEmailChannel returns nil when SMTP is not configured.
func NewEmailChannel(cfg config.NotificationConfig) *EmailChannel {
	if cfg.SMTPHost == "" || cfg.EmailFrom == "" {
		return nil
	}
	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	d.Timeout = cfg.DeliveryTimeout()
	return &EmailChannel{from: cfg.EmailFrom, dialer: d}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(ctx context.Context, recipient *domain.User, msg domain.OutboundMessage) error {
	if recipient.Email == "" {
		return errors.New("recipient has no email address")
	}

	m := mail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", recipient.Email)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	// the dialer has no context support; bound it by the remaining deadline
	if deadline, ok := ctx.Deadline(); ok {
		d := *c.dialer
		d.Timeout = time.Until(deadline)
		if d.Timeout <= 0 {
			return context.DeadlineExceeded
		}
		return d.DialAndSend(m)
	}
	return c.dialer.DialAndSend(m)
}
