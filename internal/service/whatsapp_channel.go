package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// WhatsAppChannel posts messages to a WhatsApp gateway webhook.
type WhatsAppChannel struct {
	url   string
	token string
}

// NewWhatsAppChannel returns nil when no gateway URL is configured.
func NewWhatsAppChannel(url, token string) *WhatsAppChannel {
	if url == "" {
		return nil
	}
	return &WhatsAppChannel{url: url, token: token}
}

type whatsAppPayload struct {
	To      string            `json:"to"`
	Subject string            `json:"subject,omitempty"`
	Body    string            `json:"body"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func (c *WhatsAppChannel) Name() string { return "whatsapp" }

func (c *WhatsAppChannel) Send(ctx context.Context, recipient *domain.User, msg domain.OutboundMessage) error {
	if recipient.WhatsApp == "" {
		return errors.New(domain.DeliveryErrMissingWhatsApp)
	}

	agent := fiber.Post(c.url)
	if c.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	agent.JSON(whatsAppPayload{
		To:      recipient.WhatsApp,
		Subject: msg.Subject,
		Body:    msg.Body,
		Meta:    msg.Meta,
	})
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return context.DeadlineExceeded
		}
		agent.Timeout(remaining)
	}
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("whatsapp request: %w", err)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		var timeoutErr interface{ Timeout() bool }
		if (errors.As(errs[0], &timeoutErr) && timeoutErr.Timeout()) || ctx.Err() != nil {
			return context.DeadlineExceeded
		}
		return fmt.Errorf("whatsapp gateway: %w", errs[0])
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("whatsapp gateway returned %d: %s", status, truncate(string(body), 200))
	}
	return nil
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
