package domain

import "time"

// DeliveryStatus is the outcome of one outbound delivery attempt.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// Delivery failure reasons reported to callers.
const (
	DeliveryErrMissingWhatsApp     = "missing_whatsapp_number"
	DeliveryErrRecipientNotFound   = "recipient_not_found"
	DeliveryErrRecipientInactive   = "recipient_inactive"
	DeliveryErrChannelUnconfigured = "channel_not_configured"
	DeliveryErrTimeout             = "delivery_timeout"
	DeliveryErrSendFailed          = "send_failed"
)

// OutboundMessage is a message addressed to a single recipient.
type OutboundMessage struct {
	Subject string
	Body    string
	Meta    map[string]string
}

// DeliveryResult captures a per-recipient delivery outcome.
type DeliveryResult struct {
	RecipientID string
	Channel     string
	Status      DeliveryStatus
	Error       string
}

// Notification is an in-app notification row.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	Kind      string
	MatterID  *string
	IsRead    bool
	CreatedAt time.Time
}

// DeliveryRecord logs one delivery attempt.
type DeliveryRecord struct {
	ID          string
	RecipientID string
	MatterID    *string
	Channel     string
	Status      DeliveryStatus
	Error       string
	CreatedAt   time.Time
}
