package domain

import "time"

type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "EMAIL"
	NotificationChannelSMS   NotificationChannel = "SMS"
)

type NotificationStatus string

const (
	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"
)

// NotificationEvent is the fire-and-forget log of one email/SMS attempt.
// A failed dispatch is recorded here and nowhere else; it never blocks or
// reverses the payment/inventory update that triggered it.
type NotificationEvent struct {
	ID        int64               `json:"id"`
	UserID    *int64              `json:"user_id,omitempty"`
	Channel   NotificationChannel `json:"channel"`
	Recipient string              `json:"recipient"`
	Subject   string              `json:"subject"`
	Body      string              `json:"body"`
	Status    NotificationStatus  `json:"status"`
	Provider  string              `json:"provider"`
	Detail    string              `json:"detail,omitempty"`
	SentOn    time.Time           `json:"sent_on"`
}
