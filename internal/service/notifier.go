package service

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

type notifier struct {
	emailSvc EmailService
	smsSvc   SMSService
	noteRepo repository.NotificationRepository
}

// NewNotifier builds the fire-and-forget receipt dispatcher. Every attempt is
// recorded in the notification log with its outcome; nothing is ever returned
// to the caller.
func NewNotifier(emailSvc EmailService, smsSvc SMSService, noteRepo repository.NotificationRepository) Notifier {
	return &notifier{
		emailSvc: emailSvc,
		smsSvc:   smsSvc,
		noteRepo: noteRepo,
	}
}

func (n *notifier) SendReceipt(ctx context.Context, contact Contact, data ReceiptData) {
	msg := RenderReceipt(data)

	if contact.Email != "" {
		err := n.emailSvc.Send(ctx, contact.Email, msg.Subject, msg.HTML)
		n.record(ctx, contact, domain.NotificationChannelEmail, contact.Email, msg.Subject, msg.HTML, err)
	}
	if contact.PhoneNumber != "" {
		err := n.smsSvc.Send(ctx, contact.PhoneNumber, msg.SMS)
		n.record(ctx, contact, domain.NotificationChannelSMS, contact.PhoneNumber, msg.Subject, msg.SMS, err)
	}
}

func (n *notifier) record(ctx context.Context, contact Contact, channel domain.NotificationChannel, recipient, subject, body string, sendErr error) {
	event := &domain.NotificationEvent{
		UserID:    contact.UserID,
		Channel:   channel,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Status:    domain.NotificationStatusSent,
		SentOn:    time.Now(),
	}
	if sendErr != nil {
		event.Status = domain.NotificationStatusFailed
		event.Detail = sendErr.Error()
		logger.Error("Notification dispatch failed", "channel", channel, "recipient", recipient, "error", sendErr)
	}
	if err := n.noteRepo.Create(ctx, event); err != nil {
		logger.Error("Failed to record notification event", "channel", channel, "recipient", recipient, "error", err)
	}
}
