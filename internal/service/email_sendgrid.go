package service

import (
	"context"
	"fmt"

	"carrental-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridEmailService struct {
	client *sendgrid.Client
	from   string
}

// NewSendGridEmailService sends mail through the SendGrid API instead of a
// local SMTP relay. Selected by the email.provider config value.
func NewSendGridEmailService(apiKey, from string) EmailService {
	return &sendgridEmailService{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
	}
}

func (s *sendgridEmailService) Send(ctx context.Context, to, subject, htmlBody string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail("", s.from),
		subject,
		mail.NewEmail("", to),
		"",
		htmlBody,
	)

	logger.ExternalServiceCall("sendgrid", "send", "to", to)
	resp, err := s.client.SendWithContext(ctx, message)
	logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected message: status %d", resp.StatusCode)
	}
	return nil
}
