package service

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type smtpEmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPEmailService sends mail through a plain SMTP relay.
func NewSMTPEmailService(host string, port int, username, password, from string) EmailService {
	return &smtpEmailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *smtpEmailService) Send(ctx context.Context, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}
