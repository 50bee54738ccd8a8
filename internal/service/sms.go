package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"carrental-backend/internal/logger"
)

// smsService posts to a KudiSMS-style JSON API. The provider has no Go SDK;
// the wire contract is a single action=send-sms request.
type smsService struct {
	baseURL    string
	apiKey     string
	senderID   string
	httpClient *http.Client
}

func NewSMSService(baseURL, apiKey, senderID string) SMSService {
	return &smsService{
		baseURL:    baseURL,
		apiKey:     apiKey,
		senderID:   senderID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *smsService) Send(ctx context.Context, to, message string) error {
	if s.apiKey == "" || s.senderID == "" {
		return fmt.Errorf("sms provider not configured")
	}

	payload := map[string]string{
		"action":  "send-sms",
		"api_key": s.apiKey,
		"to":      to,
		"from":    s.senderID,
		"sms":     message,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	logger.ExternalServiceCall("sms", "send", "to", to)
	resp, err := s.httpClient.Do(req)
	logger.ExternalServiceResult("sms", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sms provider rejected message: status %d", resp.StatusCode)
	}
	return nil
}
