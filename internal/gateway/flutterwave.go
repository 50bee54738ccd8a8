package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"carrental-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.flutterwave.com/v3"

// FlutterwaveClient talks to a Flutterwave-style hosted-payment API.
type FlutterwaveClient struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	httpClient    *http.Client
}

func NewFlutterwaveClient(baseURL, secretKey, webhookSecret string, timeout time.Duration) *FlutterwaveClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &FlutterwaveClient{
		baseURL:       baseURL,
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

type checkoutPayload struct {
	TxRef          string          `json:"tx_ref"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	RedirectURL    string          `json:"redirect_url"`
	Customer       customerPayload `json:"customer"`
	Customizations customizations  `json:"customizations"`
	Meta           Metadata        `json:"meta"`
}

type customerPayload struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phonenumber"`
	Name        string `json:"name"`
}

type customizations struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type checkoutResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (c *FlutterwaveClient) CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	payload := checkoutPayload{
		TxRef:       req.TxRef,
		Amount:      req.Amount,
		Currency:    req.Currency,
		RedirectURL: req.RedirectURL,
		Customer: customerPayload{
			Email:       req.Customer.Email,
			PhoneNumber: req.Customer.PhoneNumber,
			Name:        req.Customer.Name,
		},
		Customizations: customizations{Title: req.Title, Description: req.Description},
		Meta:           req.Meta,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode checkout payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w: checkout returned %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	var decoded checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode checkout response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || decoded.Status != "success" || decoded.Data.Link == "" {
		return "", fmt.Errorf("checkout rejected: %s", decoded.Message)
	}
	return decoded.Data.Link, nil
}

type verifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID     int64           `json:"id"`
		TxRef  string          `json:"tx_ref"`
		Status string          `json:"status"`
		Amount decimal.Decimal `json:"amount"`

		Currency string   `json:"currency"`
		Meta     Metadata `json:"meta"`
	} `json:"data"`
}

func (c *FlutterwaveClient) VerifyByReference(ctx context.Context, txRef string) (*Verification, error) {
	endpoint := fmt.Sprintf("%s/transactions/verify_by_reference?tx_ref=%s", c.baseURL, url.QueryEscape(txRef))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: verify returned %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	var decoded verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	if decoded.Status != "success" {
		return nil, fmt.Errorf("verify rejected: %s", decoded.Message)
	}
	return &Verification{
		TxRef:         decoded.Data.TxRef,
		Status:        decoded.Data.Status,
		Amount:        decoded.Data.Amount,
		Currency:      decoded.Data.Currency,
		TransactionID: decoded.Data.ID,
		Meta:          decoded.Data.Meta,
	}, nil
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID     int64           `json:"id"`
		TxRef  string          `json:"tx_ref"`
		Status string          `json:"status"`
		Amount decimal.Decimal `json:"amount"`
	} `json:"data"`
}

// ParseWebhook verifies the HMAC-SHA256 signature over the exact raw bytes
// before anything in the payload is decoded. Verification is unconditional;
// there is no configuration that disables it.
func (c *FlutterwaveClient) ParseWebhook(rawBody []byte, signature string) (*WebhookEvent, error) {
	if signature == "" {
		return nil, domain.ErrBadSignature
	}
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, domain.ErrBadSignature
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	if payload.Data.TxRef == "" {
		return nil, fmt.Errorf("%w: webhook carries no tx_ref", domain.ErrInvalidInput)
	}
	return &WebhookEvent{
		Event:         payload.Event,
		TxRef:         payload.Data.TxRef,
		Status:        payload.Data.Status,
		Amount:        payload.Data.Amount,
		TransactionID: payload.Data.ID,
	}, nil
}
