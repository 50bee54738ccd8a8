package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"carrental-backend/internal/domain"
)

// MockClient is a local stand-in for the hosted gateway, used in development
// the same way the real client is used in production: checkouts auto-succeed
// and verification reports whatever CreateCheckout recorded.
type MockClient struct {
	mu      sync.Mutex
	nextID  int64
	charges map[string]*Verification
	// signer reuses the real client's webhook scheme with a fixed secret so
	// webhook handling stays exercised end to end in development.
	signer *FlutterwaveClient
}

func NewMockClient() *MockClient {
	return &MockClient{
		nextID:  1000,
		charges: map[string]*Verification{},
		signer:  NewFlutterwaveClient("", "", "mock-webhook-secret", time.Second),
	}
}

func (m *MockClient) CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.charges[req.TxRef] = &Verification{
		TxRef:         req.TxRef,
		Status:        StatusSuccessful,
		Amount:        req.Amount,
		Currency:      req.Currency,
		TransactionID: m.nextID,
		Meta:          req.Meta,
	}
	return fmt.Sprintf("https://mock-gateway.local/pay/%s", req.TxRef), nil
}

func (m *MockClient) VerifyByReference(ctx context.Context, txRef string) (*Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.charges[txRef]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (m *MockClient) ParseWebhook(rawBody []byte, signature string) (*WebhookEvent, error) {
	return m.signer.ParseWebhook(rawBody, signature)
}
