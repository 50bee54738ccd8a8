package gateway

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StatusSuccessful is the provider's success sentinel for a verified charge.
const StatusSuccessful = "successful"

type Customer struct {
	Email       string
	PhoneNumber string
	Name        string
}

// Metadata travels with the hosted checkout and comes back on verification, so
// a verified transaction can be cross-checked against the ledger row instead
// of trusting webhook fields alone.
type Metadata struct {
	UserID      int64     `json:"user_id"`
	CarIDs      []int64   `json:"car_ids"`
	RentalStart time.Time `json:"rental_start"`
	RentalEnd   time.Time `json:"rental_end"`
}

type CheckoutRequest struct {
	TxRef       string
	Amount      decimal.Decimal
	Currency    string
	RedirectURL string
	Customer    Customer
	Title       string
	Description string
	Meta        Metadata
}

// Verification is the gateway's own record of a transaction, fetched
// server-side. It is the only source of truth the reconciliation engine
// trusts for callback and explicit-verify events.
type Verification struct {
	TxRef         string
	Status        string
	Amount        decimal.Decimal
	Currency      string
	TransactionID int64
	Meta          Metadata
}

// WebhookEvent is a parsed, signature-checked webhook push.
type WebhookEvent struct {
	Event         string
	TxRef         string
	Status        string
	Amount        decimal.Decimal
	TransactionID int64
}

type Client interface {
	// CreateCheckout opens a hosted payment session and returns the redirect
	// link the payer completes the charge on.
	CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error)

	// VerifyByReference fetches the transaction state for a tx_ref directly
	// from the gateway. Timeouts and 5xx map to domain.ErrGatewayUnavailable;
	// an unknown reference maps to domain.ErrNotFound.
	VerifyByReference(ctx context.Context, txRef string) (*Verification, error)

	// ParseWebhook authenticates the raw body against the signature header and
	// decodes the event. domain.ErrBadSignature is returned before any decoding
	// result is trusted.
	ParseWebhook(rawBody []byte, signature string) (*WebhookEvent, error)
}
