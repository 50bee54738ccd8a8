package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusSuccessful PaymentStatus = "successful"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// IsTerminal reports whether the status is absorbing. Successful and failed
// attempts are never transitioned again.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccessful || s == PaymentStatusFailed
}

// PaymentAttempt is the ledger record of one hosted-payment flow. TxRef is the
// idempotency key for the whole flow; rows are never deleted.
type PaymentAttempt struct {
	ID       int64   `json:"id"`
	TxRef    string  `json:"tx_ref"`
	UserID   int64   `json:"user_id"`
	CarIDs   []int64 `json:"car_ids"`

	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`

	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`

	Status PaymentStatus `json:"status"`
	// GatewayTransactionID is set only when the attempt is verified
	// successful; it must be unique across attempts.
	GatewayTransactionID *int64 `json:"gateway_transaction_id,omitempty"`
	FailureReason        string `json:"failure_reason,omitempty"`

	// Requested occupancy window, captured at creation so a later inventory
	// lookup cannot desync from what the payer paid for.
	RentalStart time.Time `json:"rental_start"`
	RentalEnd   time.Time `json:"rental_end"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// NewTxRef builds the transaction reference for a fresh payment attempt.
func NewTxRef(userID int64, now time.Time) string {
	return fmt.Sprintf("tx-%d-%d", now.UnixMilli(), userID)
}
