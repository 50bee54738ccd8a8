package service

import (
	"context"
	"time"

	"carrental-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// ReconcileSource identifies which delivery path triggered reconciliation.
// All three funnel into the same state-transition code path.
type ReconcileSource string

const (
	SourceWebhook  ReconcileSource = "webhook"
	SourceCallback ReconcileSource = "callback"
	SourceVerify   ReconcileSource = "explicit-verify"
)

type ReconcileOutcome string

const (
	OutcomeCommitted        ReconcileOutcome = "committed"
	OutcomeAlreadyCommitted ReconcileOutcome = "already-committed"
	OutcomeAlreadyFailed    ReconcileOutcome = "already-failed"
	OutcomeAmountMismatch   ReconcileOutcome = "rejected-amount-mismatch"
	OutcomeUnavailable      ReconcileOutcome = "rejected-unavailable"
	OutcomeDeclined         ReconcileOutcome = "rejected-declined"
)

type ReconcileResult struct {
	Outcome ReconcileOutcome
	Attempt *domain.PaymentAttempt
}

// Successful reports whether the attempt is in the successful terminal state,
// whether this call committed it or a previous one did.
func (r *ReconcileResult) Successful() bool {
	return r.Outcome == OutcomeCommitted || r.Outcome == OutcomeAlreadyCommitted
}

type InitiatePaymentRequest struct {
	CarIDs      []int64   `json:"car_ids"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	RentalStart time.Time `json:"rental_start"`
	RentalEnd   time.Time `json:"rental_end"`
}

type PaymentService interface {
	// InitiatePayment records a pending ledger entry and returns the hosted
	// checkout link for the payer.
	InitiatePayment(ctx context.Context, userID int64, req InitiatePaymentRequest) (string, error)

	// HandleWebhook authenticates and reconciles a gateway push notification.
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*ReconcileResult, error)

	// HandleCallback reconciles a browser redirect. The inbound query is never
	// trusted; the transaction is re-verified server-side.
	HandleCallback(ctx context.Context, txRef string) (*ReconcileResult, error)

	// VerifyTransaction reconciles on demand (client polling, janitor job).
	VerifyTransaction(ctx context.Context, txRef string) (*ReconcileResult, error)

	ListUserPayments(ctx context.Context, userID int64) ([]domain.PaymentAttempt, error)

	// Flush waits for in-flight receipt dispatches, for graceful shutdown.
	Flush()
}

type CarService interface {
	CreateCar(ctx context.Context, car *domain.Car) error
	GetCar(ctx context.Context, id int64) (*domain.Car, error)
	UpdateCar(ctx context.Context, car *domain.Car) error
	DeleteCar(ctx context.Context, id int64) error
	ListCars(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Car, int32, error)

	// RentCarManually assigns a car outside the payment flow (admin/desk
	// bookings). Uses the same conditional occupation primitive as the
	// reconciliation engine.
	RentCarManually(ctx context.Context, renterID, carID int64, start, end time.Time) (*domain.Car, error)
	ReturnCar(ctx context.Context, carID int64) error
}

type AuthService interface {
	Register(ctx context.Context, name, email, phoneNumber, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
}

type LoginResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type EmailService interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMSService interface {
	Send(ctx context.Context, to, message string) error
}

// Contact is who a receipt goes to.
type Contact struct {
	UserID      *int64
	Name        string
	Email       string
	PhoneNumber string
}

// ReceiptData is everything needed to render a payment confirmation.
type ReceiptData struct {
	Name         string
	TxRef        string
	CarSummaries []string
	Amount       decimal.Decimal
	Currency     string
	RentalStart  time.Time
	RentalEnd    time.Time
}

// Notifier dispatches confirmation messages. Implementations log failures and
// never return them; a lost notification must not affect committed state.
type Notifier interface {
	SendReceipt(ctx context.Context, contact Contact, data ReceiptData)
}
