package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/gateway"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/utils"

	"github.com/shopspring/decimal"
)

// TxBeginner starts a database transaction spanning the ledger and inventory
// repositories. Satisfied by postgres.Store.
type TxBeginner interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
}

// PaymentServiceConfig carries the knobs the engine needs from configuration.
type PaymentServiceConfig struct {
	RedirectURL   string
	VerifyTimeout time.Duration
}

type paymentService struct {
	store       TxBeginner
	paymentRepo repository.PaymentRepository
	carRepo     repository.CarRepository
	userRepo    repository.UserRepository
	gw          gateway.Client
	notifier    Notifier
	cfg         PaymentServiceConfig

	wg sync.WaitGroup
}

func NewPaymentService(
	store TxBeginner,
	paymentRepo repository.PaymentRepository,
	carRepo repository.CarRepository,
	userRepo repository.UserRepository,
	gw gateway.Client,
	notifier Notifier,
	cfg PaymentServiceConfig,
) PaymentService {
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = 15 * time.Second
	}
	return &paymentService{
		store:       store,
		paymentRepo: paymentRepo,
		carRepo:     carRepo,
		userRepo:    userRepo,
		gw:          gw,
		notifier:    notifier,
		cfg:         cfg,
	}
}

func (s *paymentService) InitiatePayment(ctx context.Context, userID int64, req InitiatePaymentRequest) (string, error) {
	if len(req.CarIDs) == 0 {
		return "", fmt.Errorf("%w: at least one car is required", domain.ErrInvalidInput)
	}
	if req.Email == "" || req.PhoneNumber == "" {
		return "", fmt.Errorf("%w: email and phone number are required", domain.ErrInvalidInput)
	}
	if !req.RentalStart.Before(req.RentalEnd) {
		return "", fmt.Errorf("%w: rental end must be after start", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	amount := decimal.Zero
	currency := ""
	summaries := make([]string, 0, len(req.CarIDs))
	for _, carID := range req.CarIDs {
		car, err := s.carRepo.GetByID(ctx, carID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return "", fmt.Errorf("%w: car %d", domain.ErrNotFound, carID)
			}
			return "", err
		}
		if currency == "" {
			currency = car.Currency
		} else if currency != car.Currency {
			return "", fmt.Errorf("%w: cars priced in different currencies", domain.ErrInvalidInput)
		}
		cost, err := utils.RentalCost(car.PricePerDay, req.RentalStart, req.RentalEnd)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		amount = amount.Add(cost)
		summaries = append(summaries, car.Summary())
	}

	attempt := &domain.PaymentAttempt{
		TxRef:       domain.NewTxRef(userID, time.Now()),
		UserID:      userID,
		CarIDs:      req.CarIDs,
		Amount:      amount,
		Currency:    currency,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		RentalStart: req.RentalStart,
		RentalEnd:   req.RentalEnd,
	}

	// Persist the pending row before calling out. A crash between the two
	// leaves an orphan pending attempt, which the janitor can expire; the
	// reverse order could lose the idempotency key for a live charge.
	if err := s.paymentRepo.CreatePending(ctx, attempt); err != nil {
		return "", fmt.Errorf("create pending payment: %w", err)
	}

	gctx, cancel := context.WithTimeout(ctx, s.cfg.VerifyTimeout)
	defer cancel()
	link, err := s.gw.CreateCheckout(gctx, gateway.CheckoutRequest{
		TxRef:       attempt.TxRef,
		Amount:      amount,
		Currency:    currency,
		RedirectURL: s.cfg.RedirectURL,
		Customer: gateway.Customer{
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
			Name:        user.Name,
		},
		Title:       "Car Rental Payment",
		Description: "Payment for " + strings.Join(summaries, ", "),
		Meta: gateway.Metadata{
			UserID:      userID,
			CarIDs:      req.CarIDs,
			RentalStart: req.RentalStart,
			RentalEnd:   req.RentalEnd,
		},
	})
	if err != nil {
		logger.Error("Checkout creation failed, pending attempt remains", "tx_ref", attempt.TxRef, "error", err)
		return "", err
	}

	logger.Info("Payment initiated", "tx_ref", attempt.TxRef, "user_id", userID, "amount", amount.String(), "cars", len(req.CarIDs))
	return link, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*ReconcileResult, error) {
	// Signature first. An unauthenticated push never reaches the store,
	// regardless of what the payload claims.
	event, err := s.gw.ParseWebhook(rawBody, signature)
	if err != nil {
		return nil, err
	}
	logger.Info("Webhook received", "tx_ref", event.TxRef, "event", event.Event, "status", event.Status)
	return s.reconcile(ctx, event.TxRef, SourceWebhook)
}

func (s *paymentService) HandleCallback(ctx context.Context, txRef string) (*ReconcileResult, error) {
	if txRef == "" {
		return nil, fmt.Errorf("%w: missing tx_ref", domain.ErrInvalidInput)
	}
	return s.reconcile(ctx, txRef, SourceCallback)
}

func (s *paymentService) VerifyTransaction(ctx context.Context, txRef string) (*ReconcileResult, error) {
	if txRef == "" {
		return nil, fmt.Errorf("%w: missing tx_ref", domain.ErrInvalidInput)
	}
	return s.reconcile(ctx, txRef, SourceVerify)
}

// reconcile is the single state-transition path for every payment event.
// Correctness under concurrent delivery rests on the store's conditional
// updates, not on any in-memory lock: exactly one caller wins CommitSuccess,
// everyone else observes the terminal state.
func (s *paymentService) reconcile(ctx context.Context, txRef string, source ReconcileSource) (*ReconcileResult, error) {
	attempt, err := s.paymentRepo.GetByTxRef(ctx, txRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Event for unknown tx_ref dropped", "tx_ref", txRef, "source", source)
		}
		return nil, err
	}

	// Terminal states are absorbing. Replaying a success is a no-op; a late
	// event for a failed attempt is an anomaly, logged and never resurrected.
	switch attempt.Status {
	case domain.PaymentStatusSuccessful:
		return &ReconcileResult{Outcome: OutcomeAlreadyCommitted, Attempt: attempt}, nil
	case domain.PaymentStatusFailed:
		logger.Warn("Event for terminally failed attempt ignored", "tx_ref", txRef, "source", source, "reason", attempt.FailureReason)
		return &ReconcileResult{Outcome: OutcomeAlreadyFailed, Attempt: attempt}, nil
	}

	// Inbound payloads are never the source of truth, webhook or not; the
	// gateway's verification API decides what actually happened.
	vctx, cancel := context.WithTimeout(ctx, s.cfg.VerifyTimeout)
	defer cancel()
	verification, err := s.gw.VerifyByReference(vctx, txRef)
	if err != nil {
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			logger.Warn("Gateway unavailable during verification", "tx_ref", txRef, "source", source, "error", err)
		}
		return nil, err
	}

	if verification.TxRef != "" && verification.TxRef != txRef {
		return nil, fmt.Errorf("%w: verification returned reference %q for %q", domain.ErrInvalidInput, verification.TxRef, txRef)
	}
	// The checkout metadata round-trips through the gateway; every field it
	// carries must still agree with the ledger row it claims to settle.
	if verification.Meta.UserID != 0 && verification.Meta.UserID != attempt.UserID {
		return nil, fmt.Errorf("%w: checkout metadata does not match ledger entry for %s", domain.ErrInvalidInput, txRef)
	}
	if len(verification.Meta.CarIDs) > 0 && !sameCarSet(verification.Meta.CarIDs, attempt.CarIDs) {
		return nil, fmt.Errorf("%w: checkout metadata does not match ledger entry for %s", domain.ErrInvalidInput, txRef)
	}
	if !verification.Meta.RentalStart.IsZero() && !verification.Meta.RentalStart.Equal(attempt.RentalStart) {
		return nil, fmt.Errorf("%w: checkout metadata does not match ledger entry for %s", domain.ErrInvalidInput, txRef)
	}
	if !verification.Meta.RentalEnd.IsZero() && !verification.Meta.RentalEnd.Equal(attempt.RentalEnd) {
		return nil, fmt.Errorf("%w: checkout metadata does not match ledger entry for %s", domain.ErrInvalidInput, txRef)
	}

	// A gateway transaction id may settle exactly one attempt. Seeing it again
	// under a different tx_ref is a replay.
	if verification.TransactionID != 0 {
		existing, err := s.paymentRepo.GetByGatewayID(ctx, verification.TransactionID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.TxRef != attempt.TxRef {
			logger.Warn("Replayed gateway transaction id rejected", "tx_ref", txRef, "gateway_id", verification.TransactionID, "prior_tx_ref", existing.TxRef)
			return nil, domain.ErrDuplicateGatewayID
		}
	}

	if verification.Status != gateway.StatusSuccessful {
		s.failAttempt(ctx, attempt, fmt.Sprintf("gateway reported status %q", verification.Status))
		return &ReconcileResult{Outcome: OutcomeDeclined, Attempt: attempt}, nil
	}
	// The amount floor is only meaningful in the charged currency; a charge
	// settled in another currency fails regardless of its face value.
	if verification.Currency != "" && verification.Currency != attempt.Currency {
		s.failAttempt(ctx, attempt, fmt.Sprintf("verified currency %q does not match charged currency %q", verification.Currency, attempt.Currency))
		return &ReconcileResult{Outcome: OutcomeAmountMismatch, Attempt: attempt}, nil
	}
	// The verified amount may round up, never down.
	if verification.Amount.LessThan(attempt.Amount) {
		s.failAttempt(ctx, attempt, fmt.Sprintf("verified amount %s below charged amount %s", verification.Amount, attempt.Amount))
		return &ReconcileResult{Outcome: OutcomeAmountMismatch, Attempt: attempt}, nil
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin commit transaction: %w", err)
	}
	defer tx.Rollback()

	won, err := s.paymentRepo.CommitSuccess(ctx, tx, txRef, verification.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("commit payment success: %w", err)
	}
	if !won {
		// A concurrent reconcile beat us to the transition. Release the
		// transaction and report the state the winner left behind.
		_ = tx.Rollback()
		fresh, err := s.paymentRepo.GetByTxRef(ctx, txRef)
		if err != nil {
			return nil, err
		}
		if fresh.Status == domain.PaymentStatusFailed {
			return &ReconcileResult{Outcome: OutcomeAlreadyFailed, Attempt: fresh}, nil
		}
		return &ReconcileResult{Outcome: OutcomeAlreadyCommitted, Attempt: fresh}, nil
	}

	// All cars or none: a single unavailable car aborts the whole cart. Each
	// car's snapshot records its own share of the charge, not the cart total.
	for _, carID := range attempt.CarIDs {
		car, err := s.carRepo.GetByID(ctx, carID)
		if err != nil {
			return nil, fmt.Errorf("load car %d: %w", carID, err)
		}
		cost, err := utils.RentalCost(car.PricePerDay, attempt.RentalStart, attempt.RentalEnd)
		if err != nil {
			return nil, fmt.Errorf("price car %d: %w", carID, err)
		}
		occupied, err := s.carRepo.TryOccupy(ctx, tx, carID, attempt.UserID, attempt.RentalStart, attempt.RentalEnd, cost)
		if err != nil {
			return nil, fmt.Errorf("occupy car %d: %w", carID, err)
		}
		if !occupied {
			_ = tx.Rollback()
			s.failAttempt(ctx, attempt, fmt.Sprintf("car %d unavailable", carID))
			return &ReconcileResult{Outcome: OutcomeUnavailable, Attempt: attempt}, nil
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reconciliation: %w", err)
	}

	attempt.Status = domain.PaymentStatusSuccessful
	attempt.GatewayTransactionID = &verification.TransactionID
	logger.Info("Payment reconciled", "tx_ref", txRef, "source", source, "gateway_id", verification.TransactionID, "cars", len(attempt.CarIDs))

	// Post-commit, best-effort, off the request path: a slow or failing
	// notification never delays the gateway's acknowledgment and never
	// unwinds the committed state.
	s.dispatchReceipt(attempt)

	return &ReconcileResult{Outcome: OutcomeCommitted, Attempt: attempt}, nil
}

// sameCarSet compares two car id lists ignoring order.
func sameCarSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int64]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}

func (s *paymentService) failAttempt(ctx context.Context, attempt *domain.PaymentAttempt, reason string) {
	won, err := s.paymentRepo.MarkFailed(ctx, attempt.TxRef, reason)
	if err != nil {
		logger.Error("Failed to mark attempt failed", "tx_ref", attempt.TxRef, "reason", reason, "error", err)
		return
	}
	if won {
		attempt.Status = domain.PaymentStatusFailed
		attempt.FailureReason = reason
		logger.Info("Payment attempt failed", "tx_ref", attempt.TxRef, "reason", reason)
	}
}

func (s *paymentService) dispatchReceipt(attempt *domain.PaymentAttempt) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Receipt dispatch panicked", "tx_ref", attempt.TxRef, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		contact := Contact{Email: attempt.Email, PhoneNumber: attempt.PhoneNumber}
		if user, err := s.userRepo.GetByID(ctx, attempt.UserID); err == nil {
			contact.UserID = &user.ID
			contact.Name = user.Name
		}

		summaries := make([]string, 0, len(attempt.CarIDs))
		for _, carID := range attempt.CarIDs {
			if car, err := s.carRepo.GetByID(ctx, carID); err == nil {
				summaries = append(summaries, car.Summary())
			}
		}

		s.notifier.SendReceipt(ctx, contact, ReceiptData{
			Name:         contact.Name,
			TxRef:        attempt.TxRef,
			CarSummaries: summaries,
			Amount:       attempt.Amount,
			Currency:     attempt.Currency,
			RentalStart:  attempt.RentalStart,
			RentalEnd:    attempt.RentalEnd,
		})
	}()
}

func (s *paymentService) ListUserPayments(ctx context.Context, userID int64) ([]domain.PaymentAttempt, error) {
	return s.paymentRepo.ListByUser(ctx, userID)
}

func (s *paymentService) Flush() {
	s.wg.Wait()
}
