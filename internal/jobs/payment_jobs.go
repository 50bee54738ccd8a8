package jobs

import (
	"context"
	"errors"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

// StaleListing is the slice of the ledger the janitor needs: pending attempts
// old enough that their hosted checkout should have resolved by now.
type StaleListing interface {
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.PaymentAttempt, error)
	MarkFailed(ctx context.Context, txRef, reason string) (bool, error)
}

// ReverifyStalePayments sweeps pending attempts whose webhook/callback never
// arrived (or arrived while we were down) and replays them through the normal
// reconciliation path. Safe to run concurrently with live traffic because the
// path is idempotent.
func (jr *JobRunner) ReverifyStalePayments() {
	jr.runWithRecovery("ReverifyStalePayments", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		cfg := jr.config.Scheduler
		cutoff := time.Now().Add(-time.Duration(cfg.StalePaymentAgeMins) * time.Minute)
		attempts, err := jr.stale.ListStalePending(ctx, cutoff, cfg.StalePaymentBatch)
		if err != nil {
			logger.Error("Failed to list stale pending payments", "error", err)
			return
		}
		if len(attempts) == 0 {
			return
		}
		logger.Info("Re-verifying stale pending payments", "count", len(attempts))

		for _, attempt := range attempts {
			result, err := jr.paymentSvc.VerifyTransaction(ctx, attempt.TxRef)
			switch {
			case err == nil:
				logger.Info("Stale payment reconciled", "tx_ref", attempt.TxRef, "outcome", result.Outcome)
			case errors.Is(err, domain.ErrNotFound):
				// The gateway has no record: the payer never reached checkout.
				// Expire the attempt so it stops being swept.
				if won, ferr := jr.stale.MarkFailed(ctx, attempt.TxRef, "expired before checkout completed"); ferr != nil {
					logger.Error("Failed to expire stale payment", "tx_ref", attempt.TxRef, "error", ferr)
				} else if won {
					logger.Info("Stale payment expired", "tx_ref", attempt.TxRef)
				}
			case errors.Is(err, domain.ErrGatewayUnavailable):
				// Leave it pending; the next sweep will retry.
				logger.Warn("Gateway unavailable during stale sweep", "tx_ref", attempt.TxRef)
			default:
				logger.Error("Stale payment re-verification failed", "tx_ref", attempt.TxRef, "error", err)
			}
		}
	})
}
