package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"

	"github.com/lib/pq"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, tx_ref, user_id, car_ids, amount, currency, email, phone_number, status, gateway_transaction_id, failure_reason, rental_start, rental_end, created_on, updated_on`

func (r *paymentRepository) CreatePending(ctx context.Context, p *domain.PaymentAttempt) error {
	query := `INSERT INTO payment_attempts (tx_ref, user_id, car_ids, amount, currency, email, phone_number, status, rental_start, rental_end, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	p.Status = domain.PaymentStatusPending
	return r.db.QueryRowContext(ctx, query,
		p.TxRef, p.UserID, pq.Array(p.CarIDs), p.Amount, p.Currency, p.Email, p.PhoneNumber,
		p.Status, p.RentalStart, p.RentalEnd, time.Now(), time.Now(),
	).Scan(&p.ID)
}

func (r *paymentRepository) GetByTxRef(ctx context.Context, txRef string) (*domain.PaymentAttempt, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_attempts WHERE tx_ref = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, txRef))
}

func (r *paymentRepository) GetByGatewayID(ctx context.Context, gatewayID int64) (*domain.PaymentAttempt, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_attempts WHERE gateway_transaction_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, gatewayID))
}

func (r *paymentRepository) CommitSuccess(ctx context.Context, tx *sql.Tx, txRef string, gatewayID int64) (bool, error) {
	query := `UPDATE payment_attempts SET status = $1, gateway_transaction_id = $2, updated_on = $3
	          WHERE tx_ref = $4 AND status = $5`
	res, err := tx.ExecContext(ctx, query,
		domain.PaymentStatusSuccessful, gatewayID, time.Now(), txRef, domain.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *paymentRepository) MarkFailed(ctx context.Context, txRef, reason string) (bool, error) {
	query := `UPDATE payment_attempts SET status = $1, failure_reason = $2, updated_on = $3
	          WHERE tx_ref = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query,
		domain.PaymentStatusFailed, reason, time.Now(), txRef, domain.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *paymentRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.PaymentAttempt, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_attempts
	          WHERE status = $1 AND created_on < $2 ORDER BY created_on ASC LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, domain.PaymentStatusPending, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID int64) ([]domain.PaymentAttempt, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_attempts WHERE user_id = $1 ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner, p *domain.PaymentAttempt) error {
	var carIDs pq.Int64Array
	var gatewayID sql.NullInt64
	var reason sql.NullString
	err := row.Scan(&p.ID, &p.TxRef, &p.UserID, &carIDs, &p.Amount, &p.Currency,
		&p.Email, &p.PhoneNumber, &p.Status, &gatewayID, &reason,
		&p.RentalStart, &p.RentalEnd, &p.CreatedOn, &p.UpdatedOn)
	if err != nil {
		return err
	}
	p.CarIDs = []int64(carIDs)
	if gatewayID.Valid {
		p.GatewayTransactionID = &gatewayID.Int64
	}
	if reason.Valid {
		p.FailureReason = reason.String
	}
	return nil
}

func (r *paymentRepository) scanOne(row *sql.Row) (*domain.PaymentAttempt, error) {
	p := &domain.PaymentAttempt{}
	if err := scanPayment(row, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) scanAll(rows *sql.Rows) ([]domain.PaymentAttempt, error) {
	var attempts []domain.PaymentAttempt
	for rows.Next() {
		var p domain.PaymentAttempt
		if err := scanPayment(rows, &p); err != nil {
			return nil, err
		}
		attempts = append(attempts, p)
	}
	return attempts, rows.Err()
}
