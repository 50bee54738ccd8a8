package repository

import (
	"context"
	"database/sql"
	"time"

	"carrental-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type PaymentRepository interface {
	CreatePending(ctx context.Context, attempt *domain.PaymentAttempt) error
	GetByTxRef(ctx context.Context, txRef string) (*domain.PaymentAttempt, error)
	GetByGatewayID(ctx context.Context, gatewayID int64) (*domain.PaymentAttempt, error)

	// CommitSuccess flips the attempt to successful and records the gateway
	// transaction id in a single conditional update guarded by
	// status = 'pending'. It reports whether this caller won the transition;
	// exactly one concurrent caller per tx_ref observes true.
	CommitSuccess(ctx context.Context, tx *sql.Tx, txRef string, gatewayID int64) (bool, error)

	// MarkFailed transitions pending -> failed under the same guard. A false
	// return means the attempt already reached a terminal state.
	MarkFailed(ctx context.Context, txRef, reason string) (bool, error)

	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.PaymentAttempt, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.PaymentAttempt, error)
}

type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) error
	GetByID(ctx context.Context, id int64) (*domain.Car, error)
	Update(ctx context.Context, car *domain.Car) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Car, int32, error)

	// TryOccupy marks one car rented for the given occupant and window. The
	// update is conditional on the car not already being rented, so two racing
	// transactions cannot both claim it. Runs inside the caller's transaction
	// when tx is non-nil.
	TryOccupy(ctx context.Context, tx *sql.Tx, carID, occupant int64, from, to time.Time, amount decimal.Decimal) (bool, error)

	Release(ctx context.Context, carID int64) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, event *domain.NotificationEvent) error
	ListByUser(ctx context.Context, userID int64, limit int32) ([]domain.NotificationEvent, error)
}
