package postgres

import (
	"context"
	"database/sql"

	"carrental-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.PaymentRepository
	repository.CarRepository
	repository.UserRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		PaymentRepository:      NewPaymentRepository(db),
		CarRepository:          NewCarRepository(db),
		UserRepository:         NewUserRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// BeginTx starts a database transaction spanning several repositories, so the
// payment commit and the car occupations land atomically or not at all.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}
