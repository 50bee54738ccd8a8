package postgres

import (
	"context"
	"database/sql"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, e *domain.NotificationEvent) error {
	query := `INSERT INTO notification_events (user_id, channel, recipient, subject, body, status, provider, detail, sent_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	var userID sql.NullInt64
	if e.UserID != nil {
		userID = sql.NullInt64{Int64: *e.UserID, Valid: true}
	}
	return r.db.QueryRowContext(ctx, query,
		userID, e.Channel, e.Recipient, e.Subject, e.Body, e.Status, e.Provider, e.Detail, e.SentOn,
	).Scan(&e.ID)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, limit int32) ([]domain.NotificationEvent, error) {
	query := `SELECT id, user_id, channel, recipient, subject, body, status, provider, detail, sent_on
	          FROM notification_events WHERE user_id = $1 ORDER BY sent_on DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.NotificationEvent
	for rows.Next() {
		var e domain.NotificationEvent
		var uid sql.NullInt64
		if err := rows.Scan(&e.ID, &uid, &e.Channel, &e.Recipient, &e.Subject, &e.Body, &e.Status, &e.Provider, &e.Detail, &e.SentOn); err != nil {
			return nil, err
		}
		if uid.Valid {
			e.UserID = &uid.Int64
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
