package repository

import (
	"context"
	"time"

	models "flightguard/internal"

	"github.com/google/uuid"
)

type NotificationRepository struct {
	db DBConn
}

func NewNotificationRepository(db DBConn) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	query := `
        INSERT INTO notifications (id, user_id, kind, subject, body, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.db.Exec(ctx, query, n.ID, n.UserID, n.Kind, n.Subject, n.Body, n.CreatedAt)
	return err
}
