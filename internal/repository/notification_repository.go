package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-admin-api/internal/models"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
)

// NotificationRepository manages notifications and their delivery rows.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository instantiates the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO notifications (id, title, body, audience, batch_id, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, n.ID, n.Title, n.Body, n.Audience, n.BatchID, n.CreatedBy, n.CreatedAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// InsertDeliveries creates one delivery row per recipient, skipping duplicates.
func (r *NotificationRepository) InsertDeliveries(ctx context.Context, notificationID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delivery insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `INSERT INTO notification_deliveries (id, notification_id, user_id, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (notification_id, user_id) DO NOTHING`
	now := time.Now().UTC()
	for _, userID := range userIDs {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), notificationID, userID, now); err != nil {
			return fmt.Errorf("insert delivery for user %s: %w", userID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delivery insert: %w", err)
	}
	return nil
}

// ListForUser returns a user's deliveries joined with notification content.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]models.UserNotification, error) {
	query := `SELECT nd.id AS delivery_id, n.title, n.body, nd.read_at, n.created_at
        FROM notification_deliveries nd
        JOIN notifications n ON n.id = nd.notification_id
        WHERE nd.user_id = $1`
	if unreadOnly {
		query += " AND nd.read_at IS NULL"
	}
	query += " ORDER BY n.created_at DESC LIMIT 100"

	var rows []models.UserNotification
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("query user notifications: %w", err)
	}
	return rows, nil
}

// MarkRead stamps a delivery as read for the owning user.
func (r *NotificationRepository) MarkRead(ctx context.Context, deliveryID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE notification_deliveries SET read_at = $1 WHERE id = $2 AND user_id = $3 AND read_at IS NULL",
		time.Now().UTC(), deliveryID, userID)
	if err != nil {
		return fmt.Errorf("mark delivery read: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "delivery not found or already read")
	}
	return nil
}
