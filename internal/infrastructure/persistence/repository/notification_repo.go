package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlite.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// Create inserts a per-recipient notification row.
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (company_id, user_id, document_id, type, payload, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		n.CompanyID, n.UserID, n.DocumentID, n.Type, n.Payload, n.Status)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.Int64("user_id", n.UserID),
			zap.Int64("document_id", n.DocumentID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	n.ID = id
	return nil
}

// MarkSent records successful delivery.
func (r *NotificationRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE notifications SET status = ?, sent_at = ? WHERE id = ?`
	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, entity.NotificationStatusSent, at, id); err != nil {
		return fmt.Errorf("failed to mark notification %d sent: %w", id, err)
	}
	return nil
}

// MarkFailed records a delivery failure on the row.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	query := `UPDATE notifications SET status = ?, error_message = ? WHERE id = ?`
	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, entity.NotificationStatusFailed, errMsg, id); err != nil {
		return fmt.Errorf("failed to mark notification %d failed: %w", id, err)
	}
	return nil
}

// ListByUser returns a user's notifications newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error) {
	query := `
		SELECT id, company_id, user_id, document_id, type, payload, status, error_message, sent_at, created_at
		FROM notifications WHERE user_id = ? ORDER BY id DESC LIMIT ?
	`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		var errorMessage sql.NullString
		var sentAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.CompanyID, &n.UserID, &n.DocumentID, &n.Type,
			&n.Payload, &n.Status, &errorMessage, &sentAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if errorMessage.Valid {
			n.ErrorMessage = errorMessage.String
		}
		if sentAt.Valid {
			n.SentAt = &sentAt.Time
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}
