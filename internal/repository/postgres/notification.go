package postgres

import (
	"context"
	"database/sql"
	"time"

	"sigap-backend/internal/domain"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func insertNotification(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, note *domain.Notification) error {
	if note.Status == "" {
		note.Status = domain.SubmissionPending
	}
	query := `INSERT INTO notifications (kind, title, message, recipient_id, sender_id, related_entity_id, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_on, updated_on`
	var createdOn, updatedOn time.Time
	err := q.QueryRowContext(ctx, query, note.Kind, note.Title, note.Message, note.RecipientID,
		note.SenderID, note.RelatedEntityID, note.Status).Scan(&note.ID, &createdOn, &updatedOn)
	if err != nil {
		return err
	}
	note.CreatedOn = createdOn.Format(timestampLayout)
	note.UpdatedOn = updatedOn.Format(timestampLayout)
	return nil
}

func (r *notificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	logger.DatabaseCall("INSERT", "notifications", "recipient_id", note.RecipientID, "kind", note.Kind)
	if err := insertNotification(ctx, r.db, note); err != nil {
		return mapError(err, "notification not found")
	}
	return nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	logger.DatabaseCall("SELECT", "notifications", "recipient_id", userID)
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT n.id, n.kind, n.title, n.message, n.recipient_id, n.sender_id, n.related_entity_id,
	                 n.status, n.is_read, n.created_on, n.updated_on,
	                 COALESCE(u.full_name, ''), COALESCE(u.role, '')
	          FROM notifications n
	          LEFT JOIN users u ON u.id = n.sender_id
	          WHERE n.recipient_id = $1
	          ORDER BY n.created_on DESC
	          LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, mapError(err, "notification not found")
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var senderID, relatedID sql.NullInt64
		var createdOn, updatedOn time.Time
		if err := rows.Scan(&n.ID, &n.Kind, &n.Title, &n.Message, &n.RecipientID, &senderID, &relatedID,
			&n.Status, &n.IsRead, &createdOn, &updatedOn, &n.SenderName, &n.SenderRole); err != nil {
			return nil, mapError(err, "notification not found")
		}
		if senderID.Valid {
			n.SenderID = &senderID.Int64
		}
		if relatedID.Valid {
			n.RelatedEntityID = &relatedID.Int64
		}
		n.CreatedOn = createdOn.Format(timestampLayout)
		n.UpdatedOn = updatedOn.Format(timestampLayout)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// MarkRead only touches rows owned by userID, so a caller can never flip
// another user's notification. Re-marking a read row still succeeds.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	logger.DatabaseCall("UPDATE", "notifications", "id", id, "recipient_id", userID)
	query := `UPDATE notifications SET is_read = TRUE, updated_on = NOW() WHERE id = $1 AND recipient_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return mapError(err, "notification not found")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapError(sql.ErrNoRows, "notification not found")
	}
	return nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	logger.DatabaseCall("SELECT", "notifications", "recipient_id", userID)
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, mapError(err, "notification not found")
	}
	return count, nil
}

func (r *notificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	logger.DatabaseCall("DELETE", "notifications", "cutoff", cutoff)
	query := `DELETE FROM notifications WHERE is_read = TRUE AND created_on < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, mapError(err, "notification not found")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
