package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/pandamarket/apiserver/types"
)

// NotificationRepository handles persistence for notifications.
type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch inserts all notifications in a single transaction. Either
// every row commits or none does; there is no partial batch.
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []types.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO notifications (user_id, type, payload, created_at)
		VALUES ($1, $2, $3, $4)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, notification := range notifications {
		payloadJSON, err := json.Marshal(notification.Payload)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(
			ctx,
			notification.UserID,
			notification.Type,
			payloadJSON,
			now,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]types.Notification, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM notifications WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, user_id, type, payload, read_at, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := make([]types.Notification, 0, limit)
	for rows.Next() {
		var notification types.Notification
		var payloadJSON []byte
		if err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.Type,
			&payloadJSON,
			&notification.ReadAt,
			&notification.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal(payloadJSON, &notification.Payload)
		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	const query = `SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND read_at IS NULL`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NotificationRepository) Get(ctx context.Context, id int64) (types.Notification, error) {
	const query = `
		SELECT id, user_id, type, payload, read_at, created_at
		FROM notifications
		WHERE id = $1`
	var notification types.Notification
	var payloadJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&notification.ID,
		&notification.UserID,
		&notification.Type,
		&payloadJSON,
		&notification.ReadAt,
		&notification.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Notification{}, ErrNotFound
		}
		return types.Notification{}, err
	}
	_ = json.Unmarshal(payloadJSON, &notification.Payload)
	return notification, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, readAt time.Time) error {
	const query = `
		UPDATE notifications
		SET read_at = $1
		WHERE id = $2 AND read_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, readAt, id)
	if err != nil {
		return err
	}
	// Zero rows means either a missing notification or one already read;
	// Get distinguishes the two for the caller.
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
