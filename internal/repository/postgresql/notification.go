package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `
	n.id, n.title, n.message, n.type, n.priority, n.sender_id, n.data,
	n.scheduled_at, n.expires_at, n.sent_at, n.is_active, n.created_at`

// visibleToRecipient limits rows to what an inbox may show at $2.
const visibleToRecipient = `n.sent_at IS NOT NULL AND n.is_active AND (n.expires_at IS NULL OR n.expires_at > $2)`

func scanNotification(row pgx.Row, extra ...any) (notification.Notification, error) {
	var n notification.Notification
	var data []byte
	dest := []any{
		&n.ID,
		&n.Title,
		&n.Message,
		&n.Type,
		&n.Priority,
		&n.SenderID,
		&data,
		&n.ScheduledAt,
		&n.ExpiresAt,
		&n.SentAt,
		&n.IsActive,
		&n.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notification.Notification{}, notification.ErrNotificationNotFound
		}
		return notification.Notification{}, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return notification.Notification{}, fmt.Errorf("failed to unmarshal notification data: %w", err)
		}
	}
	return n, nil
}

func recipientsFromIDs(ids []string) []notification.Recipient {
	recipients := make([]notification.Recipient, len(ids))
	for i, id := range ids {
		recipients[i] = notification.Recipient{UserID: id}
	}
	return recipients
}

// Create inserts the notification and its recipient rows atomically.
func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	var dataJSON []byte
	if n.Data != nil {
		var err error
		if dataJSON, err = json.Marshal(n.Data); err != nil {
			return notification.Notification{}, fmt.Errorf("failed to marshal notification data: %w", err)
		}
	}

	recipientIDs := n.RecipientIDs()
	var created notification.Notification
	err := inTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		query := `
			INSERT INTO notifications AS n (id, title, message, type, priority, sender_id, data, scheduled_at, expires_at, sent_at, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
			RETURNING ` + notificationColumns

		var err error
		created, err = scanNotification(q.QueryRow(ctx, query,
			n.ID,
			n.Title,
			n.Message,
			n.Type,
			n.Priority,
			n.SenderID,
			dataJSON,
			n.ScheduledAt,
			n.ExpiresAt,
			n.SentAt,
		))
		if err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}

		_, err = q.Exec(ctx, `
			INSERT INTO notification_recipients (notification_id, user_id)
			SELECT $1, UNNEST($2::uuid[])
			ON CONFLICT DO NOTHING`, created.ID, recipientIDs)
		if err != nil {
			return fmt.Errorf("failed to create notification recipients: %w", err)
		}
		return nil
	})
	if err != nil {
		return notification.Notification{}, err
	}

	created.Recipients = recipientsFromIDs(recipientIDs)
	return created, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	n, err := scanNotification(q.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications n WHERE n.id = $1`, id))
	if err != nil {
		return notification.Notification{}, err
	}

	rows, err := q.Query(ctx, `
		SELECT user_id, is_read, read_at FROM notification_recipients
		WHERE notification_id = $1 ORDER BY user_id`, id)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("failed to load notification recipients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rc notification.Recipient
		if err := rows.Scan(&rc.UserID, &rc.IsRead, &rc.ReadAt); err != nil {
			return notification.Notification{}, err
		}
		n.Recipients = append(n.Recipients, rc)
	}
	return n, rows.Err()
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string, filter notification.InboxFilter, now time.Time) ([]notification.InboxItem, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := `WHERE nr.user_id = $1 AND ` + visibleToRecipient
	if filter.UnreadOnly {
		where += ` AND NOT nr.is_read`
	}

	var total int64
	countQuery := `
		SELECT COUNT(*) FROM notification_recipients nr
		JOIN notifications n ON n.id = nr.notification_id ` + where
	if err := q.QueryRow(ctx, countQuery, userID, now).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	query := `
		SELECT ` + notificationColumns + `, nr.is_read, nr.read_at
		FROM notification_recipients nr
		JOIN notifications n ON n.id = nr.notification_id
		` + where + `
		ORDER BY COALESCE(n.sent_at, n.created_at) DESC, n.id DESC
		LIMIT $3 OFFSET $4`

	rows, err := q.Query(ctx, query, userID, now, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]notification.InboxItem, 0)
	for rows.Next() {
		var item notification.InboxItem
		n, err := scanNotification(rows, &item.IsRead, &item.ReadAt)
		if err != nil {
			return nil, 0, err
		}
		item.Notification = n
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID string, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM notification_recipients nr
		JOIN notifications n ON n.id = nr.notification_id
		WHERE nr.user_id = $1 AND NOT nr.is_read AND `+visibleToRecipient, userID, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead keeps the first read_at when called twice.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE notification_recipients
		SET is_read = TRUE, read_at = COALESCE(read_at, $3)
		WHERE notification_id = $1 AND user_id = $2`, id, userID, at)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE notification_recipients
		SET is_read = TRUE, read_at = $2
		WHERE user_id = $1 AND NOT is_read`, userID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteForUser removes only the caller's recipient row; other recipients keep the notification.
func (r *notificationRepository) DeleteForUser(ctx context.Context, id, userID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM notification_recipients WHERE notification_id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + notificationColumns + `,
			ARRAY(SELECT nr.user_id::text FROM notification_recipients nr WHERE nr.notification_id = n.id)
		FROM notifications n
		WHERE n.sent_at IS NULL AND n.is_active
			AND (n.scheduled_at IS NULL OR n.scheduled_at <= $1)
			AND (n.expires_at IS NULL OR n.expires_at > $1)
		ORDER BY n.scheduled_at NULLS FIRST, n.id
		LIMIT $2`

	rows, err := q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}
	defer rows.Close()

	due := make([]notification.Notification, 0)
	for rows.Next() {
		var recipientIDs []string
		n, err := scanNotification(rows, &recipientIDs)
		if err != nil {
			return nil, err
		}
		n.Recipients = recipientsFromIDs(recipientIDs)
		due = append(due, n)
	}
	return due, rows.Err()
}

func (r *notificationRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE notifications SET sent_at = $2 WHERE id = $1 AND sent_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) Expire(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE notifications SET is_active = FALSE
		WHERE is_active AND expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

type fcmTokenRepository struct {
	db *database.DB
}

func NewFCMTokenRepository(db *database.DB) notification.FCMTokenRepository {
	return &fcmTokenRepository{db: db}
}

const fcmTokenColumns = `id, user_id, token, COALESCE(device_type, ''), created_at, last_used_at`

func scanFCMToken(row pgx.Row) (notification.FCMToken, error) {
	var t notification.FCMToken
	if err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.DeviceType, &t.CreatedAt, &t.LastUsedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notification.FCMToken{}, notification.ErrFCMTokenNotFound
		}
		return notification.FCMToken{}, err
	}
	return t, nil
}

// Upsert moves a token to the latest user that registered it.
func (r *fcmTokenRepository) Upsert(ctx context.Context, token notification.FCMToken) (notification.FCMToken, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO fcm_tokens (id, user_id, token, device_type)
		VALUES (uuidv7(), $1, $2, NULLIF($3, ''))
		ON CONFLICT ON CONSTRAINT uq_fcm_tokens_token DO UPDATE
		SET user_id = EXCLUDED.user_id, device_type = EXCLUDED.device_type, last_used_at = NOW()
		RETURNING ` + fcmTokenColumns

	return scanFCMToken(q.QueryRow(ctx, query, token.UserID, token.Token, token.DeviceType))
}

func (r *fcmTokenRepository) Delete(ctx context.Context, userID, token string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM fcm_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	if err != nil {
		return fmt.Errorf("failed to delete fcm token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrFCMTokenNotFound
	}
	return nil
}

func (r *fcmTokenRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]notification.FCMToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+fcmTokenColumns+` FROM fcm_tokens WHERE user_id = ANY($1::uuid[])`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list fcm tokens: %w", err)
	}
	defer rows.Close()

	tokens := make([]notification.FCMToken, 0)
	for rows.Next() {
		t, err := scanFCMToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *fcmTokenRepository) DeleteTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM fcm_tokens WHERE token = ANY($1)`, tokens); err != nil {
		return fmt.Errorf("failed to delete fcm tokens: %w", err)
	}
	return nil
}
