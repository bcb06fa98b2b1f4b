package notification

import (
	"context"
	"time"
)

type NotificationRepository interface {
	// Create stores the notification together with its recipient rows.
	Create(ctx context.Context, n Notification) (Notification, error)
	GetByID(ctx context.Context, id string) (Notification, error)

	// ListForUser returns delivered, active, unexpired notifications addressed to userID, newest first.
	ListForUser(ctx context.Context, userID string, filter InboxFilter, now time.Time) ([]InboxItem, int64, error)
	UnreadCount(ctx context.Context, userID string, now time.Time) (int64, error)

	// MarkRead returns ErrNotificationNotFound when userID is not a recipient.
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	DeleteForUser(ctx context.Context, id, userID string) error

	// ListDue returns undelivered active notifications whose schedule has passed.
	ListDue(ctx context.Context, now time.Time, limit int) ([]Notification, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	// Expire deactivates notifications whose expiry is at or before now.
	Expire(ctx context.Context, now time.Time) (int64, error)
}

type FCMTokenRepository interface {
	Upsert(ctx context.Context, token FCMToken) (FCMToken, error)
	Delete(ctx context.Context, userID, token string) error
	ListByUserIDs(ctx context.Context, userIDs []string) ([]FCMToken, error)
	DeleteTokens(ctx context.Context, tokens []string) error
}
