package notification

import (
	"context"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
)

// Notifier is the fire-and-forget entry point other services use. It never reports failure;
// delivery problems are logged by the implementation.
type Notifier interface {
	Notify(ctx context.Context, req NotifyRequest)
}

type NotificationService interface {
	Notifier

	Create(ctx context.Context, principal user.Principal, req CreateNotificationRequest) (NotificationResponse, error)
	List(ctx context.Context, principal user.Principal, filter InboxFilter) (ListNotificationResponse, error)
	UnreadCount(ctx context.Context, principal user.Principal) (int64, error)
	MarkRead(ctx context.Context, principal user.Principal, notificationID string) error
	MarkAllRead(ctx context.Context, principal user.Principal) (int64, error)
	Delete(ctx context.Context, principal user.Principal, notificationID string) error

	RegisterToken(ctx context.Context, principal user.Principal, req RegisterTokenRequest) error
	UnregisterToken(ctx context.Context, principal user.Principal, req UnregisterTokenRequest) error

	// DispatchDue delivers scheduled notifications whose time has come.
	DispatchDue(ctx context.Context) (int, error)
	// ExpireStale deactivates notifications past their expiry.
	ExpireStale(ctx context.Context) (int64, error)

	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	Stop()
}
