package user

import (
	"context"
	"time"
)

type UserRepository interface {
	Create(ctx context.Context, newUser User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	Update(ctx context.Context, u User) (User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetOTP(ctx context.Context, userID string, secret *string, expiresAt *time.Time) error
	SetDisabled(ctx context.Context, userID string, disabled bool) error
	SoftDelete(ctx context.Context, userID string) error

	// ListActiveIDsByRoles returns ids of active users holding any of roles; no roles means everyone.
	ListActiveIDsByRoles(ctx context.Context, roles ...Role) ([]string, error)
}
