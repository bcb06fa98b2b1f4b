package auth

import (
	"context"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	LoginWithGoogle(ctx context.Context, email string) (TokenResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, principal user.Principal) (user.UserResponse, error)
	ChangePassword(ctx context.Context, principal user.Principal, req ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error

	// ResolvePrincipal loads the active user behind a verified token subject.
	ResolvePrincipal(ctx context.Context, userID string) (user.Principal, error)
}
