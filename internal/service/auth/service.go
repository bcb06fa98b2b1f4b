package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
)

const otpIssuer = "HRM"

type AuthServiceImpl struct {
	user.UserRepository
	jwt.Service
	email email.EmailService
	now   func() time.Time
}

func NewAuthService(userRepository user.UserRepository, jwtService jwt.Service, emailService email.EmailService) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository: userRepository,
		Service:        jwtService,
		email:          emailService,
		now:            time.Now,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func passwordMatches(u user.User, password string) bool {
	if u.PasswordHash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) == nil
}

func (a *AuthServiceImpl) issueToken(u user.User) (auth.TokenResponse, error) {
	token, expiresAt, err := a.Service.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return auth.TokenResponse{
		Token:     token,
		UserID:    u.ID,
		ExpiresAt: expiresAt,
		User:      user.ToResponse(u),
	}, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	u, err := a.UserRepository.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if u.IsDeleted || !passwordMatches(u, req.Password) {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if u.IsDisabled {
		return auth.TokenResponse{}, user.ErrAccountDisabled
	}

	return a.issueToken(u)
}

// LoginWithGoogle implements auth.AuthService. Only existing accounts may sign in this way.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, email string) (auth.TokenResponse, error) {
	u, err := a.UserRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrOAuthAccountAbsent
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if u.IsDeleted {
		return auth.TokenResponse{}, auth.ErrOAuthAccountAbsent
	}
	if u.IsDisabled {
		return auth.TokenResponse{}, user.ErrAccountDisabled
	}

	return a.issueToken(u)
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	parsed, err := a.Service.JWTAuth().Decode(token)
	if err != nil {
		return auth.ErrInvalidToken
	}
	a.Service.RevokeToken(token, parsed.Expiration().Unix())
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, principal user.Principal) (user.UserResponse, error) {
	u, err := a.UserRepository.GetByID(ctx, principal.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// ChangePassword implements auth.AuthService.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, principal user.Principal, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.CurrentPassword == req.NewPassword {
		return auth.ErrSamePassword
	}

	u, err := a.UserRepository.GetByID(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if !passwordMatches(u, req.CurrentPassword) {
		return auth.ErrWrongPassword
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return a.UserRepository.UpdatePassword(ctx, u.ID, hash)
}

// ForgotPassword implements auth.AuthService. Unknown or inactive emails succeed silently
// so the endpoint cannot be used to probe accounts.
func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := a.UserRepository.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if !u.Active() {
		return nil
	}

	secret, err := otp.NewSecret(otpIssuer, u.Email)
	if err != nil {
		return err
	}
	issuedAt := a.now()
	code, err := otp.Code(secret, issuedAt)
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	expiresAt := issuedAt.Add(otp.Period)
	if err := a.UserRepository.SetOTP(ctx, u.ID, &secret, &expiresAt); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := a.email.SendPasswordResetOTP(u.Email, u.FullName, code, otp.Period); err != nil {
		slog.Error("failed to send password reset otp", "user_id", u.ID, "error", err)
		return fmt.Errorf("failed to send reset code: %w", err)
	}
	return nil
}

// ResetPassword implements auth.AuthService. The code is checked at its issue time, so it
// stays valid for a full period after ForgotPassword regardless of TOTP window alignment.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := a.UserRepository.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.ErrInvalidOTP
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if !u.Active() || u.OTPSecret == nil || u.OTPExpiresAt == nil {
		return auth.ErrInvalidOTP
	}
	if !a.now().Before(*u.OTPExpiresAt) {
		return auth.ErrInvalidOTP
	}
	if !otp.Valid(req.OTP, *u.OTPSecret, u.OTPExpiresAt.Add(-otp.Period)) {
		return auth.ErrInvalidOTP
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	// UpdatePassword also clears the otp, so a code works once
	return a.UserRepository.UpdatePassword(ctx, u.ID, hash)
}

// ResolvePrincipal implements auth.AuthService.
func (a *AuthServiceImpl) ResolvePrincipal(ctx context.Context, userID string) (user.Principal, error) {
	u, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return user.Principal{}, err
	}
	if u.IsDeleted {
		return user.Principal{}, user.ErrUserNotFound
	}
	if u.IsDisabled {
		return user.Principal{}, user.ErrAccountDisabled
	}
	return u.Principal(), nil
}
