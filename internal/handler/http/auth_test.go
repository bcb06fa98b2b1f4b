package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth issues real tokens for a fixed password and revokes through the jwt service.
type fakeAuth struct {
	auth.AuthService
	jwt        jwt.Service
	loggedOut  string
	forgotFor  string
	changedFor string
}

func (f *fakeAuth) Login(_ context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if req.Email != employee.Email || req.Password != "correct-horse" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	token, exp, err := f.jwt.GenerateAccessToken(employee.UserID, employee.Email, employee.Role)
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return auth.TokenResponse{Token: token, UserID: employee.UserID, ExpiresAt: exp}, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.loggedOut = token
	f.jwt.RevokeToken(token, time.Now().Add(time.Hour).Unix())
	return nil
}

func (f *fakeAuth) Me(_ context.Context, p user.Principal) (user.UserResponse, error) {
	return user.UserResponse{ID: p.UserID, Email: p.Email, FullName: p.FullName, Role: p.Role}, nil
}

func (f *fakeAuth) ForgotPassword(_ context.Context, req auth.ForgotPasswordRequest) error {
	f.forgotFor = req.Email
	return nil
}

func (f *fakeAuth) ChangePassword(_ context.Context, p user.Principal, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.CurrentPassword != "correct-horse" {
		return auth.ErrWrongPassword
	}
	f.changedFor = p.UserID
	return nil
}

func newAuthServer(t *testing.T) (*testServer, *fakeAuth) {
	t.Helper()
	jwtService := newJWT()
	fake := &fakeAuth{jwt: jwtService}
	s := newTestServerWithJWT(t, jwtService, func(h *Handlers) {
		h.Auth = NewAuthHandler(jwtService, fake, nil, "http://localhost:3000", false)
	}, nil)
	return s, fake
}

func TestAuthHandler_Login(t *testing.T) {
	s, _ := newAuthServer(t)

	t.Run("success sets cookie", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": employee.Email, "password": "correct-horse"}, "")
		require.Equal(t, http.StatusOK, w.Code)

		data := decode(t, w).object(t)
		assert.NotEmpty(t, data["token"])
		assert.Equal(t, employee.UserID, data["userId"])

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "hrm_token", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, data["token"], cookies[0].Value)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": employee.Email, "password": "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, auth.ErrInvalidCredentials.Error(), decode(t, w).Error.Message)
	})

	t.Run("invalid email", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "not-an-email", "password": "x"}, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Contains(t, env.Error.Details, "email")
	})
}

func TestAuthHandler_LogoutRevokesToken(t *testing.T) {
	s, fake := newAuthServer(t)
	token := s.token(t, employee)

	w := s.do(t, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, employee.Email, decode(t, w).object(t)["email"])

	w = s.do(t, http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, token, fake.loggedOut)

	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Negative(t, cleared[0].MaxAge)

	w = s.do(t, http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Passwords(t *testing.T) {
	s, fake := newAuthServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "someone@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "someone@example.com", fake.forgotFor)

	token := s.token(t, employee)
	w = s.do(t, http.MethodPut, "/api/auth/password", map[string]string{"currentPassword": "wrong", "newPassword": "brand-new-pass"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/auth/password", map[string]string{"currentPassword": "correct-horse", "newPassword": "short"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)

	w = s.do(t, http.MethodPut, "/api/auth/password", map[string]string{"currentPassword": "correct-horse", "newPassword": "brand-new-pass"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, employee.UserID, fake.changedFor)
}
