package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/config"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

var (
	employee = user.Principal{UserID: "6a1e8f00-0000-4000-8000-000000000001", Email: "eka@example.com", FullName: "Eka", Role: user.RoleEmployee}
	manager  = user.Principal{UserID: "6a1e8f00-0000-4000-8000-000000000002", Email: "maya@example.com", FullName: "Maya", Role: user.RoleManager}
	hrStaff  = user.Principal{UserID: "6a1e8f00-0000-4000-8000-000000000003", Email: "hana@example.com", FullName: "Hana", Role: user.RoleHR}
)

type principals map[string]user.Principal

func (p principals) ResolvePrincipal(_ context.Context, userID string) (user.Principal, error) {
	principal, ok := p[userID]
	if !ok {
		return user.Principal{}, user.ErrAccountDisabled
	}
	return principal, nil
}

type stubLeave struct {
	leave.LeaveService
	submitted *leave.SubmitLeaveRequest
	submitErr error
}

func (s *stubLeave) Submit(_ context.Context, p user.Principal, req leave.SubmitLeaveRequest) (leave.RequestResponse, error) {
	if s.submitErr != nil {
		return leave.RequestResponse{}, s.submitErr
	}
	s.submitted = &req
	return leave.RequestResponse{ID: "leave-1", EmployeeID: p.UserID, Type: leave.Type(req.Type), Status: leave.StatusPending}, nil
}

func (s *stubLeave) List(_ context.Context, filter leave.LeaveRequestFilter) (leave.ListRequestResponse, error) {
	return leave.ListRequestResponse{Requests: []leave.RequestResponse{}, TotalCount: 45, Page: filter.Page, Limit: filter.Limit}, nil
}

type testServer struct {
	router *chi.Mux
	jwt    jwt.Service
}

func defaultHandlers(jwtService jwt.Service) Handlers {
	return Handlers{
		Auth:         NewAuthHandler(jwtService, nil, nil, "http://localhost:3000", false),
		User:         NewUserHandler(nil),
		Organization: NewOrganizationHandler(nil),
		Attendance:   NewAttendanceHandler(nil),
		Leave:        NewLeaveHandler(nil),
		Overtime:     NewOvertimeHandler(nil),
		Salary:       NewSalaryHandler(nil),
		Notification: NewNotificationHandler(nil, jwtService),
		Team:         NewTeamHandler(nil),
		Calendar:     NewCalendarHandler(nil),
	}
}

func newJWT() jwt.Service {
	return jwt.NewJWTService(config.JWTConfig{Secret: handlerTestSecret, AccessExpiration: "1h", CookieName: "hrm_token"})
}

func newTestServer(t *testing.T, configure func(*Handlers), limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	return newTestServerWithJWT(t, newJWT(), configure, limiter)
}

func newTestServerWithJWT(t *testing.T, jwtService jwt.Service, configure func(*Handlers), limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	handlers := defaultHandlers(jwtService)
	if configure != nil {
		configure(&handlers)
	}
	router := NewRouter(RouterConfig{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Env:         "test",
		CORSOrigins: []string{"http://localhost:3000"},
		StartedAt:   time.Now(),
		JWTService:  jwtService,
		Principals:  principals{employee.UserID: employee, manager.UserID: manager, hrStaff.UserID: hrStaff},
		RateLimiter: limiter,
	}, handlers)
	return &testServer{router: router, jwt: jwtService}
}

func (s *testServer) token(t *testing.T, p user.Principal) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(p.UserID, p.Email, p.Role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta map[string]any `json:"meta"`
}

func (e envelope) object(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(e.Data, &out))
	return out
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w := s.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.True(t, env.Success)
	data := env.object(t)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "test", data["environment"])
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, func(h *Handlers) { h.Leave = NewLeaveHandler(&stubLeave{}) }, nil)

	t.Run("missing token", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/leave/submit", map[string]any{}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, decode(t, w).Success)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/leave/submit", map[string]any{}, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("sse token is not an access token", func(t *testing.T) {
		sseToken, _, err := s.jwt.GenerateSSEToken(employee.UserID)
		require.NoError(t, err)
		w := s.do(t, http.MethodPost, "/api/leave/submit", map[string]any{}, sseToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown or disabled user", func(t *testing.T) {
		token, _, err := s.jwt.GenerateAccessToken("6a1e8f00-0000-4000-8000-0000000000ff", "ghost@example.com", user.RoleAdmin)
		require.NoError(t, err)
		w := s.do(t, http.MethodPost, "/api/leave/submit", map[string]any{}, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		token := s.token(t, employee)
		s.jwt.RevokeToken(token, time.Now().Add(time.Hour).Unix())
		w := s.do(t, http.MethodPost, "/api/leave/submit", map[string]any{}, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "token has been revoked", decode(t, w).Error.Message)
	})

	t.Run("cookie token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/leave/admin", nil)
		req.AddCookie(&http.Cookie{Name: "hrm_token", Value: s.token(t, manager)})
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRoleGate(t *testing.T) {
	s := newTestServer(t, func(h *Handlers) { h.Leave = NewLeaveHandler(&stubLeave{}) }, nil)

	w := s.do(t, http.MethodGet, "/api/leave/admin?page=2", nil, s.token(t, employee))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Insufficient permissions", decode(t, w).Error.Message)

	w = s.do(t, http.MethodGet, "/api/leave/admin?page=2", nil, s.token(t, manager))
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.EqualValues(t, 2, env.Meta["page"])
	assert.EqualValues(t, 45, env.Meta["total_items"])
	assert.EqualValues(t, 3, env.Meta["total_pages"])

	w = s.do(t, http.MethodPut, "/api/leave/admin/policies/annual", map[string]any{"maxDaysPerYear": 12}, s.token(t, manager))
	assert.Equal(t, http.StatusForbidden, w.Code, "policies need admin or hr")
}

func TestLeaveSubmit(t *testing.T) {
	leaves := &stubLeave{}
	s := newTestServer(t, func(h *Handlers) { h.Leave = NewLeaveHandler(leaves) }, nil)
	token := s.token(t, employee)

	t.Run("created", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/leave/submit", map[string]any{
			"type": "annual", "startDate": "2026-03-02", "endDate": "2026-03-04", "reason": "Family trip",
		}, token)
		require.Equal(t, http.StatusCreated, w.Code)
		data := decode(t, w).object(t)
		assert.Equal(t, "pending", data["status"])
		assert.Equal(t, employee.UserID, data["employeeId"])
		require.NotNil(t, leaves.submitted)
	})

	t.Run("validation details", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/leave/submit", map[string]any{
			"type": "vacation", "startDate": "2026-03-02", "endDate": "2026-03-04", "reason": "x",
		}, token)
		require.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Equal(t, "type must be one of: annual, sick, personal, maternity, paternity, unpaid", env.Error.Message)
		assert.Contains(t, env.Error.Details, "type")
	})

	t.Run("missing start date", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/leave/submit", map[string]any{
			"type": "annual", "endDate": "2026-03-04", "reason": "Family trip",
		}, token)
		require.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, "startDate is required", env.Error.Message)
		assert.Equal(t, "startDate is required", env.Error.Details["startDate"])
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/leave/submit", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("business rule", func(t *testing.T) {
		leaves.submitErr = leave.ErrInsufficientBalance
		defer func() { leaves.submitErr = nil }()

		w := s.do(t, http.MethodPost, "/api/leave/submit", map[string]any{
			"type": "annual", "startDate": "2026-03-02", "endDate": "2026-03-04", "reason": "Family trip",
		}, token)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, leave.ErrInsufficientBalance.Error(), decode(t, w).Error.Message)
	})
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, nil, middleware.NewRateLimiter(60, 2))

	for range 2 {
		w := s.do(t, http.MethodPost, "/api/auth/login", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "empty body reaches the handler")
	}
	w := s.do(t, http.MethodPost, "/api/auth/login", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
