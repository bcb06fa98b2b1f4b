package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAttendance struct {
	attendance.AttendanceService
	mu        sync.Mutex
	checkedIn map[string]bool
}

func (s *stubAttendance) CheckIn(_ context.Context, p user.Principal, req attendance.CheckRequest) (attendance.AttendanceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkedIn[p.UserID] {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	}
	s.checkedIn[p.UserID] = true
	return attendance.AttendanceResponse{
		ID:         "att-1",
		EmployeeID: p.UserID,
		WorkDate:   "2026-01-15",
		State:      attendance.StateCheckedIn,
		CheckIn:    &attendance.EntryResponse{Time: "2026-01-15T08:00:00Z", ImageURL: "attendance/att-1.jpg", Location: req.Location},
	}, nil
}

// approvals keeps leave requests in memory so the approve/reject lifecycle runs through the router.
type approvals struct {
	stubLeave
	mu       sync.Mutex
	statuses map[string]leave.Status
}

func (s *approvals) Approve(_ context.Context, p user.Principal, requestID string) (leave.RequestResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[requestID]
	if !ok {
		return leave.RequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	if status != leave.StatusPending {
		return leave.RequestResponse{}, leave.ErrAlreadyProcessed
	}
	s.statuses[requestID] = leave.StatusApproved
	approvedAt := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
	return leave.RequestResponse{ID: requestID, Status: leave.StatusApproved, ApprovedBy: &p.UserID, ApprovedAt: &approvedAt}, nil
}

func (s *approvals) Reject(_ context.Context, _ user.Principal, req leave.RejectLeaveRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statuses[req.ID] != leave.StatusPending {
		return leave.RequestResponse{}, leave.ErrAlreadyProcessed
	}
	s.statuses[req.ID] = leave.StatusRejected
	return leave.RequestResponse{ID: req.ID, Status: leave.StatusRejected, RejectionReason: &req.RejectionReason}, nil
}

type stubOvertime struct {
	overtime.OvertimeService
	mu    sync.Mutex
	dates map[string]bool
}

func (s *stubOvertime) Submit(_ context.Context, p user.Principal, req overtime.SubmitOvertimeRequest) (overtime.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RequestResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := p.UserID + "/" + req.Date
	if s.dates[key] {
		return overtime.RequestResponse{}, overtime.ErrDuplicateDate
	}
	s.dates[key] = true

	_, hours := req.Derived()
	return overtime.RequestResponse{
		ID:         "ot-1",
		EmployeeID: p.UserID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Hours:      hours,
		Type:       overtime.Type(req.Type),
		Status:     overtime.StatusPending,
	}, nil
}

func checkInRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("location", `{"latitude":-6.2,"longitude":106.8,"address":"Jakarta"}`))
	part, err := form.CreateFormFile("image", "selfie.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/attendance/check-in", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAttendanceCheckIn(t *testing.T) {
	attendances := &stubAttendance{checkedIn: make(map[string]bool)}
	s := newTestServer(t, func(h *Handlers) { h.Attendance = NewAttendanceHandler(attendances) }, nil)
	token := s.token(t, employee)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, checkInRequest(t, token))
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).object(t)
	assert.Equal(t, "checked_in", data["state"])
	assert.NotNil(t, data["checkIn"])
	assert.Nil(t, data["checkOut"])

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, checkInRequest(t, token))
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, attendance.ErrAlreadyCheckedIn.Error(), env.Error.Message)
}

func TestAttendanceCheckIn_MissingImage(t *testing.T) {
	s := newTestServer(t, func(h *Handlers) {
		h.Attendance = NewAttendanceHandler(&stubAttendance{checkedIn: make(map[string]bool)})
	}, nil)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("location", `{"latitude":-6.2,"longitude":106.8,"address":"Jakarta"}`))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/attendance/check-in", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(t, employee))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeaveApproval(t *testing.T) {
	leaves := &approvals{statuses: map[string]leave.Status{"leave-1": leave.StatusPending, "leave-2": leave.StatusPending}}
	s := newTestServer(t, func(h *Handlers) { h.Leave = NewLeaveHandler(leaves) }, nil)
	token := s.token(t, hrStaff)

	t.Run("approve then approve again", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/leave/admin/leave-1/approve", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w).object(t)
		assert.Equal(t, "approved", data["status"])
		assert.Equal(t, hrStaff.UserID, data["approvedBy"])
		assert.NotEmpty(t, data["approvedAt"])

		w = s.do(t, http.MethodPut, "/api/leave/admin/leave-1/approve", nil, token)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, leave.ErrAlreadyProcessed.Error(), decode(t, w).Error.Message)
	})

	t.Run("reject without reason leaves request pending", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/leave/admin/leave-2/reject", map[string]string{}, token)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, leave.ErrRejectionReasonRequired.Error(), decode(t, w).Error.Message)
		assert.Equal(t, leave.StatusPending, leaves.statuses["leave-2"])

		w = s.do(t, http.MethodPut, "/api/leave/admin/leave-2/reject", map[string]string{"rejectionReason": "   "}, token)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, leave.StatusPending, leaves.statuses["leave-2"])

		w = s.do(t, http.MethodPut, "/api/leave/admin/leave-2/reject", map[string]string{"rejectionReason": "Peak season"}, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "rejected", decode(t, w).object(t)["status"])
	})

	t.Run("employees cannot approve", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/leave/admin/leave-1/approve", nil, s.token(t, employee))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestOvertimeSubmit(t *testing.T) {
	overtimes := &stubOvertime{dates: make(map[string]bool)}
	s := newTestServer(t, func(h *Handlers) { h.Overtime = NewOvertimeHandler(overtimes) }, nil)
	token := s.token(t, employee)

	body := map[string]string{
		"date": "2026-01-15", "startTime": "18:00", "endTime": "22:00", "reason": "Release", "type": "regular",
	}

	w := s.do(t, http.MethodPost, "/api/overtime/submit", body, token)
	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w).object(t)
	assert.EqualValues(t, 4, data["hours"])
	assert.Equal(t, "pending", data["status"])

	w = s.do(t, http.MethodPost, "/api/overtime/submit", body, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, overtime.ErrDuplicateDate.Error(), decode(t, w).Error.Message)

	t.Run("bad clock format", func(t *testing.T) {
		raw, err := json.Marshal(map[string]string{
			"date": "2026-01-16", "startTime": "6pm", "endTime": "22:00", "reason": "Release", "type": "regular",
		})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/overtime/submit", bytes.NewReader(raw))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Contains(t, env.Error.Details, "startTime")
	})
}
