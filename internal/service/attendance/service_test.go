package attendance

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/file"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryAttendance keeps the same slot rules as the postgres repository.
type memoryAttendance struct {
	mu      sync.Mutex
	records map[string]attendance.Attendance
	inserts int
}

func newMemoryAttendance() *memoryAttendance {
	return &memoryAttendance{records: make(map[string]attendance.Attendance)}
}

func key(employeeID string, workDate time.Time) string {
	return employeeID + "/" + workDate.Format(validator.DateLayout)
}

func (m *memoryAttendance) GetByEmployeeAndDate(_ context.Context, employeeID string, workDate time.Time) (attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key(employeeID, workDate)]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return rec, nil
}

func (m *memoryAttendance) RecordCheckIn(_ context.Context, employeeID string, workDate time.Time, entry attendance.Entry) (attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(employeeID, workDate)
	rec, ok := m.records[k]
	if ok && rec.CheckIn != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
	}
	if !ok {
		m.inserts++
		rec = attendance.Attendance{ID: k, EmployeeID: employeeID, WorkDate: workDate, CreatedAt: entry.At}
	}
	rec.CheckIn = &entry
	rec.UpdatedAt = entry.At
	m.records[k] = rec
	return rec, nil
}

func (m *memoryAttendance) RecordCheckOut(_ context.Context, employeeID string, workDate time.Time, entry attendance.Entry) (attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(employeeID, workDate)
	rec, ok := m.records[k]
	switch {
	case !ok || rec.CheckIn == nil:
		return attendance.Attendance{}, attendance.ErrNotCheckedInYet
	case rec.CheckOut != nil:
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}
	rec.CheckOut = &entry
	rec.UpdatedAt = entry.At
	m.records[k] = rec
	return rec, nil
}

func (m *memoryAttendance) ListByEmployee(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range m.records {
		if rec.EmployeeID == employeeID && !rec.WorkDate.Before(from) && !rec.WorkDate.After(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryAttendance) List(_ context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range m.records {
		if filter.EmployeeID == nil || rec.EmployeeID == *filter.EmployeeID {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryAttendance) ClaimMissingCheckOuts(_ context.Context, workDate time.Time, _ time.Time) ([]attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range m.records {
		if rec.WorkDate.Equal(workDate) && rec.CheckIn != nil && rec.CheckOut == nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

type stubFiles struct {
	file.FileService
	uploads []string
	err     error
}

func (s *stubFiles) UploadAttendanceProof(_ context.Context, employeeID string, workDate time.Time, _ io.Reader, _ string, kind string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	p := "attendance/" + workDate.Format(validator.DateLayout) + "/" + employeeID + "-" + kind + ".jpg"
	s.uploads = append(s.uploads, p)
	return p, nil
}

func (s *stubFiles) GetFileURL(_ context.Context, path string) (string, error) {
	return "https://storage.example.com/" + path, nil
}

type stubVerifier struct {
	match bool
	err   error
	calls [][2]string
}

func (v *stubVerifier) Verify(_ context.Context, capturedURL, referenceURL string) (bool, error) {
	v.calls = append(v.calls, [2]string{capturedURL, referenceURL})
	return v.match, v.err
}

var employee = user.User{
	ID:           "emp-1",
	FullName:     "Siti",
	Email:        "siti@example.com",
	Role:         user.RoleEmployee,
	FaceImageURL: servicetest.Ptr("faces/emp-1/ref.jpg"),
}

type fixture struct {
	svc      *AttendanceServiceImpl
	repo     *memoryAttendance
	users    *servicetest.Users
	files    *stubFiles
	verifier *stubVerifier
	clock    *servicetest.Clock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		repo:     newMemoryAttendance(),
		users:    servicetest.NewUsers(employee),
		files:    &stubFiles{},
		verifier: &stubVerifier{match: true},
		clock:    servicetest.NewClock(time.Date(2026, 1, 15, 1, 30, 0, 0, time.UTC)),
	}
	f.svc = NewAttendanceService(f.repo, f.users, f.files, f.verifier, time.UTC).(*AttendanceServiceImpl)
	f.svc.now = f.clock.Now
	return f
}

func checkRequest() attendance.CheckRequest {
	return attendance.CheckRequest{
		Image:    strings.NewReader("jpeg-bytes"),
		Filename: "selfie.jpg",
		Size:     10,
		Location: attendance.Location{Latitude: -6.2, Longitude: 106.8, Address: "Jakarta"},
	}
}

func TestCheckIn_CreatesRecordOnce(t *testing.T) {
	f := newFixture(t)
	principal := employee.Principal()

	resp, err := f.svc.CheckIn(t.Context(), principal, checkRequest())
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", resp.WorkDate)
	assert.Equal(t, attendance.StateCheckedIn, resp.State)
	require.NotNil(t, resp.CheckIn)
	assert.Nil(t, resp.CheckOut)
	assert.Equal(t, "attendance/2026-01-15/emp-1-check_in.jpg", resp.CheckIn.ImageURL)
	require.Len(t, f.verifier.calls, 1)
	assert.Equal(t, "https://storage.example.com/faces/emp-1/ref.jpg", f.verifier.calls[0][1])

	first, err := f.repo.GetByEmployeeAndDate(t.Context(), employee.ID, attendance.WorkDate(f.clock.Now(), time.UTC))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, err = f.svc.CheckIn(t.Context(), principal, checkRequest())
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	again, err := f.repo.GetByEmployeeAndDate(t.Context(), employee.ID, attendance.WorkDate(f.clock.Now(), time.UTC))
	require.NoError(t, err)
	assert.Equal(t, first.CheckIn.At, again.CheckIn.At)
	assert.Equal(t, 1, f.repo.inserts)
	assert.Len(t, f.files.uploads, 1, "rejected check-in must not upload")
}

func TestCheckOut_BeforeCheckInCreatesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CheckOut(t.Context(), employee.Principal(), checkRequest())
	assert.ErrorIs(t, err, attendance.ErrNotCheckedInYet)
	assert.Zero(t, f.repo.inserts)
	assert.Empty(t, f.repo.records)
	assert.Empty(t, f.verifier.calls)
}

func TestCheckOut_CompletesDay(t *testing.T) {
	f := newFixture(t)
	principal := employee.Principal()

	_, err := f.svc.CheckIn(t.Context(), principal, checkRequest())
	require.NoError(t, err)

	f.clock.Advance(8*time.Hour + 30*time.Minute)
	resp, err := f.svc.CheckOut(t.Context(), principal, checkRequest())
	require.NoError(t, err)
	assert.Equal(t, attendance.StateCheckedOut, resp.State)
	assert.Equal(t, 8.5, resp.WorkedHours)

	_, err = f.svc.CheckOut(t.Context(), principal, checkRequest())
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestCheckIn_Preconditions(t *testing.T) {
	f := newFixture(t)

	noFace := employee
	noFace.ID, noFace.Email, noFace.FaceImageURL = "emp-2", "noface@example.com", nil
	disabled := employee
	disabled.ID, disabled.Email, disabled.IsDisabled = "emp-3", "disabled@example.com", true
	deleted := employee
	deleted.ID, deleted.Email, deleted.IsDeleted = "emp-4", "deleted@example.com", true
	for _, u := range []user.User{noFace, disabled, deleted} {
		f.users.Put(u)
	}

	for _, id := range []string{"emp-2", "emp-3", "emp-4", "missing"} {
		_, err := f.svc.CheckIn(t.Context(), user.Principal{UserID: id}, checkRequest())
		assert.ErrorIs(t, err, user.ErrUserNotFound, id)
	}
	assert.Empty(t, f.repo.records)
}

func TestCheckIn_FaceMismatch(t *testing.T) {
	f := newFixture(t)
	f.verifier.match = false

	_, err := f.svc.CheckIn(t.Context(), employee.Principal(), checkRequest())
	assert.ErrorIs(t, err, attendance.ErrFaceVerificationFailed)
	assert.Empty(t, f.repo.records)
}

func TestCheckIn_CollaboratorErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("face service down")
	f.verifier.err = boom

	_, err := f.svc.CheckIn(t.Context(), employee.Principal(), checkRequest())
	assert.ErrorIs(t, err, boom)

	f.verifier.err = nil
	f.files.err = errors.New("bucket unavailable")
	_, err = f.svc.CheckIn(t.Context(), employee.Principal(), checkRequest())
	assert.ErrorContains(t, err, "bucket unavailable")
	assert.Empty(t, f.repo.records)
}

func TestCheckIn_InvalidRequest(t *testing.T) {
	f := newFixture(t)
	req := checkRequest()
	req.Filename = "selfie.gif"

	_, err := f.svc.CheckIn(t.Context(), employee.Principal(), req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "image")
}

func TestWorkDateFollowsTimezone(t *testing.T) {
	f := newFixture(t)
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	f.svc.loc = jakarta
	f.clock.Advance(-7*time.Hour - 30*time.Minute) // 18:00 UTC Jan 14 is 01:00 Jan 15 in Jakarta

	resp, err := f.svc.CheckIn(t.Context(), employee.Principal(), checkRequest())
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", resp.WorkDate)
}

func TestSummaries(t *testing.T) {
	f := newFixture(t)
	principal := employee.Principal()

	today, err := f.svc.TodaySummary(t.Context(), principal)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateNotCheckedIn, today.State)
	assert.Nil(t, today.Attendance)

	_, err = f.svc.CheckIn(t.Context(), principal, checkRequest())
	require.NoError(t, err)
	f.clock.Advance(8 * time.Hour)
	_, err = f.svc.CheckOut(t.Context(), principal, checkRequest())
	require.NoError(t, err)

	today, err = f.svc.TodaySummary(t.Context(), principal)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateCheckedOut, today.State)
	assert.Equal(t, 8.0, today.WorkedHours)

	week, err := f.svc.WeekSummary(t.Context(), principal)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-12", week.From)
	assert.Equal(t, 1, week.CompleteDays)
	assert.Len(t, week.Days, 7)

	month, err := f.svc.MonthSummary(t.Context(), principal, attendance.MonthQuery{})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", month.From)
	assert.Equal(t, "2026-01-31", month.To)
	assert.Equal(t, 8.0, month.TotalHours)

	details, err := f.svc.MonthlyDetails(t.Context(), principal, attendance.MonthQuery{Year: 2026, Month: 1})
	require.NoError(t, err)
	assert.Len(t, details.Days, 31)
	assert.Nil(t, details.Summary.Days)

	_, err = f.svc.MonthSummary(t.Context(), principal, attendance.MonthQuery{Year: 2026, Month: 13})
	assert.Error(t, err)

	history, err := f.svc.History(t.Context(), principal, attendance.HistoryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, history.TotalCount)
	assert.Equal(t, 1, history.Page)
	assert.Equal(t, validator.DefaultPageSize, history.Limit)
}
