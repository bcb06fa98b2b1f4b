package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/facematch"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/file"
)

const (
	kindCheckIn  = "check_in"
	kindCheckOut = "check_out"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	users       user.UserRepository
	fileService file.FileService
	verifier    facematch.Verifier
	loc         *time.Location
	now         func() time.Time
}

// NewAttendanceService files work-dates in loc; a nil loc means UTC.
func NewAttendanceService(
	attendanceRepository attendance.AttendanceRepository,
	userRepository user.UserRepository,
	fileService file.FileService,
	verifier facematch.Verifier,
	loc *time.Location,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepository,
		users:                userRepository,
		fileService:          fileService,
		verifier:             verifier,
		loc:                  loc,
		now:                  time.Now,
	}
}

func (s *AttendanceServiceImpl) today() time.Time {
	return attendance.WorkDate(s.now(), s.loc)
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, principal user.Principal, req attendance.CheckRequest) (resp attendance.AttendanceResponse, err error) {
	defer func() { metrics.AttendanceEvents.WithLabelValues(kindCheckIn, metrics.Result(err)).Inc() }()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employee, err := s.activeEmployee(ctx, principal.UserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	workDate := s.today()
	existing, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employee.ID, workDate)
	switch {
	case err == nil && existing.CheckIn != nil:
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	case err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound):
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load attendance: %w", err)
	}

	proof, err := s.verifyFace(ctx, employee, workDate, req, kindCheckIn)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	// The unique (employee, work_date) row is the guard against a racing check-in.
	record, err := s.AttendanceRepository.RecordCheckIn(ctx, employee.ID, workDate, attendance.Entry{
		At:       s.now(),
		ImageURL: proof,
		Location: req.Location,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Employee checked in", "employee_id", employee.ID, "work_date", workDate.Format(validator.DateLayout))
	return attendance.ToResponse(record), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, principal user.Principal, req attendance.CheckRequest) (resp attendance.AttendanceResponse, err error) {
	defer func() { metrics.AttendanceEvents.WithLabelValues(kindCheckOut, metrics.Result(err)).Inc() }()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employee, err := s.activeEmployee(ctx, principal.UserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	workDate := s.today()
	existing, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employee.ID, workDate)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNotCheckedInYet
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load attendance: %w", err)
	}
	switch existing.State() {
	case attendance.StateNotCheckedIn:
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedInYet
	case attendance.StateCheckedOut:
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	proof, err := s.verifyFace(ctx, employee, workDate, req, kindCheckOut)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.AttendanceRepository.RecordCheckOut(ctx, employee.ID, workDate, attendance.Entry{
		At:       s.now(),
		ImageURL: proof,
		Location: req.Location,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Employee checked out", "employee_id", employee.ID, "work_date", workDate.Format(validator.DateLayout), "worked_hours", record.WorkedHours())
	return attendance.ToResponse(record), nil
}

// activeEmployee loads the caller and requires a reference face on file.
func (s *AttendanceServiceImpl) activeEmployee(ctx context.Context, userID string) (user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if !u.Active() || !u.HasReferenceFace() {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

// verifyFace uploads the evidence photo and compares it with the reference face.
// It returns the stored path of the photo.
func (s *AttendanceServiceImpl) verifyFace(ctx context.Context, employee user.User, workDate time.Time, req attendance.CheckRequest, kind string) (string, error) {
	proof, err := s.fileService.UploadAttendanceProof(ctx, employee.ID, workDate, req.Image, req.Filename, kind)
	if err != nil {
		return "", fmt.Errorf("failed to upload attendance photo: %w", err)
	}

	capturedURL, err := s.fileService.GetFileURL(ctx, proof)
	if err != nil {
		return "", fmt.Errorf("failed to sign attendance photo: %w", err)
	}
	referenceURL, err := s.fileService.GetFileURL(ctx, *employee.FaceImageURL)
	if err != nil {
		return "", fmt.Errorf("failed to sign reference face: %w", err)
	}

	started := time.Now()
	match, err := s.verifier.Verify(ctx, capturedURL, referenceURL)
	metrics.FaceMatchDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return "", err
	}
	if !match {
		slog.Warn("Face verification rejected", "employee_id", employee.ID, "kind", kind)
		return "", attendance.ErrFaceVerificationFailed
	}
	return proof, nil
}

// TodaySummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) TodaySummary(ctx context.Context, principal user.Principal) (attendance.TodaySummaryResponse, error) {
	workDate := s.today()
	summary := attendance.TodaySummaryResponse{
		WorkDate: workDate.Format(validator.DateLayout),
		State:    attendance.StateNotCheckedIn,
	}

	record, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, principal.UserID, workDate)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return summary, nil
		}
		return attendance.TodaySummaryResponse{}, fmt.Errorf("failed to load attendance: %w", err)
	}

	resp := attendance.ToResponse(record)
	summary.State = resp.State
	summary.WorkedHours = resp.WorkedHours
	summary.Attendance = &resp
	return summary, nil
}

// WeekSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) WeekSummary(ctx context.Context, principal user.Principal) (attendance.PeriodSummaryResponse, error) {
	monday, sunday := attendance.WeekBounds(s.today())
	return s.summarize(ctx, principal.UserID, monday, sunday)
}

// MonthSummary implements attendance.AttendanceService. A zero period means the current month.
func (s *AttendanceServiceImpl) MonthSummary(ctx context.Context, principal user.Principal, period attendance.MonthQuery) (attendance.PeriodSummaryResponse, error) {
	period, err := s.resolveMonth(period)
	if err != nil {
		return attendance.PeriodSummaryResponse{}, err
	}
	first, last := attendance.MonthBounds(period.Year, time.Month(period.Month))
	return s.summarize(ctx, principal.UserID, first, last)
}

// MonthlyDetails implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MonthlyDetails(ctx context.Context, principal user.Principal, period attendance.MonthQuery) (attendance.MonthlyDetailsResponse, error) {
	period, err := s.resolveMonth(period)
	if err != nil {
		return attendance.MonthlyDetailsResponse{}, err
	}
	first, last := attendance.MonthBounds(period.Year, time.Month(period.Month))

	summary, err := s.summarize(ctx, principal.UserID, first, last)
	if err != nil {
		return attendance.MonthlyDetailsResponse{}, err
	}

	days := summary.Days
	summary.Days = nil
	return attendance.MonthlyDetailsResponse{
		Year:    period.Year,
		Month:   period.Month,
		Summary: summary,
		Days:    days,
	}, nil
}

func (s *AttendanceServiceImpl) resolveMonth(period attendance.MonthQuery) (attendance.MonthQuery, error) {
	if period.Year == 0 && period.Month == 0 {
		today := s.today()
		period = attendance.MonthQuery{Year: today.Year(), Month: int(today.Month())}
	}
	if err := period.Validate(); err != nil {
		return attendance.MonthQuery{}, err
	}
	return period, nil
}

func (s *AttendanceServiceImpl) summarize(ctx context.Context, employeeID string, from, to time.Time) (attendance.PeriodSummaryResponse, error) {
	records, err := s.AttendanceRepository.ListByEmployee(ctx, employeeID, from, to)
	if err != nil {
		return attendance.PeriodSummaryResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}
	return attendance.Summarize(records, from, to), nil
}

// History implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) History(ctx context.Context, principal user.Principal, filter attendance.HistoryFilter) (attendance.ListAttendanceResponse, error) {
	return s.List(ctx, attendance.AttendanceFilter{
		EmployeeID: &principal.UserID,
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
		Page:       filter.Page,
		Limit:      filter.Limit,
	})
}

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	page, limit := validator.NormalizePage(filter.Page, filter.Limit)
	items := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		items = append(items, attendance.ToResponse(r))
	}
	return attendance.ListAttendanceResponse{
		Attendances: items,
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
	}, nil
}
