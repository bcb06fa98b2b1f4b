package overtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

const workflow = "overtime"

type OvertimeServiceImpl struct {
	overtime.OvertimeRepository
	users    user.UserRepository
	notifier notification.Notifier
	now      func() time.Time
}

func NewOvertimeService(overtimeRepository overtime.OvertimeRepository, userRepository user.UserRepository, notifier notification.Notifier) overtime.OvertimeService {
	return &OvertimeServiceImpl{
		OvertimeRepository: overtimeRepository,
		users:              userRepository,
		notifier:           notifier,
		now:                time.Now,
	}
}

// Submit implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Submit(ctx context.Context, principal user.Principal, req overtime.SubmitOvertimeRequest) (overtime.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RequestResponse{}, err
	}
	if err := user.CheckApprover(ctx, s.users, principal.UserID, req.ApproverID); err != nil {
		return overtime.RequestResponse{}, err
	}

	date, hours := req.Derived()
	taken, err := s.OvertimeRepository.ExistsActiveOnDate(ctx, principal.UserID, date, nil)
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	if taken {
		return overtime.RequestResponse{}, overtime.ErrDuplicateDate
	}

	// A concurrent submission for the same date still fails on the partial unique index.
	created, err := s.OvertimeRepository.Create(ctx, overtime.Request{
		EmployeeID: principal.UserID,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Hours:      hours,
		Reason:     req.Reason,
		Type:       overtime.Type(req.Type),
		Status:     overtime.StatusPending,
		ApproverID: req.ApproverID,
	})
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	metrics.WorkflowDecisions.WithLabelValues(workflow, string(overtime.StatusPending)).Inc()

	n := notification.NotifyRequest{
		SenderID: &principal.UserID,
		Type:     notification.TypeOvertime,
		Priority: notification.PriorityNormal,
		Title:    "New overtime request",
		Message: fmt.Sprintf("%s requested %.2f hour(s) of overtime on %s (%s-%s)",
			principal.FullName, hours, req.Date, req.StartTime, req.EndTime),
		Data: map[string]any{"requestId": created.ID, "employeeId": principal.UserID},
	}
	if req.ApproverID != nil {
		n.RecipientIDs = []string{*req.ApproverID}
	} else {
		n.RecipientRoles = user.ApproverRoles
	}
	s.notifier.Notify(ctx, n)

	slog.Info("Overtime request submitted", "request_id", created.ID, "employee_id", principal.UserID, "date", req.Date, "hours", hours)
	return overtime.ToResponse(created), nil
}

// Update implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Update(ctx context.Context, principal user.Principal, req overtime.UpdateOvertimeRequest) (overtime.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RequestResponse{}, err
	}

	current, err := s.OvertimeRepository.GetByID(ctx, req.ID)
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	if current.EmployeeID != principal.UserID {
		return overtime.RequestResponse{}, overtime.ErrOvertimeRequestNotFound
	}
	if current.Status != overtime.StatusPending {
		return overtime.RequestResponse{}, overtime.ErrAlreadyProcessed
	}
	if err := user.CheckApprover(ctx, s.users, principal.UserID, req.ApproverID); err != nil {
		return overtime.RequestResponse{}, err
	}

	date, hours := req.Derived()
	taken, err := s.OvertimeRepository.ExistsActiveOnDate(ctx, principal.UserID, date, &current.ID)
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	if taken {
		return overtime.RequestResponse{}, overtime.ErrDuplicateDate
	}

	current.Date = date
	current.StartTime = req.StartTime
	current.EndTime = req.EndTime
	current.Hours = hours
	current.Reason = req.Reason
	current.Type = overtime.Type(req.Type)
	current.ApproverID = req.ApproverID

	updated, err := s.OvertimeRepository.UpdatePending(ctx, current)
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	return overtime.ToResponse(updated), nil
}

// Cancel implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Cancel(ctx context.Context, principal user.Principal, requestID string) (overtime.RequestResponse, error) {
	cancelled, err := s.OvertimeRepository.Cancel(ctx, requestID, principal.UserID, s.now())
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	metrics.WorkflowDecisions.WithLabelValues(workflow, string(overtime.StatusCancelled)).Inc()
	return overtime.ToResponse(cancelled), nil
}

// Approve implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Approve(ctx context.Context, principal user.Principal, requestID string) (overtime.RequestResponse, error) {
	return s.decide(ctx, principal, requestID, overtime.StatusApproved, nil)
}

// Reject implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Reject(ctx context.Context, principal user.Principal, req overtime.RejectOvertimeRequest) (overtime.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RequestResponse{}, err
	}
	return s.decide(ctx, principal, req.ID, overtime.StatusRejected, &req.RejectionReason)
}

func (s *OvertimeServiceImpl) decide(ctx context.Context, principal user.Principal, requestID string, status overtime.Status, reason *string) (overtime.RequestResponse, error) {
	if !principal.IsApprover() {
		return overtime.RequestResponse{}, user.ErrInsufficientPermissions
	}

	decided, err := s.OvertimeRepository.Decide(ctx, requestID, overtime.Decision{
		Status:          status,
		DecidedBy:       principal.UserID,
		DecidedAt:       s.now(),
		RejectionReason: reason,
	})
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	metrics.WorkflowDecisions.WithLabelValues(workflow, string(status)).Inc()

	message := fmt.Sprintf("Your overtime on %s was %s", decided.Date.Format(validator.DateLayout), status)
	if reason != nil {
		message += ": " + *reason
	}
	s.notifier.Notify(ctx, notification.NotifyRequest{
		RecipientIDs: []string{decided.EmployeeID},
		SenderID:     &principal.UserID,
		Type:         notification.TypeOvertime,
		Priority:     notification.PriorityHigh,
		Title:        "Overtime request " + string(status),
		Message:      message,
		Data:         map[string]any{"requestId": decided.ID, "status": string(status)},
	})

	slog.Info("Overtime request decided", "request_id", decided.ID, "status", status, "decided_by", principal.UserID)
	return overtime.ToResponse(decided), nil
}

// Get implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Get(ctx context.Context, principal user.Principal, requestID string) (overtime.RequestResponse, error) {
	request, err := s.OvertimeRepository.GetByID(ctx, requestID)
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	if request.EmployeeID != principal.UserID && !principal.IsApprover() {
		return overtime.RequestResponse{}, overtime.ErrOvertimeRequestNotFound
	}
	return overtime.ToResponse(request), nil
}

// ListMine implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) ListMine(ctx context.Context, principal user.Principal, filter overtime.OvertimeFilter) (overtime.ListRequestResponse, error) {
	filter.EmployeeID = &principal.UserID
	return s.List(ctx, filter)
}

// List implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) List(ctx context.Context, filter overtime.OvertimeFilter) (overtime.ListRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return overtime.ListRequestResponse{}, err
	}

	requests, total, err := s.OvertimeRepository.List(ctx, filter)
	if err != nil {
		return overtime.ListRequestResponse{}, fmt.Errorf("failed to list overtime requests: %w", err)
	}

	items := make([]overtime.RequestResponse, 0, len(requests))
	for _, r := range requests {
		items = append(items, overtime.ToResponse(r))
	}
	page, limit := validator.NormalizePage(filter.Page, filter.Limit)
	return overtime.ListRequestResponse{
		Requests:   items,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	}, nil
}

// Summary implements overtime.OvertimeService. Zero year and month select the current month.
func (s *OvertimeServiceImpl) Summary(ctx context.Context, principal user.Principal, year, month int) (overtime.SummaryResponse, error) {
	if year == 0 && month == 0 {
		now := s.now().UTC()
		year, month = now.Year(), int(now.Month())
	}
	var errs validator.ValidationErrors
	if year < 2000 || year > 9999 {
		errs.Add("year", "year must be between 2000 and 9999")
	}
	if month < 1 || month > 12 {
		errs.Add("month", "month must be between 1 and 12")
	}
	if err := errs.Err(); err != nil {
		return overtime.SummaryResponse{}, err
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	sums, err := s.OvertimeRepository.SumHours(ctx, principal.UserID, from, to)
	if err != nil {
		return overtime.SummaryResponse{}, fmt.Errorf("failed to sum overtime hours: %w", err)
	}

	return overtime.SummaryResponse{
		Year:          year,
		Month:         month,
		ApprovedHours: sums[overtime.StatusApproved],
		PendingHours:  sums[overtime.StatusPending],
	}, nil
}
