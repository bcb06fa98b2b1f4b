package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

const workflow = "leave"

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	policies leave.LeavePolicyRepository
	users    user.UserRepository
	notifier notification.Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewLeaveService(
	requestRepository leave.LeaveRequestRepository,
	policyRepository leave.LeavePolicyRepository,
	userRepository user.UserRepository,
	notifier notification.Notifier,
	loc *time.Location,
) leave.LeaveService {
	if loc == nil {
		loc = time.UTC
	}
	return &LeaveServiceImpl{
		LeaveRequestRepository: requestRepository,
		policies:               policyRepository,
		users:                  userRepository,
		notifier:               notifier,
		loc:                    loc,
		now:                    time.Now,
	}
}

// today is the current calendar date at midnight UTC, comparable with DATE columns.
func (s *LeaveServiceImpl) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func yearBounds(year int) (time.Time, time.Time) {
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
}

// Submit implements leave.LeaveService.
func (s *LeaveServiceImpl) Submit(ctx context.Context, principal user.Principal, req leave.SubmitLeaveRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}
	if err := user.CheckApprover(ctx, s.users, principal.UserID, req.ApproverID); err != nil {
		return leave.RequestResponse{}, err
	}

	start, end := req.Period()
	duration := leave.DurationDays(start, end)
	leaveType := leave.Type(req.Type)
	if err := s.checkRequest(ctx, principal.UserID, leaveType, start, end, duration, nil); err != nil {
		return leave.RequestResponse{}, err
	}

	created, err := s.LeaveRequestRepository.Create(ctx, leave.Request{
		EmployeeID: principal.UserID,
		LeaveType:  leaveType,
		StartDate:  start,
		EndDate:    end,
		Duration:   duration,
		Reason:     req.Reason,
		Status:     leave.StatusPending,
		ApproverID: req.ApproverID,
	})
	if err != nil {
		return leave.RequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	metrics.WorkflowDecisions.WithLabelValues(workflow, string(leave.StatusPending)).Inc()

	s.notifier.Notify(ctx, notification.NotifyRequest{
		RecipientIDs:   approverIDs(req.ApproverID),
		RecipientRoles: approverRoles(req.ApproverID),
		SenderID:       &principal.UserID,
		Type:           notification.TypeLeave,
		Priority:       notification.PriorityNormal,
		Title:          "New leave request",
		Message: fmt.Sprintf("%s requested %d day(s) of %s leave from %s to %s",
			principal.FullName, duration, leaveType, req.StartDate, req.EndDate),
		Data: map[string]any{"requestId": created.ID, "employeeId": principal.UserID},
	})

	slog.Info("Leave request submitted", "request_id", created.ID, "employee_id", principal.UserID, "type", leaveType, "duration", duration)
	return leave.ToResponse(created), nil
}

// checkRequest applies the overlap and policy rules shared by Submit and Update.
func (s *LeaveServiceImpl) checkRequest(ctx context.Context, employeeID string, leaveType leave.Type, start, end time.Time, duration int, excludeID *string) error {
	policy, err := s.policies.GetByType(ctx, leaveType)
	if err != nil {
		return err
	}

	overlaps, err := s.LeaveRequestRepository.HasOverlap(ctx, employeeID, start, end, excludeID)
	if err != nil {
		return err
	}
	if overlaps {
		return leave.ErrOverlappingRequest
	}

	from, to := yearBounds(start.Year())
	usage, err := s.LeaveRequestRepository.UsageByType(ctx, employeeID, from, to)
	if err != nil {
		return err
	}
	approved := usage[leaveType].Approved

	return policy.Evaluate(start, duration, s.today(), approved)
}

func approverIDs(approverID *string) []string {
	if approverID == nil {
		return nil
	}
	return []string{*approverID}
}

func approverRoles(approverID *string) []user.Role {
	if approverID != nil {
		return nil
	}
	return user.ApproverRoles
}

// Update implements leave.LeaveService.
func (s *LeaveServiceImpl) Update(ctx context.Context, principal user.Principal, req leave.UpdateLeaveRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}

	current, err := s.LeaveRequestRepository.GetByID(ctx, req.ID)
	if err != nil {
		return leave.RequestResponse{}, err
	}
	if current.EmployeeID != principal.UserID {
		return leave.RequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	if current.Status != leave.StatusPending {
		return leave.RequestResponse{}, leave.ErrAlreadyProcessed
	}
	if err := user.CheckApprover(ctx, s.users, principal.UserID, req.ApproverID); err != nil {
		return leave.RequestResponse{}, err
	}

	start, end := req.Period()
	duration := leave.DurationDays(start, end)
	leaveType := leave.Type(req.Type)
	if err := s.checkRequest(ctx, principal.UserID, leaveType, start, end, duration, &current.ID); err != nil {
		return leave.RequestResponse{}, err
	}

	current.LeaveType = leaveType
	current.StartDate = start
	current.EndDate = end
	current.Duration = duration
	current.Reason = req.Reason
	current.ApproverID = req.ApproverID

	updated, err := s.LeaveRequestRepository.UpdatePending(ctx, current)
	if err != nil {
		return leave.RequestResponse{}, err
	}
	return leave.ToResponse(updated), nil
}

// Cancel implements leave.LeaveService.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, principal user.Principal, requestID string) (leave.RequestResponse, error) {
	cancelled, err := s.LeaveRequestRepository.Cancel(ctx, requestID, principal.UserID, s.now())
	if err != nil {
		return leave.RequestResponse{}, err
	}
	metrics.WorkflowDecisions.WithLabelValues(workflow, string(leave.StatusCancelled)).Inc()
	return leave.ToResponse(cancelled), nil
}

// Approve implements leave.LeaveService.
func (s *LeaveServiceImpl) Approve(ctx context.Context, principal user.Principal, requestID string) (leave.RequestResponse, error) {
	return s.decide(ctx, principal, requestID, leave.StatusApproved, nil)
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, principal user.Principal, req leave.RejectLeaveRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}
	return s.decide(ctx, principal, req.ID, leave.StatusRejected, &req.RejectionReason)
}

func (s *LeaveServiceImpl) decide(ctx context.Context, principal user.Principal, requestID string, status leave.Status, reason *string) (leave.RequestResponse, error) {
	if !principal.IsApprover() {
		return leave.RequestResponse{}, user.ErrInsufficientPermissions
	}

	decided, err := s.LeaveRequestRepository.Decide(ctx, requestID, leave.Decision{
		Status:          status,
		DecidedBy:       principal.UserID,
		DecidedAt:       s.now(),
		RejectionReason: reason,
	})
	if err != nil {
		return leave.RequestResponse{}, err
	}
	metrics.WorkflowDecisions.WithLabelValues(workflow, string(status)).Inc()

	message := fmt.Sprintf("Your %s leave from %s to %s was %s",
		decided.LeaveType, decided.StartDate.Format(validator.DateLayout), decided.EndDate.Format(validator.DateLayout), status)
	if reason != nil {
		message += ": " + *reason
	}
	s.notifier.Notify(ctx, notification.NotifyRequest{
		RecipientIDs: []string{decided.EmployeeID},
		SenderID:     &principal.UserID,
		Type:         notification.TypeLeave,
		Priority:     notification.PriorityHigh,
		Title:        "Leave request " + string(status),
		Message:      message,
		Data:         map[string]any{"requestId": decided.ID, "status": string(status)},
	})

	slog.Info("Leave request decided", "request_id", decided.ID, "status", status, "decided_by", principal.UserID)
	return leave.ToResponse(decided), nil
}

// Get implements leave.LeaveService. Requests of other employees are invisible to non-approvers.
func (s *LeaveServiceImpl) Get(ctx context.Context, principal user.Principal, requestID string) (leave.RequestResponse, error) {
	request, err := s.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.RequestResponse{}, err
	}
	if request.EmployeeID != principal.UserID && !principal.IsApprover() {
		return leave.RequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	return leave.ToResponse(request), nil
}

// ListMine implements leave.LeaveService.
func (s *LeaveServiceImpl) ListMine(ctx context.Context, principal user.Principal, filter leave.LeaveRequestFilter) (leave.ListRequestResponse, error) {
	filter.EmployeeID = &principal.UserID
	return s.List(ctx, filter)
}

// List implements leave.LeaveService.
func (s *LeaveServiceImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListRequestResponse{}, err
	}

	requests, total, err := s.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return leave.ListRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	items := make([]leave.RequestResponse, 0, len(requests))
	for _, r := range requests {
		items = append(items, leave.ToResponse(r))
	}
	page, limit := validator.NormalizePage(filter.Page, filter.Limit)
	return leave.ListRequestResponse{
		Requests:   items,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	}, nil
}

// Balance implements leave.LeaveService.
func (s *LeaveServiceImpl) Balance(ctx context.Context, principal user.Principal) ([]leave.BalanceResponse, error) {
	policies, err := s.policies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave policies: %w", err)
	}

	year := s.today().Year()
	from, to := yearBounds(year)
	usage, err := s.LeaveRequestRepository.UsageByType(ctx, principal.UserID, from, to)
	if err != nil {
		return nil, err
	}

	balances := make([]leave.BalanceResponse, 0, len(policies))
	for _, p := range policies {
		u := usage[p.LeaveType]
		balances = append(balances, leave.BalanceResponse{
			Type:           p.LeaveType,
			Year:           year,
			MaxDaysPerYear: p.MaxDaysPerYear,
			Used:           u.Approved,
			Pending:        u.Pending,
			Remaining:      p.Remaining(u.Approved),
			Unlimited:      p.MaxDaysPerYear == 0,
		})
	}
	return balances, nil
}

// ListPolicies implements leave.LeaveService.
func (s *LeaveServiceImpl) ListPolicies(ctx context.Context) ([]leave.PolicyResponse, error) {
	policies, err := s.policies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave policies: %w", err)
	}
	resp := make([]leave.PolicyResponse, len(policies))
	for i, p := range policies {
		resp[i] = leave.ToPolicyResponse(p)
	}
	return resp, nil
}

// UpsertPolicy implements leave.LeaveService.
func (s *LeaveServiceImpl) UpsertPolicy(ctx context.Context, req leave.UpsertPolicyRequest) (leave.PolicyResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.PolicyResponse{}, err
	}
	saved, err := s.policies.Upsert(ctx, leave.Policy{
		LeaveType:            leave.Type(req.LeaveType),
		MaxDaysPerYear:       req.MaxDaysPerYear,
		MaxDaysPerRequest:    req.MaxDaysPerRequest,
		MinAdvanceNoticeDays: req.MinAdvanceNoticeDays,
		CarryOverDays:        req.CarryOverDays,
	})
	if err != nil {
		return leave.PolicyResponse{}, fmt.Errorf("failed to save leave policy: %w", err)
	}
	slog.Info("Leave policy updated", "type", saved.LeaveType, "max_days_per_year", saved.MaxDaysPerYear)
	return leave.ToPolicyResponse(saved), nil
}
