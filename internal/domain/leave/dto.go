package leave

import (
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

const leaveTypes = "annual sick personal maternity paternity unpaid"

type SubmitLeaveRequest struct {
	Type       string  `json:"type" validate:"required,oneof=annual sick personal maternity paternity unpaid"`
	StartDate  string  `json:"startDate" validate:"required,date"`
	EndDate    string  `json:"endDate" validate:"required,date"`
	Reason     string  `json:"reason" validate:"notblank,max=1000"`
	ApproverID *string `json:"approverId,omitempty" validate:"omitempty,uuid"`

	startDate time.Time
	endDate   time.Time
}

func (r *SubmitLeaveRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}
	r.startDate, _ = validator.IsValidDate(r.StartDate)
	r.endDate, _ = validator.IsValidDate(r.EndDate)
	if r.endDate.Before(r.startDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// Period returns the parsed dates; only meaningful after Validate succeeded.
func (r *SubmitLeaveRequest) Period() (time.Time, time.Time) {
	return r.startDate, r.endDate
}

type UpdateLeaveRequest struct {
	ID string `json:"-"`
	SubmitLeaveRequest
}

type RejectLeaveRequest struct {
	ID              string `json:"-"`
	RejectionReason string `json:"rejectionReason"`
}

func (r *RejectLeaveRequest) Validate() error {
	if validator.IsEmpty(r.RejectionReason) {
		return ErrRejectionReasonRequired
	}
	return nil
}

type UpsertPolicyRequest struct {
	LeaveType            string `json:"-" validate:"required,oneof=annual sick personal maternity paternity unpaid"`
	MaxDaysPerYear       int    `json:"maxDaysPerYear" validate:"gte=0,lte=366"`
	MaxDaysPerRequest    int    `json:"maxDaysPerRequest" validate:"gte=0,lte=366"`
	MinAdvanceNoticeDays int    `json:"minAdvanceNoticeDays" validate:"gte=0,lte=365"`
	CarryOverDays        int    `json:"carryOverDays" validate:"gte=0,lte=366"`
}

func (r *UpsertPolicyRequest) Validate() error {
	errs := validator.Struct(r)
	for i := range errs {
		if errs[i].Field == "LeaveType" {
			errs[i] = validator.ValidationError{Field: "type", Message: "type must be one of: " + leaveTypes}
		}
	}
	return errs.Err()
}

type LeaveRequestFilter struct {
	EmployeeID *string
	Status     *string
	Type       *string
	Page       int
	Limit      int
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil && !validator.IsInSlice(Status(*f.Status), []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}) {
		errs.Add("status", "status must be one of: pending, approved, rejected, cancelled")
	}
	if f.Type != nil && !validator.IsInSlice(Type(*f.Type), AllTypes()) {
		errs.Add("type", "type must be one of: "+leaveTypes)
	}
	return errs.Err()
}

type RequestResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employeeId"`
	EmployeeName    *string `json:"employeeName,omitempty"`
	Type            Type    `json:"type"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	Duration        int     `json:"duration"`
	Reason          string  `json:"reason"`
	Status          Status  `json:"status"`
	ApproverID      *string `json:"approverId,omitempty"`
	ApprovedBy      *string `json:"approvedBy,omitempty"`
	ApprovedAt      *string `json:"approvedAt,omitempty"`
	RejectionReason *string `json:"rejectionReason,omitempty"`
	CancelledAt     *string `json:"cancelledAt,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func ToResponse(r Request) RequestResponse {
	return RequestResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		Type:            r.LeaveType,
		StartDate:       r.StartDate.Format(validator.DateLayout),
		EndDate:         r.EndDate.Format(validator.DateLayout),
		Duration:        r.Duration,
		Reason:          r.Reason,
		Status:          r.Status,
		ApproverID:      r.ApproverID,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      formatTime(r.ApprovedAt),
		RejectionReason: r.RejectionReason,
		CancelledAt:     formatTime(r.CancelledAt),
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

type ListRequestResponse struct {
	Requests   []RequestResponse `json:"requests"`
	TotalCount int64             `json:"totalCount"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

type BalanceResponse struct {
	Type           Type `json:"type"`
	Year           int  `json:"year"`
	MaxDaysPerYear int  `json:"maxDaysPerYear"`
	Used           int  `json:"used"`
	Pending        int  `json:"pending"`
	Remaining      int  `json:"remaining"`
	Unlimited      bool `json:"unlimited"`
}

type PolicyResponse struct {
	Type                 Type   `json:"type"`
	MaxDaysPerYear       int    `json:"maxDaysPerYear"`
	MaxDaysPerRequest    int    `json:"maxDaysPerRequest"`
	MinAdvanceNoticeDays int    `json:"minAdvanceNoticeDays"`
	CarryOverDays        int    `json:"carryOverDays"`
	UpdatedAt            string `json:"updatedAt"`
}

func ToPolicyResponse(p Policy) PolicyResponse {
	return PolicyResponse{
		Type:                 p.LeaveType,
		MaxDaysPerYear:       p.MaxDaysPerYear,
		MaxDaysPerRequest:    p.MaxDaysPerRequest,
		MinAdvanceNoticeDays: p.MinAdvanceNoticeDays,
		CarryOverDays:        p.CarryOverDays,
		UpdatedAt:            p.UpdatedAt.Format(time.RFC3339),
	}
}
