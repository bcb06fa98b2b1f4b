package overtime

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

type SubmitOvertimeRequest struct {
	Date       string  `json:"date" validate:"required,date"`
	StartTime  string  `json:"startTime" validate:"required,clock"`
	EndTime    string  `json:"endTime" validate:"required,clock"`
	Reason     string  `json:"reason" validate:"notblank,max=1000"`
	Type       string  `json:"type" validate:"required,oneof=regular weekend holiday"`
	ApproverID *string `json:"approverId,omitempty" validate:"omitempty,uuid"`

	date  time.Time
	hours float64
}

// Validate checks the fields and derives the hour count, which must lie in [MinHours, MaxHours].
func (r *SubmitOvertimeRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}

	r.date, _ = validator.IsValidDate(r.Date)
	start, _ := validator.IsValidClock(r.StartTime)
	end, _ := validator.IsValidClock(r.EndTime)

	r.hours = Hours(start, end)
	if r.hours < MinHours || r.hours > MaxHours {
		return fmt.Errorf("%w: got %.2f hours", ErrHoursOutOfRange, r.hours)
	}
	return nil
}

// Derived returns the parsed date and computed hours; only meaningful after Validate succeeded.
func (r *SubmitOvertimeRequest) Derived() (time.Time, float64) {
	return r.date, r.hours
}

type UpdateOvertimeRequest struct {
	ID string `json:"-"`
	SubmitOvertimeRequest
}

type RejectOvertimeRequest struct {
	ID              string `json:"-"`
	RejectionReason string `json:"rejectionReason"`
}

func (r *RejectOvertimeRequest) Validate() error {
	if validator.IsEmpty(r.RejectionReason) {
		return ErrRejectionReasonRequired
	}
	return nil
}

type OvertimeFilter struct {
	EmployeeID *string
	Status     *string
	StartDate  *string
	EndDate    *string
	Page       int
	Limit      int
}

func (f *OvertimeFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil && !validator.IsInSlice(Status(*f.Status), []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}) {
		errs.Add("status", "status must be one of: pending, approved, rejected, cancelled")
	}
	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs.Add("startDate", "startDate must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs.Add("endDate", "endDate must be in YYYY-MM-DD format")
		}
	}
	return errs.Err()
}

type RequestResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employeeId"`
	EmployeeName    *string `json:"employeeName,omitempty"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	Hours           float64 `json:"hours"`
	Reason          string  `json:"reason"`
	Type            Type    `json:"type"`
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
		Date:            r.Date.Format(validator.DateLayout),
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Hours:           r.Hours,
		Reason:          r.Reason,
		Type:            r.Type,
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

type SummaryResponse struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	ApprovedHours float64 `json:"approvedHours"`
	PendingHours  float64 `json:"pendingHours"`
}
