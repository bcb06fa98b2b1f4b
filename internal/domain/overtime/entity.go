package overtime

import (
	"math"
	"time"
)

type Type string

const (
	TypeRegular Type = "regular"
	TypeWeekend Type = "weekend"
	TypeHoliday Type = "holiday"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

const (
	MinHours = 0.5
	MaxHours = 12.0
)

type Request struct {
	ID              string
	EmployeeID      string
	Date            time.Time
	StartTime       string // HH:MM
	EndTime         string // HH:MM
	Hours           float64
	Reason          string
	Type            Type
	Status          Status
	ApproverID      *string
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string
	CancelledAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Join
	EmployeeName *string
}

type Decision struct {
	Status          Status
	DecidedBy       string
	DecidedAt       time.Time
	RejectionReason *string
}

// Hours returns end-start in hours rounded to two decimals. Both bounds are same-day HH:MM clock values.
func Hours(start, end time.Time) float64 {
	return math.Round(end.Sub(start).Hours()*100) / 100
}
