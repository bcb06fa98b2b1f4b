package leave

import "time"

type Type string

const (
	TypeAnnual    Type = "annual"
	TypeSick      Type = "sick"
	TypePersonal  Type = "personal"
	TypeMaternity Type = "maternity"
	TypePaternity Type = "paternity"
	TypeUnpaid    Type = "unpaid"
)

func AllTypes() []Type {
	return []Type{TypeAnnual, TypeSick, TypePersonal, TypeMaternity, TypePaternity, TypeUnpaid}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Policy holds the limits applied to one leave type.
type Policy struct {
	LeaveType            Type
	MaxDaysPerYear       int
	MaxDaysPerRequest    int
	MinAdvanceNoticeDays int
	CarryOverDays        int
	UpdatedAt            time.Time
}

type Request struct {
	ID              string
	EmployeeID      string
	LeaveType       Type
	StartDate       time.Time
	EndDate         time.Time
	Duration        int
	Reason          string
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

// Decision records the outcome an approver applies to a pending request.
type Decision struct {
	Status          Status
	DecidedBy       string
	DecidedAt       time.Time
	RejectionReason *string
}

// Usage is the number of days already consumed or reserved for a leave type.
type Usage struct {
	Approved int
	Pending  int
}

// DurationDays counts calendar days from start to end inclusive.
func DurationDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
