package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// GetByEmployeeAndDate returns ErrAttendanceNotFound when no record exists for the work-date.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (Attendance, error)

	// RecordCheckIn creates the day's record or fills its empty check-in slot in one statement.
	// Returns ErrAlreadyCheckedIn when a check-in entry already exists.
	RecordCheckIn(ctx context.Context, employeeID string, workDate time.Time, entry Entry) (Attendance, error)

	// RecordCheckOut fills the check-out slot of an existing, checked-in record; it never inserts.
	// Returns ErrNotCheckedInYet or ErrAlreadyCheckedOut when the slot cannot be written.
	RecordCheckOut(ctx context.Context, employeeID string, workDate time.Time, entry Entry) (Attendance, error)

	// ListByEmployee returns the employee's records with from <= work_date <= to, oldest first.
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ClaimMissingCheckOuts stamps every record of workDate that has a check-in, no check-out
	// and no reminder yet with at, and returns them. A record is claimed at most once.
	ClaimMissingCheckOuts(ctx context.Context, workDate time.Time, at time.Time) ([]Attendance, error)
}
