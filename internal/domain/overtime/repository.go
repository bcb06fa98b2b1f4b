package overtime

import (
	"context"
	"time"
)

type OvertimeRepository interface {
	// Create returns ErrDuplicateDate when the employee already has a pending or approved request on the date.
	Create(ctx context.Context, request Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	UpdatePending(ctx context.Context, request Request) (Request, error)

	// Decide updates only while status = pending; zero rows yields ErrAlreadyProcessed
	// or ErrOvertimeRequestNotFound.
	Decide(ctx context.Context, id string, decision Decision) (Request, error)
	Cancel(ctx context.Context, id string, employeeID string, at time.Time) (Request, error)

	// ExistsActiveOnDate reports a pending or approved request for the employee on date.
	ExistsActiveOnDate(ctx context.Context, employeeID string, date time.Time, excludeID *string) (bool, error)

	// SumHours totals hours per status for requests dated within [from, to].
	SumHours(ctx context.Context, employeeID string, from, to time.Time) (map[Status]float64, error)

	List(ctx context.Context, filter OvertimeFilter) ([]Request, int64, error)
}
