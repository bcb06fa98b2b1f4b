package leave

import (
	"context"
	"time"
)

type LeavePolicyRepository interface {
	List(ctx context.Context) ([]Policy, error)
	GetByType(ctx context.Context, leaveType Type) (Policy, error)
	Upsert(ctx context.Context, policy Policy) (Policy, error)
}

type LeaveRequestRepository interface {
	Create(ctx context.Context, request Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)

	// UpdatePending rewrites an owner's request only while it is pending.
	UpdatePending(ctx context.Context, request Request) (Request, error)

	// Decide moves a pending request to a terminal status. The update is filtered on
	// status = pending; when no row matches it returns ErrAlreadyProcessed, or
	// ErrLeaveRequestNotFound if the id does not exist.
	Decide(ctx context.Context, id string, decision Decision) (Request, error)

	// Cancel marks the employee's own pending request cancelled, with the same error contract as Decide.
	Cancel(ctx context.Context, id string, employeeID string, at time.Time) (Request, error)

	// UsageByType sums durations of approved and pending requests starting within [from, to].
	UsageByType(ctx context.Context, employeeID string, from, to time.Time) (map[Type]Usage, error)

	HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error)

	List(ctx context.Context, filter LeaveRequestFilter) ([]Request, int64, error)
}
