package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leavePolicyRepositoryImpl struct {
	db *database.DB
}

func NewLeavePolicyRepository(db *database.DB) leave.LeavePolicyRepository {
	return &leavePolicyRepositoryImpl{db: db}
}

const leavePolicyColumns = `leave_type, max_days_per_year, max_days_per_request, min_advance_notice_days, carry_over_days, updated_at`

func scanLeavePolicy(row pgx.Row) (leave.Policy, error) {
	var p leave.Policy
	err := row.Scan(&p.LeaveType, &p.MaxDaysPerYear, &p.MaxDaysPerRequest, &p.MinAdvanceNoticeDays, &p.CarryOverDays, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Policy{}, leave.ErrPolicyNotFound
		}
		return leave.Policy{}, err
	}
	return p, nil
}

func (r *leavePolicyRepositoryImpl) List(ctx context.Context) ([]leave.Policy, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+leavePolicyColumns+` FROM leave_policies ORDER BY leave_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave policies: %w", err)
	}
	defer rows.Close()

	policies := make([]leave.Policy, 0)
	for rows.Next() {
		p, err := scanLeavePolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (r *leavePolicyRepositoryImpl) GetByType(ctx context.Context, leaveType leave.Type) (leave.Policy, error) {
	q := GetQuerier(ctx, r.db)
	return scanLeavePolicy(q.QueryRow(ctx, `SELECT `+leavePolicyColumns+` FROM leave_policies WHERE leave_type = $1`, leaveType))
}

func (r *leavePolicyRepositoryImpl) Upsert(ctx context.Context, policy leave.Policy) (leave.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_policies (leave_type, max_days_per_year, max_days_per_request, min_advance_notice_days, carry_over_days)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (leave_type) DO UPDATE
		SET max_days_per_year = EXCLUDED.max_days_per_year,
			max_days_per_request = EXCLUDED.max_days_per_request,
			min_advance_notice_days = EXCLUDED.min_advance_notice_days,
			carry_over_days = EXCLUDED.carry_over_days,
			updated_at = NOW()
		RETURNING ` + leavePolicyColumns

	return scanLeavePolicy(q.QueryRow(ctx, query,
		policy.LeaveType,
		policy.MaxDaysPerYear,
		policy.MaxDaysPerRequest,
		policy.MinAdvanceNoticeDays,
		policy.CarryOverDays,
	))
}

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.leave_type, lr.start_date, lr.end_date, lr.duration, lr.reason, lr.status,
	lr.approver_id, lr.approved_by, lr.approved_at, lr.rejection_reason, lr.cancelled_at,
	lr.created_at, lr.updated_at`

func scanLeaveRequest(row pgx.Row, extra ...any) (leave.Request, error) {
	var lr leave.Request
	dest := []any{
		&lr.ID,
		&lr.EmployeeID,
		&lr.LeaveType,
		&lr.StartDate,
		&lr.EndDate,
		&lr.Duration,
		&lr.Reason,
		&lr.Status,
		&lr.ApproverID,
		&lr.ApprovedBy,
		&lr.ApprovedAt,
		&lr.RejectionReason,
		&lr.CancelledAt,
		&lr.CreatedAt,
		&lr.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrLeaveRequestNotFound
		}
		return leave.Request{}, err
	}
	return lr, nil
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests AS lr (id, employee_id, leave_type, start_date, end_date, duration, reason, status, approver_id)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + leaveRequestColumns

	created, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.EmployeeID,
		request.LeaveType,
		request.StartDate,
		request.EndDate,
		request.Duration,
		request.Reason,
		leave.StatusPending,
		request.ApproverID,
	))
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return created, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `, u.full_name
		FROM leave_requests lr
		JOIN users u ON u.id = lr.employee_id
		WHERE lr.id = $1`

	var name string
	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id), &name)
	if err != nil {
		return leave.Request{}, err
	}
	lr.EmployeeName = &name
	return lr, nil
}

// resolveMiss turns a zero-row status-filtered update into the right sentinel.
func (r *leaveRequestRepositoryImpl) resolveMiss(ctx context.Context, id string, employeeID *string) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if employeeID != nil && current.EmployeeID != *employeeID {
		return leave.ErrLeaveRequestNotFound
	}
	return leave.ErrAlreadyProcessed
}

func (r *leaveRequestRepositoryImpl) UpdatePending(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests AS lr
		SET leave_type = $3, start_date = $4, end_date = $5, duration = $6, reason = $7,
			approver_id = $8, updated_at = NOW()
		WHERE lr.id = $1 AND lr.employee_id = $2 AND lr.status = 'pending'
		RETURNING ` + leaveRequestColumns

	updated, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.ID,
		request.EmployeeID,
		request.LeaveType,
		request.StartDate,
		request.EndDate,
		request.Duration,
		request.Reason,
		request.ApproverID,
	))
	if errors.Is(err, leave.ErrLeaveRequestNotFound) {
		return leave.Request{}, r.resolveMiss(ctx, request.ID, &request.EmployeeID)
	}
	return updated, err
}

func (r *leaveRequestRepositoryImpl) Decide(ctx context.Context, id string, decision leave.Decision) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests AS lr
		SET status = $2, approved_by = $3, approved_at = $4, rejection_reason = $5, updated_at = NOW()
		WHERE lr.id = $1 AND lr.status = 'pending'
		RETURNING ` + leaveRequestColumns

	decided, err := scanLeaveRequest(q.QueryRow(ctx, query,
		id,
		decision.Status,
		decision.DecidedBy,
		decision.DecidedAt,
		decision.RejectionReason,
	))
	if errors.Is(err, leave.ErrLeaveRequestNotFound) {
		return leave.Request{}, r.resolveMiss(ctx, id, nil)
	}
	return decided, err
}

func (r *leaveRequestRepositoryImpl) Cancel(ctx context.Context, id string, employeeID string, at time.Time) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests AS lr
		SET status = 'cancelled', cancelled_at = $3, updated_at = NOW()
		WHERE lr.id = $1 AND lr.employee_id = $2 AND lr.status = 'pending'
		RETURNING ` + leaveRequestColumns

	cancelled, err := scanLeaveRequest(q.QueryRow(ctx, query, id, employeeID, at))
	if errors.Is(err, leave.ErrLeaveRequestNotFound) {
		return leave.Request{}, r.resolveMiss(ctx, id, &employeeID)
	}
	return cancelled, err
}

func (r *leaveRequestRepositoryImpl) UsageByType(ctx context.Context, employeeID string, from, to time.Time) (map[leave.Type]leave.Usage, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT leave_type,
			COALESCE(SUM(duration) FILTER (WHERE status = 'approved'), 0),
			COALESCE(SUM(duration) FILTER (WHERE status = 'pending'), 0)
		FROM leave_requests
		WHERE employee_id = $1 AND start_date BETWEEN $2 AND $3
		  AND status IN ('approved', 'pending')
		GROUP BY leave_type`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum leave usage: %w", err)
	}
	defer rows.Close()

	usage := make(map[leave.Type]leave.Usage)
	for rows.Next() {
		var t leave.Type
		var u leave.Usage
		if err := rows.Scan(&t, &u.Approved, &u.Pending); err != nil {
			return nil, err
		}
		usage[t] = u
	}
	return usage, rows.Err()
}

func (r *leaveRequestRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
			  AND status IN ('pending', 'approved')
			  AND start_date <= $3 AND end_date >= $2
			  AND ($4::uuid IS NULL OR id <> $4::uuid)
		)`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, start, end, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check leave overlap: %w", err)
	}
	return exists, nil
}

func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	var c conditions
	if filter.EmployeeID != nil {
		c.add("lr.employee_id = ?", *filter.EmployeeID)
	}
	if filter.Status != nil {
		c.add("lr.status = ?", *filter.Status)
	}
	if filter.Type != nil {
		c.add("lr.leave_type = ?", *filter.Type)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests lr `+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	where := c.where()
	query := `
		SELECT ` + leaveRequestColumns + `, u.full_name
		FROM leave_requests lr
		JOIN users u ON u.id = lr.employee_id
		` + where + `
		ORDER BY lr.created_at DESC
		` + c.page(filter.Page, filter.Limit)

	rows, err := q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := make([]leave.Request, 0)
	for rows.Next() {
		var name string
		lr, err := scanLeaveRequest(rows, &name)
		if err != nil {
			return nil, 0, err
		}
		lr.EmployeeName = &name
		requests = append(requests, lr)
	}
	return requests, total, rows.Err()
}
