package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const overtimeColumns = `
	ot.id, ot.employee_id, ot.date, ot.start_time, ot.end_time, ot.hours::float8, ot.reason, ot.type, ot.status,
	ot.approver_id, ot.approved_by, ot.approved_at, ot.rejection_reason, ot.cancelled_at,
	ot.created_at, ot.updated_at`

type overtimeRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.OvertimeRepository {
	return &overtimeRepositoryImpl{db: db}
}

func scanOvertime(row pgx.Row, extra ...any) (overtime.Request, error) {
	var o overtime.Request
	dest := []any{
		&o.ID,
		&o.EmployeeID,
		&o.Date,
		&o.StartTime,
		&o.EndTime,
		&o.Hours,
		&o.Reason,
		&o.Type,
		&o.Status,
		&o.ApproverID,
		&o.ApprovedBy,
		&o.ApprovedAt,
		&o.RejectionReason,
		&o.CancelledAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.Request{}, overtime.ErrOvertimeRequestNotFound
		}
		if database.IsUniqueViolation(err, "uq_overtime_employee_date_active") {
			return overtime.Request{}, overtime.ErrDuplicateDate
		}
		return overtime.Request{}, err
	}
	return o, nil
}

func (r *overtimeRepositoryImpl) Create(ctx context.Context, request overtime.Request) (overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtime_requests AS ot (id, employee_id, date, start_time, end_time, hours, reason, type, status, approver_id)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, 'pending', $8)
		RETURNING ` + overtimeColumns

	return scanOvertime(q.QueryRow(ctx, query,
		request.EmployeeID,
		request.Date,
		request.StartTime,
		request.EndTime,
		request.Hours,
		request.Reason,
		request.Type,
		request.ApproverID,
	))
}

func (r *overtimeRepositoryImpl) GetByID(ctx context.Context, id string) (overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + overtimeColumns + `, u.full_name
		FROM overtime_requests ot
		JOIN users u ON u.id = ot.employee_id
		WHERE ot.id = $1`

	var name string
	o, err := scanOvertime(q.QueryRow(ctx, query, id), &name)
	if err != nil {
		return overtime.Request{}, err
	}
	o.EmployeeName = &name
	return o, nil
}

func (r *overtimeRepositoryImpl) resolveMiss(ctx context.Context, id string, employeeID *string) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if employeeID != nil && current.EmployeeID != *employeeID {
		return overtime.ErrOvertimeRequestNotFound
	}
	return overtime.ErrAlreadyProcessed
}

func (r *overtimeRepositoryImpl) UpdatePending(ctx context.Context, request overtime.Request) (overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_requests AS ot
		SET date = $3, start_time = $4, end_time = $5, hours = $6, reason = $7, type = $8,
			approver_id = $9, updated_at = NOW()
		WHERE ot.id = $1 AND ot.employee_id = $2 AND ot.status = 'pending'
		RETURNING ` + overtimeColumns

	updated, err := scanOvertime(q.QueryRow(ctx, query,
		request.ID,
		request.EmployeeID,
		request.Date,
		request.StartTime,
		request.EndTime,
		request.Hours,
		request.Reason,
		request.Type,
		request.ApproverID,
	))
	if errors.Is(err, overtime.ErrOvertimeRequestNotFound) {
		return overtime.Request{}, r.resolveMiss(ctx, request.ID, &request.EmployeeID)
	}
	return updated, err
}

func (r *overtimeRepositoryImpl) Decide(ctx context.Context, id string, decision overtime.Decision) (overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_requests AS ot
		SET status = $2, approved_by = $3, approved_at = $4, rejection_reason = $5, updated_at = NOW()
		WHERE ot.id = $1 AND ot.status = 'pending'
		RETURNING ` + overtimeColumns

	decided, err := scanOvertime(q.QueryRow(ctx, query,
		id,
		decision.Status,
		decision.DecidedBy,
		decision.DecidedAt,
		decision.RejectionReason,
	))
	if errors.Is(err, overtime.ErrOvertimeRequestNotFound) {
		return overtime.Request{}, r.resolveMiss(ctx, id, nil)
	}
	return decided, err
}

func (r *overtimeRepositoryImpl) Cancel(ctx context.Context, id string, employeeID string, at time.Time) (overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_requests AS ot
		SET status = 'cancelled', cancelled_at = $3, updated_at = NOW()
		WHERE ot.id = $1 AND ot.employee_id = $2 AND ot.status = 'pending'
		RETURNING ` + overtimeColumns

	cancelled, err := scanOvertime(q.QueryRow(ctx, query, id, employeeID, at))
	if errors.Is(err, overtime.ErrOvertimeRequestNotFound) {
		return overtime.Request{}, r.resolveMiss(ctx, id, &employeeID)
	}
	return cancelled, err
}

func (r *overtimeRepositoryImpl) ExistsActiveOnDate(ctx context.Context, employeeID string, date time.Time, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM overtime_requests
			WHERE employee_id = $1 AND date = $2
			  AND status IN ('pending', 'approved')
			  AND ($3::uuid IS NULL OR id <> $3::uuid)
		)`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, date, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overtime date: %w", err)
	}
	return exists, nil
}

func (r *overtimeRepositoryImpl) SumHours(ctx context.Context, employeeID string, from, to time.Time) (map[overtime.Status]float64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT status, COALESCE(SUM(hours), 0)::float8
		FROM overtime_requests
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY status`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum overtime hours: %w", err)
	}
	defer rows.Close()

	sums := make(map[overtime.Status]float64)
	for rows.Next() {
		var status overtime.Status
		var hours float64
		if err := rows.Scan(&status, &hours); err != nil {
			return nil, err
		}
		sums[status] = hours
	}
	return sums, rows.Err()
}

func (r *overtimeRepositoryImpl) List(ctx context.Context, filter overtime.OvertimeFilter) ([]overtime.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	var c conditions
	if filter.EmployeeID != nil {
		c.add("ot.employee_id = ?", *filter.EmployeeID)
	}
	if filter.Status != nil {
		c.add("ot.status = ?", *filter.Status)
	}
	if filter.StartDate != nil {
		c.add("ot.date >= ?::date", *filter.StartDate)
	}
	if filter.EndDate != nil {
		c.add("ot.date <= ?::date", *filter.EndDate)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM overtime_requests ot `+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count overtime requests: %w", err)
	}

	where := c.where()
	query := `
		SELECT ` + overtimeColumns + `, u.full_name
		FROM overtime_requests ot
		JOIN users u ON u.id = ot.employee_id
		` + where + `
		ORDER BY ot.date DESC, ot.created_at DESC
		` + c.page(filter.Page, filter.Limit)

	rows, err := q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list overtime requests: %w", err)
	}
	defer rows.Close()

	requests := make([]overtime.Request, 0)
	for rows.Next() {
		var name string
		o, err := scanOvertime(rows, &name)
		if err != nil {
			return nil, 0, err
		}
		o.EmployeeName = &name
		requests = append(requests, o)
	}
	return requests, total, rows.Err()
}
