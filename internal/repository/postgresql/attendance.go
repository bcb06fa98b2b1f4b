package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	a.id, a.employee_id, a.work_date,
	a.check_in_at, a.check_in_image_url, a.check_in_latitude, a.check_in_longitude, a.check_in_address,
	a.check_out_at, a.check_out_image_url, a.check_out_latitude, a.check_out_longitude, a.check_out_address,
	a.created_at, a.updated_at`

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

type nullableEntry struct {
	at        *time.Time
	imageURL  *string
	latitude  *float64
	longitude *float64
	address   *string
}

func (n nullableEntry) entry() *attendance.Entry {
	if n.at == nil {
		return nil
	}
	e := &attendance.Entry{At: *n.at}
	if n.imageURL != nil {
		e.ImageURL = *n.imageURL
	}
	if n.latitude != nil {
		e.Location.Latitude = *n.latitude
	}
	if n.longitude != nil {
		e.Location.Longitude = *n.longitude
	}
	if n.address != nil {
		e.Location.Address = *n.address
	}
	return e
}

func scanAttendance(row pgx.Row, extra ...any) (attendance.Attendance, error) {
	var a attendance.Attendance
	var in, out nullableEntry

	dest := []any{
		&a.ID, &a.EmployeeID, &a.WorkDate,
		&in.at, &in.imageURL, &in.latitude, &in.longitude, &in.address,
		&out.at, &out.imageURL, &out.latitude, &out.longitude, &out.address,
		&a.CreatedAt, &a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return attendance.Attendance{}, err
	}
	a.CheckIn = in.entry()
	a.CheckOut = out.entry()
	return a, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances a WHERE a.employee_id = $1 AND a.work_date = $2`
	a, err := scanAttendance(q.QueryRow(ctx, query, employeeID, workDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

// RecordCheckIn implements attendance.AttendanceRepository. The conflict branch only fires
// while check_in_at is still empty, so a concurrent second check-in returns no row.
func (r *attendanceRepositoryImpl) RecordCheckIn(ctx context.Context, employeeID string, workDate time.Time, entry attendance.Entry) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances AS a (
			id, employee_id, work_date,
			check_in_at, check_in_image_url, check_in_latitude, check_in_longitude, check_in_address
		)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, work_date) DO UPDATE
		SET check_in_at = EXCLUDED.check_in_at,
			check_in_image_url = EXCLUDED.check_in_image_url,
			check_in_latitude = EXCLUDED.check_in_latitude,
			check_in_longitude = EXCLUDED.check_in_longitude,
			check_in_address = EXCLUDED.check_in_address,
			updated_at = NOW()
		WHERE a.check_in_at IS NULL
		RETURNING ` + attendanceColumns

	a, err := scanAttendance(q.QueryRow(ctx, query,
		employeeID,
		workDate,
		entry.At,
		entry.ImageURL,
		entry.Location.Latitude,
		entry.Location.Longitude,
		entry.Location.Address,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to record check-in: %w", err)
	}
	return a, nil
}

// RecordCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) RecordCheckOut(ctx context.Context, employeeID string, workDate time.Time, entry attendance.Entry) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances AS a
		SET check_out_at = $3,
			check_out_image_url = $4,
			check_out_latitude = $5,
			check_out_longitude = $6,
			check_out_address = $7,
			updated_at = NOW()
		WHERE a.employee_id = $1 AND a.work_date = $2
		  AND a.check_in_at IS NOT NULL AND a.check_out_at IS NULL
		RETURNING ` + attendanceColumns

	a, err := scanAttendance(q.QueryRow(ctx, query,
		employeeID,
		workDate,
		entry.At,
		entry.ImageURL,
		entry.Location.Latitude,
		entry.Location.Longitude,
		entry.Location.Address,
	))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return attendance.Attendance{}, fmt.Errorf("failed to record check-out: %w", err)
	}

	current, getErr := r.GetByEmployeeAndDate(ctx, employeeID, workDate)
	switch {
	case errors.Is(getErr, attendance.ErrAttendanceNotFound):
		return attendance.Attendance{}, attendance.ErrNotCheckedInYet
	case getErr != nil:
		return attendance.Attendance{}, getErr
	case current.CheckIn == nil:
		return attendance.Attendance{}, attendance.ErrNotCheckedInYet
	default:
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1 AND a.work_date BETWEEN $2 AND $3
		ORDER BY a.work_date ASC`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Attendance, 0)
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

// List implements attendance.AttendanceRepository, newest work-date first.
func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	var c conditions
	if filter.EmployeeID != nil {
		c.add("a.employee_id = ?", *filter.EmployeeID)
	}
	if filter.StartDate != nil {
		c.add("a.work_date >= ?::date", *filter.StartDate)
	}
	if filter.EndDate != nil {
		c.add("a.work_date <= ?::date", *filter.EndDate)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendances a `+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	where := c.where()
	query := `
		SELECT ` + attendanceColumns + `, u.full_name
		FROM attendances a
		JOIN users u ON u.id = a.employee_id
		` + where + `
		ORDER BY a.work_date DESC, u.full_name ASC
		` + c.page(filter.Page, filter.Limit)

	rows, err := q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Attendance, 0)
	for rows.Next() {
		var name string
		a, err := scanAttendance(rows, &name)
		if err != nil {
			return nil, 0, err
		}
		a.EmployeeName = &name
		records = append(records, a)
	}
	return records, total, rows.Err()
}

// ClaimMissingCheckOuts implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ClaimMissingCheckOuts(ctx context.Context, workDate time.Time, at time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances AS a
		SET checkout_reminded_at = $2
		WHERE a.work_date = $1
		  AND a.check_in_at IS NOT NULL AND a.check_out_at IS NULL
		  AND a.checkout_reminded_at IS NULL
		RETURNING ` + attendanceColumns

	rows, err := q.Query(ctx, query, workDate, at)
	if err != nil {
		return nil, fmt.Errorf("failed to claim missing check-outs: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Attendance, 0)
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
