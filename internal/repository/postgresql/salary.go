package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) salary.DepartmentRepository {
	return &departmentRepositoryImpl{db: db}
}

func scanDepartment(row pgx.Row) (salary.Department, error) {
	var d salary.Department
	if err := row.Scan(&d.ID, &d.OrganizationID, &d.Name, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.Department{}, salary.ErrDepartmentNotFound
		}
		if database.IsUniqueViolation(err, "uq_departments_org_name") {
			return salary.Department{}, salary.ErrDepartmentExists
		}
		return salary.Department{}, err
	}
	return d, nil
}

func (r *departmentRepositoryImpl) Create(ctx context.Context, dept salary.Department) (salary.Department, error) {
	q := GetQuerier(ctx, r.db)

	return scanDepartment(q.QueryRow(ctx, `
		INSERT INTO departments (id, organization_id, name)
		VALUES (uuidv7(), $1, $2)
		RETURNING id, organization_id, name, created_at`, dept.OrganizationID, dept.Name))
}

func (r *departmentRepositoryImpl) GetByID(ctx context.Context, id string) (salary.Department, error) {
	q := GetQuerier(ctx, r.db)

	return scanDepartment(q.QueryRow(ctx, `
		SELECT id, organization_id, name, created_at FROM departments WHERE id = $1`, id))
}

func (r *departmentRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string) ([]salary.Department, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, organization_id, name, created_at
		FROM departments
		WHERE organization_id = $1
		ORDER BY name`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	depts := make([]salary.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		depts = append(depts, d)
	}
	return depts, rows.Err()
}

const departmentSalaryColumns = `
	ds.id, ds.employee_id, ds.department_id, ds.hourly_rate::float8, ds.is_default, ds.is_active,
	ds.effective_from, ds.effective_to, ds.created_at, ds.updated_at`

type departmentSalaryRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentSalaryRepository(db *database.DB) salary.DepartmentSalaryRepository {
	return &departmentSalaryRepositoryImpl{db: db}
}

func scanDepartmentSalary(row pgx.Row, extra ...any) (salary.DepartmentSalary, error) {
	var s salary.DepartmentSalary
	dest := []any{
		&s.ID,
		&s.EmployeeID,
		&s.DepartmentID,
		&s.HourlyRate,
		&s.IsDefault,
		&s.IsActive,
		&s.EffectiveFrom,
		&s.EffectiveTo,
		&s.CreatedAt,
		&s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.DepartmentSalary{}, salary.ErrSalaryNotFound
		}
		if database.IsUniqueViolation(err, "uq_department_salaries_employee_department") {
			return salary.DepartmentSalary{}, salary.ErrSalaryExists
		}
		return salary.DepartmentSalary{}, err
	}
	return s, nil
}

func (r *departmentSalaryRepositoryImpl) Create(ctx context.Context, s salary.DepartmentSalary) (salary.DepartmentSalary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO department_salaries AS ds (id, employee_id, department_id, hourly_rate, is_default, is_active, effective_from, effective_to)
		VALUES (uuidv7(), $1, $2, $3, FALSE, $4, $5, $6)
		RETURNING ` + departmentSalaryColumns

	return scanDepartmentSalary(q.QueryRow(ctx, query,
		s.EmployeeID,
		s.DepartmentID,
		s.HourlyRate,
		s.IsActive,
		s.EffectiveFrom,
		s.EffectiveTo,
	))
}

func (r *departmentSalaryRepositoryImpl) GetByID(ctx context.Context, id string) (salary.DepartmentSalary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + departmentSalaryColumns + `, d.name
		FROM department_salaries ds
		JOIN departments d ON d.id = ds.department_id
		WHERE ds.id = $1`

	var name string
	s, err := scanDepartmentSalary(q.QueryRow(ctx, query, id), &name)
	if err != nil {
		return salary.DepartmentSalary{}, err
	}
	s.DepartmentName = &name
	return s, nil
}

// Update rewrites rate, activity and range. A deactivated record also loses its default flag.
func (r *departmentSalaryRepositoryImpl) Update(ctx context.Context, s salary.DepartmentSalary) (salary.DepartmentSalary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE department_salaries AS ds
		SET hourly_rate = $2, is_active = $3, is_default = ds.is_default AND $3,
			effective_from = $4, effective_to = $5, updated_at = NOW()
		WHERE ds.id = $1
		RETURNING ` + departmentSalaryColumns

	return scanDepartmentSalary(q.QueryRow(ctx, query,
		s.ID,
		s.HourlyRate,
		s.IsActive,
		s.EffectiveFrom,
		s.EffectiveTo,
	))
}

func (r *departmentSalaryRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]salary.DepartmentSalary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + departmentSalaryColumns + `, d.name
		FROM department_salaries ds
		JOIN departments d ON d.id = ds.department_id
		WHERE ds.employee_id = $1
		ORDER BY ds.is_default DESC, d.name ASC`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list department salaries: %w", err)
	}
	defer rows.Close()

	records := make([]salary.DepartmentSalary, 0)
	for rows.Next() {
		var name string
		s, err := scanDepartmentSalary(rows, &name)
		if err != nil {
			return nil, err
		}
		s.DepartmentName = &name
		records = append(records, s)
	}
	return records, rows.Err()
}

func (r *departmentSalaryRepositoryImpl) GetByEmployeeAndDepartment(ctx context.Context, employeeID, departmentID string) (salary.DepartmentSalary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + departmentSalaryColumns + `
		FROM department_salaries ds
		WHERE ds.employee_id = $1 AND ds.department_id = $2`

	return scanDepartmentSalary(q.QueryRow(ctx, query, employeeID, departmentID))
}

func (r *departmentSalaryRepositoryImpl) GetDefault(ctx context.Context, employeeID string) (salary.DepartmentSalary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + departmentSalaryColumns + `
		FROM department_salaries ds
		WHERE ds.employee_id = $1 AND ds.is_default`

	return scanDepartmentSalary(q.QueryRow(ctx, query, employeeID))
}

func (r *departmentSalaryRepositoryImpl) ClearDefault(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE department_salaries SET is_default = FALSE, updated_at = NOW()
		WHERE employee_id = $1 AND is_default`, employeeID)
	if err != nil {
		return fmt.Errorf("failed to clear default salary: %w", err)
	}
	return nil
}

// MarkDefault relies on uq_department_salaries_default to reject a concurrent second default.
func (r *departmentSalaryRepositoryImpl) MarkDefault(ctx context.Context, salaryID string) (salary.DepartmentSalary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE department_salaries AS ds SET is_default = TRUE, updated_at = NOW()
		WHERE ds.id = $1
		RETURNING ` + departmentSalaryColumns

	s, err := scanDepartmentSalary(q.QueryRow(ctx, query, salaryID))
	if err != nil && database.IsUniqueViolation(err, "uq_department_salaries_default") {
		return salary.DepartmentSalary{}, fmt.Errorf("concurrent default change for employee: %w", err)
	}
	return s, err
}
