package salary

import (
	"context"
)

type DepartmentRepository interface {
	Create(ctx context.Context, dept Department) (Department, error)
	GetByID(ctx context.Context, id string) (Department, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]Department, error)
}

type DepartmentSalaryRepository interface {
	Create(ctx context.Context, s DepartmentSalary) (DepartmentSalary, error)
	GetByID(ctx context.Context, id string) (DepartmentSalary, error)
	Update(ctx context.Context, s DepartmentSalary) (DepartmentSalary, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]DepartmentSalary, error)

	// GetByEmployeeAndDepartment returns ErrSalaryNotFound when no record links the pair.
	GetByEmployeeAndDepartment(ctx context.Context, employeeID, departmentID string) (DepartmentSalary, error)
	// GetDefault returns ErrSalaryNotFound when the employee has no default record.
	GetDefault(ctx context.Context, employeeID string) (DepartmentSalary, error)

	// ClearDefault unsets the default flag on every record of the employee.
	ClearDefault(ctx context.Context, employeeID string) error
	// MarkDefault sets the default flag on one record.
	MarkDefault(ctx context.Context, salaryID string) (DepartmentSalary, error)
}
