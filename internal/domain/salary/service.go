package salary

import (
	"context"
)

type SalaryService interface {
	CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error)
	ListDepartments(ctx context.Context, organizationID string) ([]DepartmentResponse, error)

	Create(ctx context.Context, req CreateSalaryRequest) (SalaryResponse, error)
	Update(ctx context.Context, req UpdateSalaryRequest) (SalaryResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]SalaryResponse, error)
	Deactivate(ctx context.Context, salaryID string) (SalaryResponse, error)

	// SetDefault makes salaryID the employee's only default record.
	SetDefault(ctx context.Context, salaryID string) (SalaryResponse, error)

	// Resolve picks the department rate, then the default rate, then the organization fallback.
	Resolve(ctx context.Context, employeeID string, departmentID *string) (ResolutionResponse, error)
}
