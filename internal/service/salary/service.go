package salary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
)

type SalaryServiceImpl struct {
	salary.DepartmentSalaryRepository
	departments   salary.DepartmentRepository
	users         user.UserRepository
	organizations organization.OrganizationRepository
	transactor    database.Transactor
	fallbackRate  float64
	now           func() time.Time
}

// NewSalaryService resolves to fallbackRate when neither a salary record nor the
// employee's organization provides a rate.
func NewSalaryService(
	salaryRepository salary.DepartmentSalaryRepository,
	departmentRepository salary.DepartmentRepository,
	userRepository user.UserRepository,
	organizationRepository organization.OrganizationRepository,
	transactor database.Transactor,
	fallbackRate float64,
) salary.SalaryService {
	return &SalaryServiceImpl{
		DepartmentSalaryRepository: salaryRepository,
		departments:                departmentRepository,
		users:                      userRepository,
		organizations:              organizationRepository,
		transactor:                 transactor,
		fallbackRate:               fallbackRate,
		now:                        time.Now,
	}
}

func (s *SalaryServiceImpl) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateDepartment implements salary.SalaryService.
func (s *SalaryServiceImpl) CreateDepartment(ctx context.Context, req salary.CreateDepartmentRequest) (salary.DepartmentResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.DepartmentResponse{}, err
	}
	if _, err := s.organizations.GetByID(ctx, req.OrganizationID); err != nil {
		return salary.DepartmentResponse{}, err
	}

	dept, err := s.departments.Create(ctx, salary.Department{
		OrganizationID: req.OrganizationID,
		Name:           strings.TrimSpace(req.Name),
	})
	if err != nil {
		return salary.DepartmentResponse{}, err
	}
	return salary.ToDepartmentResponse(dept), nil
}

// ListDepartments implements salary.SalaryService.
func (s *SalaryServiceImpl) ListDepartments(ctx context.Context, organizationID string) ([]salary.DepartmentResponse, error) {
	depts, err := s.departments.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	resp := make([]salary.DepartmentResponse, len(depts))
	for i, d := range depts {
		resp[i] = salary.ToDepartmentResponse(d)
	}
	return resp, nil
}

// Create implements salary.SalaryService. A record created as default replaces the previous default
// in the same transaction.
func (s *SalaryServiceImpl) Create(ctx context.Context, req salary.CreateSalaryRequest) (salary.SalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryResponse{}, err
	}
	employee, err := s.users.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return salary.SalaryResponse{}, err
	}
	if employee.IsDeleted {
		return salary.SalaryResponse{}, user.ErrUserNotFound
	}
	if _, err := s.departments.GetByID(ctx, req.DepartmentID); err != nil {
		return salary.SalaryResponse{}, err
	}

	from, to := req.Range()
	var created salary.DepartmentSalary
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.DepartmentSalaryRepository.Create(ctx, salary.DepartmentSalary{
			EmployeeID:    req.EmployeeID,
			DepartmentID:  req.DepartmentID,
			HourlyRate:    req.HourlyRate,
			IsActive:      true,
			EffectiveFrom: from,
			EffectiveTo:   to,
		})
		if err != nil {
			return err
		}
		if req.IsDefault {
			record, err = s.swapDefault(ctx, record)
			if err != nil {
				return err
			}
		}
		created = record
		return nil
	})
	if err != nil {
		return salary.SalaryResponse{}, err
	}

	slog.Info("Department salary created", "salary_id", created.ID, "employee_id", created.EmployeeID, "department_id", created.DepartmentID, "is_default", created.IsDefault)
	return salary.ToSalaryResponse(created), nil
}

// Update implements salary.SalaryService.
func (s *SalaryServiceImpl) Update(ctx context.Context, req salary.UpdateSalaryRequest) (salary.SalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryResponse{}, err
	}

	current, err := s.DepartmentSalaryRepository.GetByID(ctx, req.ID)
	if err != nil {
		return salary.SalaryResponse{}, err
	}

	if req.HourlyRate != nil {
		current.HourlyRate = *req.HourlyRate
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	if req.EffectiveFrom != nil {
		current.EffectiveFrom, _ = time.Parse(time.DateOnly, *req.EffectiveFrom)
	}
	if req.EffectiveTo != nil {
		to, _ := time.Parse(time.DateOnly, *req.EffectiveTo)
		current.EffectiveTo = &to
	}
	if current.EffectiveTo != nil && current.EffectiveTo.Before(current.EffectiveFrom) {
		return salary.SalaryResponse{}, salary.ErrInvalidEffectiveRange
	}

	updated, err := s.DepartmentSalaryRepository.Update(ctx, current)
	if err != nil {
		return salary.SalaryResponse{}, err
	}
	return salary.ToSalaryResponse(updated), nil
}

// Deactivate implements salary.SalaryService.
func (s *SalaryServiceImpl) Deactivate(ctx context.Context, salaryID string) (salary.SalaryResponse, error) {
	inactive := false
	return s.Update(ctx, salary.UpdateSalaryRequest{ID: salaryID, IsActive: &inactive})
}

// ListByEmployee implements salary.SalaryService.
func (s *SalaryServiceImpl) ListByEmployee(ctx context.Context, employeeID string) ([]salary.SalaryResponse, error) {
	records, err := s.DepartmentSalaryRepository.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salaries: %w", err)
	}
	resp := make([]salary.SalaryResponse, len(records))
	for i, r := range records {
		resp[i] = salary.ToSalaryResponse(r)
	}
	return resp, nil
}

// SetDefault implements salary.SalaryService.
func (s *SalaryServiceImpl) SetDefault(ctx context.Context, salaryID string) (salary.SalaryResponse, error) {
	var marked salary.DepartmentSalary
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.DepartmentSalaryRepository.GetByID(ctx, salaryID)
		if err != nil {
			return err
		}
		marked, err = s.swapDefault(ctx, record)
		return err
	})
	if err != nil {
		return salary.SalaryResponse{}, err
	}

	slog.Info("Default salary changed", "salary_id", marked.ID, "employee_id", marked.EmployeeID)
	return salary.ToSalaryResponse(marked), nil
}

// swapDefault must run inside a transaction: between the clear and the mark the employee has no default.
func (s *SalaryServiceImpl) swapDefault(ctx context.Context, record salary.DepartmentSalary) (salary.DepartmentSalary, error) {
	if !record.IsActive {
		return salary.DepartmentSalary{}, salary.ErrDefaultMustBeActive
	}
	if record.IsDefault {
		return record, nil
	}
	if err := s.DepartmentSalaryRepository.ClearDefault(ctx, record.EmployeeID); err != nil {
		return salary.DepartmentSalary{}, err
	}
	return s.DepartmentSalaryRepository.MarkDefault(ctx, record.ID)
}

// Resolve implements salary.SalaryService.
func (s *SalaryServiceImpl) Resolve(ctx context.Context, employeeID string, departmentID *string) (salary.ResolutionResponse, error) {
	employee, err := s.users.GetByID(ctx, employeeID)
	if err != nil {
		return salary.ResolutionResponse{}, err
	}
	if employee.IsDeleted {
		return salary.ResolutionResponse{}, user.ErrUserNotFound
	}

	resolution, err := s.resolve(ctx, employee, departmentID)
	if err != nil {
		return salary.ResolutionResponse{}, err
	}
	return salary.ResolutionResponse{
		EmployeeID:   employeeID,
		DepartmentID: departmentID,
		HourlyRate:   resolution.HourlyRate,
		Source:       resolution.Source,
		SalaryID:     resolution.SalaryID,
	}, nil
}

func (s *SalaryServiceImpl) resolve(ctx context.Context, employee user.User, departmentID *string) (salary.Resolution, error) {
	today := s.today()

	if departmentID != nil {
		record, err := s.DepartmentSalaryRepository.GetByEmployeeAndDepartment(ctx, employee.ID, *departmentID)
		switch {
		case err == nil && record.EffectiveOn(today):
			return salary.Resolution{HourlyRate: record.HourlyRate, Source: salary.SourceDepartment, SalaryID: &record.ID}, nil
		case err != nil && !errors.Is(err, salary.ErrSalaryNotFound):
			return salary.Resolution{}, err
		}
	}

	record, err := s.DepartmentSalaryRepository.GetDefault(ctx, employee.ID)
	switch {
	case err == nil && record.IsActive:
		return salary.Resolution{HourlyRate: record.HourlyRate, Source: salary.SourceDefault, SalaryID: &record.ID}, nil
	case err != nil && !errors.Is(err, salary.ErrSalaryNotFound):
		return salary.Resolution{}, err
	}

	rate := s.fallbackRate
	if employee.OrganizationID != nil {
		org, err := s.organizations.GetByID(ctx, *employee.OrganizationID)
		if err != nil && !errors.Is(err, organization.ErrOrganizationNotFound) {
			return salary.Resolution{}, err
		}
		if err == nil && org.FallbackHourlyRate != nil {
			rate = *org.FallbackHourlyRate
		}
	}
	if rate <= 0 {
		return salary.Resolution{}, salary.ErrNoRateAvailable
	}
	return salary.Resolution{HourlyRate: rate, Source: salary.SourceFallback}, nil
}
