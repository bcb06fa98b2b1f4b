package salary

import (
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

type CreateDepartmentRequest struct {
	OrganizationID string `json:"organizationId" validate:"required,uuid"`
	Name           string `json:"name" validate:"notblank,max=255"`
}

func (r *CreateDepartmentRequest) Validate() error {
	return validator.Struct(r).Err()
}

type DepartmentResponse struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
	CreatedAt      string `json:"createdAt"`
}

func ToDepartmentResponse(d Department) DepartmentResponse {
	return DepartmentResponse{
		ID:             d.ID,
		OrganizationID: d.OrganizationID,
		Name:           d.Name,
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
	}
}

type CreateSalaryRequest struct {
	EmployeeID    string  `json:"employeeId" validate:"required,uuid"`
	DepartmentID  string  `json:"departmentId" validate:"required,uuid"`
	HourlyRate    float64 `json:"hourlyRate" validate:"gt=0"`
	IsDefault     bool    `json:"isDefault"`
	EffectiveFrom string  `json:"effectiveFrom" validate:"required,date"`
	EffectiveTo   *string `json:"effectiveTo,omitempty" validate:"omitempty,date"`
}

func (r *CreateSalaryRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return checkRange(r.EffectiveFrom, r.EffectiveTo)
}

// Range returns the parsed effective dates; only meaningful after Validate succeeded.
func (r *CreateSalaryRequest) Range() (time.Time, *time.Time) {
	return parseRange(r.EffectiveFrom, r.EffectiveTo)
}

type UpdateSalaryRequest struct {
	ID            string   `json:"-"`
	HourlyRate    *float64 `json:"hourlyRate,omitempty" validate:"omitempty,gt=0"`
	IsActive      *bool    `json:"isActive,omitempty"`
	EffectiveFrom *string  `json:"effectiveFrom,omitempty" validate:"omitempty,date"`
	EffectiveTo   *string  `json:"effectiveTo,omitempty" validate:"omitempty,date"`
}

func (r *UpdateSalaryRequest) Validate() error {
	return validator.Struct(r).Err()
}

func checkRange(from string, to *string) error {
	start, end := parseRange(from, to)
	if end != nil && end.Before(start) {
		return ErrInvalidEffectiveRange
	}
	return nil
}

func parseRange(from string, to *string) (time.Time, *time.Time) {
	start, _ := validator.IsValidDate(from)
	if to == nil {
		return start, nil
	}
	end, _ := validator.IsValidDate(*to)
	return start, &end
}

type SalaryResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employeeId"`
	DepartmentID   string  `json:"departmentId"`
	DepartmentName *string `json:"departmentName,omitempty"`
	HourlyRate     float64 `json:"hourlyRate"`
	IsDefault      bool    `json:"isDefault"`
	IsActive       bool    `json:"isActive"`
	EffectiveFrom  string  `json:"effectiveFrom"`
	EffectiveTo    *string `json:"effectiveTo,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

func ToSalaryResponse(s DepartmentSalary) SalaryResponse {
	resp := SalaryResponse{
		ID:             s.ID,
		EmployeeID:     s.EmployeeID,
		DepartmentID:   s.DepartmentID,
		DepartmentName: s.DepartmentName,
		HourlyRate:     s.HourlyRate,
		IsDefault:      s.IsDefault,
		IsActive:       s.IsActive,
		EffectiveFrom:  s.EffectiveFrom.Format(validator.DateLayout),
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      s.UpdatedAt.Format(time.RFC3339),
	}
	if s.EffectiveTo != nil {
		to := s.EffectiveTo.Format(validator.DateLayout)
		resp.EffectiveTo = &to
	}
	return resp
}

type ResolutionResponse struct {
	EmployeeID   string  `json:"employeeId"`
	DepartmentID *string `json:"departmentId,omitempty"`
	HourlyRate   float64 `json:"hourlyRate"`
	Source       Source  `json:"source"`
	SalaryID     *string `json:"salaryId,omitempty"`
}
