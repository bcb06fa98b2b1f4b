package salary

import "time"

type Department struct {
	ID             string
	OrganizationID string
	Name           string
	CreatedAt      time.Time
}

// DepartmentSalary is an employee's hourly rate for work done in one department.
type DepartmentSalary struct {
	ID            string
	EmployeeID    string
	DepartmentID  string
	HourlyRate    float64
	IsDefault     bool
	IsActive      bool
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Join
	DepartmentName *string
}

// EffectiveOn reports whether the record is active and its date range covers day.
func (s DepartmentSalary) EffectiveOn(day time.Time) bool {
	if !s.IsActive || day.Before(s.EffectiveFrom) {
		return false
	}
	return s.EffectiveTo == nil || !day.After(*s.EffectiveTo)
}

type Source string

const (
	SourceDepartment Source = "department"
	SourceDefault    Source = "default"
	SourceFallback   Source = "fallback"
)

// Resolution is the rate that applies to an employee and where it came from.
type Resolution struct {
	HourlyRate float64
	Source     Source
	SalaryID   *string
}
