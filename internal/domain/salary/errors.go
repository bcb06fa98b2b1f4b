package salary

import "errors"

var (
	ErrDepartmentNotFound    = errors.New("department not found")
	ErrDepartmentExists      = errors.New("department already exists in this organization")
	ErrSalaryNotFound        = errors.New("department salary not found")
	ErrSalaryExists          = errors.New("a salary record already exists for this employee and department")
	ErrDefaultMustBeActive   = errors.New("only an active salary record can be the default")
	ErrInvalidEffectiveRange = errors.New("effectiveTo must not be before effectiveFrom")
	ErrNoRateAvailable       = errors.New("no salary rate available for this employee")
)
