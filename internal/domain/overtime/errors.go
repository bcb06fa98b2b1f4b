package overtime

import "errors"

var (
	ErrOvertimeRequestNotFound = errors.New("overtime request not found")
	ErrAlreadyProcessed        = errors.New("overtime request already processed")
	ErrDuplicateDate           = errors.New("an overtime request already exists for this date")
	ErrHoursOutOfRange         = errors.New("overtime must be between 0.5 and 12 hours")
	ErrRejectionReasonRequired = errors.New("rejectionReason is required")
)
