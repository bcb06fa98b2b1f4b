package leave

import "errors"

var (
	ErrLeaveRequestNotFound    = errors.New("leave request not found")
	ErrAlreadyProcessed        = errors.New("leave request already processed")
	ErrPolicyNotFound          = errors.New("no leave policy configured for this leave type")
	ErrInvalidDateRange        = errors.New("endDate must not be before startDate")
	ErrExceedsPerRequestLimit  = errors.New("leave duration exceeds the per-request limit")
	ErrInsufficientNotice      = errors.New("leave must be requested further in advance")
	ErrInsufficientBalance     = errors.New("insufficient leave balance")
	ErrOverlappingRequest      = errors.New("a pending or approved leave request already covers this period")
	ErrRejectionReasonRequired = errors.New("rejectionReason is required")
)
