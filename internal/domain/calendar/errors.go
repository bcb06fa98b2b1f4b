package calendar

import "errors"

// Calendar domain errors
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrEventConflict        = errors.New("event overlaps an existing event of a participant")
	ErrInvalidTimeRange     = errors.New("end time must be after start time")
	ErrInvalidRecurrence    = errors.New("recurrence rule must start with FREQ=")
	ErrHolidayRequiresAdmin = errors.New("only admin or hr can manage holidays")
)
