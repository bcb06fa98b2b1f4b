package leave

import (
	"fmt"
	"time"
)

// Evaluate checks a prospective request of duration days starting on start against p.
// today is the submission date and approvedThisYear the days already approved for the type.
func (p Policy) Evaluate(start time.Time, duration int, today time.Time, approvedThisYear int) error {
	if p.MaxDaysPerRequest > 0 && duration > p.MaxDaysPerRequest {
		return fmt.Errorf("%w: requested %d days, at most %d allowed", ErrExceedsPerRequestLimit, duration, p.MaxDaysPerRequest)
	}

	if p.MinAdvanceNoticeDays > 0 {
		notice := int(start.Sub(today).Hours() / 24)
		if notice < p.MinAdvanceNoticeDays {
			return fmt.Errorf("%w: %d days notice required, %d given", ErrInsufficientNotice, p.MinAdvanceNoticeDays, notice)
		}
	}

	if p.MaxDaysPerYear > 0 {
		remaining := p.Remaining(approvedThisYear)
		if duration > remaining {
			return fmt.Errorf("%w: requested %d days, %d remaining", ErrInsufficientBalance, duration, remaining)
		}
	}

	return nil
}

// Remaining is the annual allowance left after approved days, never negative.
func (p Policy) Remaining(approvedThisYear int) int {
	remaining := p.MaxDaysPerYear - approvedThisYear
	if remaining < 0 {
		return 0
	}
	return remaining
}
