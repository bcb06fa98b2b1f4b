package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestDurationDays(t *testing.T) {
	assert.Equal(t, 1, DurationDays(date("2026-03-02"), date("2026-03-02")))
	assert.Equal(t, 5, DurationDays(date("2026-03-02"), date("2026-03-06")))
	assert.Equal(t, 3, DurationDays(date("2024-02-28"), date("2024-03-01")))
}

func TestPolicy_Evaluate(t *testing.T) {
	annual := Policy{LeaveType: TypeAnnual, MaxDaysPerYear: 12, MaxDaysPerRequest: 5, MinAdvanceNoticeDays: 3}
	today := date("2026-03-01")

	tests := []struct {
		name     string
		start    string
		duration int
		used     int
		wantErr  error
	}{
		{"within limits", "2026-03-10", 3, 0, nil},
		{"exactly remaining", "2026-03-10", 2, 10, nil},
		{"one over remaining", "2026-03-10", 3, 10, ErrInsufficientBalance},
		{"per request cap", "2026-03-10", 6, 0, ErrExceedsPerRequestLimit},
		{"exactly per request cap", "2026-03-10", 5, 0, nil},
		{"short notice", "2026-03-03", 1, 0, ErrInsufficientNotice},
		{"exact notice", "2026-03-04", 1, 0, nil},
		{"balance exhausted", "2026-03-10", 1, 12, ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := annual.Evaluate(date(tt.start), tt.duration, today, tt.used)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPolicy_UnlimitedWhenZero(t *testing.T) {
	unpaid := Policy{LeaveType: TypeUnpaid}
	assert.NoError(t, unpaid.Evaluate(date("2026-03-01"), 30, date("2026-03-01"), 100))
}

func TestPolicy_Remaining(t *testing.T) {
	p := Policy{MaxDaysPerYear: 12}
	assert.Equal(t, 12, p.Remaining(0))
	assert.Equal(t, 0, p.Remaining(15))
}
