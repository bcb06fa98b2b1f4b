package overtime

import (
	"testing"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitOvertimeRequest_Hours(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantHours float64
		wantErr   error
	}{
		{"evening block", "18:00", "22:00", 4, nil},
		{"minimum", "18:00", "18:30", 0.5, nil},
		{"maximum", "08:00", "20:00", 12, nil},
		{"quarter hours", "17:15", "19:00", 1.75, nil},
		{"too short", "18:00", "18:20", 0, ErrHoursOutOfRange},
		{"too long", "06:00", "18:30", 0, ErrHoursOutOfRange},
		{"end before start", "22:00", "18:00", 0, ErrHoursOutOfRange},
		{"zero length", "18:00", "18:00", 0, ErrHoursOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := SubmitOvertimeRequest{
				Date: "2026-01-15", StartTime: tt.start, EndTime: tt.end,
				Reason: "release", Type: "regular",
			}
			err := req.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			date, hours := req.Derived()
			assert.Equal(t, tt.wantHours, hours)
			assert.Equal(t, "2026-01-15", date.Format("2006-01-02"))
		})
	}
}

func TestSubmitOvertimeRequest_FieldErrors(t *testing.T) {
	req := SubmitOvertimeRequest{Date: "15-01-2026", StartTime: "6pm", EndTime: "", Type: "night"}
	var verrs validator.ValidationErrors
	require.ErrorAs(t, req.Validate(), &verrs)

	m := verrs.ToMap()
	assert.Contains(t, m, "date")
	assert.Contains(t, m, "startTime")
	assert.Contains(t, m, "endTime")
	assert.Contains(t, m, "reason")
	assert.Contains(t, m, "type")
}

func TestRejectOvertimeRequest_RequiresReason(t *testing.T) {
	assert.ErrorIs(t, (&RejectOvertimeRequest{RejectionReason: "  "}).Validate(), ErrRejectionReasonRequired)
	assert.NoError(t, (&RejectOvertimeRequest{RejectionReason: "budget"}).Validate())
}
