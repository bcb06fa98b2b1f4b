package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

// Summarize aggregates records falling in [from, to] and lists every day of the range.
func Summarize(records []Attendance, from, to time.Time) PeriodSummaryResponse {
	byDate := make(map[string]Attendance, len(records))
	for _, r := range records {
		byDate[r.WorkDate.Format(validator.DateLayout)] = r
	}

	summary := PeriodSummaryResponse{
		From: from.Format(validator.DateLayout),
		To:   to.Format(validator.DateLayout),
	}

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(validator.DateLayout)
		entry := DayEntry{Date: key, Weekday: day.Weekday().String()}

		if rec, ok := byDate[key]; ok {
			resp := ToResponse(rec)
			entry.Attendance = &resp
			if rec.CheckIn != nil {
				summary.DaysPresent++
			}
			if rec.State() == StateCheckedOut {
				summary.CompleteDays++
				summary.TotalHours += rec.WorkedHours()
			}
		}
		summary.Days = append(summary.Days, entry)
	}

	summary.TotalHours = roundHours(summary.TotalHours)
	if summary.CompleteDays > 0 {
		summary.AverageHours = math.Round(summary.TotalHours/float64(summary.CompleteDays)*100) / 100
	}
	return summary
}
