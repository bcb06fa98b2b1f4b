package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

type missingCheckOutClaimer interface {
	ClaimMissingCheckOuts(ctx context.Context, workDate time.Time, at time.Time) ([]attendance.Attendance, error)
}

// AttendanceJobs reminds employees who checked in yesterday but never checked out.
type AttendanceJobs struct {
	attendances missingCheckOutClaimer
	notifier    notification.Notifier
	loc         *time.Location
	now         func() time.Time
}

func NewAttendanceJobs(attendances missingCheckOutClaimer, notifier notification.Notifier, loc *time.Location) *AttendanceJobs {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceJobs{
		attendances: attendances,
		notifier:    notifier,
		loc:         loc,
		now:         time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("remind_missing_checkout", time.Hour, j.RemindMissingCheckOut)
}

// RemindMissingCheckOut notifies the owner of every record from the previous work-date that
// was checked in but never checked out. Each record is claimed in storage before its reminder
// goes out and is never claimed twice, whatever the tick timing or number of replicas.
func (j *AttendanceJobs) RemindMissingCheckOut(ctx context.Context) error {
	now := j.now()
	yesterday := attendance.WorkDate(now, j.loc).AddDate(0, 0, -1)

	open, err := j.attendances.ClaimMissingCheckOuts(ctx, yesterday, now)
	if err != nil {
		return fmt.Errorf("failed to claim missing check-outs: %w", err)
	}
	if len(open) == 0 {
		return nil
	}

	date := yesterday.Format(validator.DateLayout)
	for _, record := range open {
		j.notifier.Notify(ctx, notification.NotifyRequest{
			RecipientIDs: []string{record.EmployeeID},
			Type:         notification.TypeAttendance,
			Priority:     notification.PriorityHigh,
			Title:        "Missing Check-Out",
			Message:      fmt.Sprintf("You checked in on %s but never checked out. Please contact HR to correct it.", date),
			Data: map[string]any{
				"attendanceId": record.ID,
				"workDate":     date,
			},
		})
	}

	slog.Info("Cron: reminded missing check-outs", "work_date", date, "count", len(open))
	return nil
}
