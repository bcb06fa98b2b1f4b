package attendance

import (
	"context"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
)

type AttendanceService interface {
	CheckIn(ctx context.Context, principal user.Principal, req CheckRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, principal user.Principal, req CheckRequest) (AttendanceResponse, error)

	TodaySummary(ctx context.Context, principal user.Principal) (TodaySummaryResponse, error)
	WeekSummary(ctx context.Context, principal user.Principal) (PeriodSummaryResponse, error)
	MonthSummary(ctx context.Context, principal user.Principal, period MonthQuery) (PeriodSummaryResponse, error)
	History(ctx context.Context, principal user.Principal, filter HistoryFilter) (ListAttendanceResponse, error)
	MonthlyDetails(ctx context.Context, principal user.Principal, period MonthQuery) (MonthlyDetailsResponse, error)

	List(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
}
