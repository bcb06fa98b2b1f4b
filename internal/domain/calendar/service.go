package calendar

import (
	"context"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
)

type CalendarService interface {
	Create(ctx context.Context, principal user.Principal, req CreateEventRequest) (EventResponse, error)
	List(ctx context.Context, principal user.Principal, filter EventFilter) ([]EventResponse, error)
	Get(ctx context.Context, principal user.Principal, eventID string) (EventResponse, error)
	Update(ctx context.Context, principal user.Principal, req UpdateEventRequest) (EventResponse, error)
	Delete(ctx context.Context, principal user.Principal, eventID string) error
}
