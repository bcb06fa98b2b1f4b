package calendar

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

type CreateEventRequest struct {
	Title          string   `json:"title" validate:"notblank,max=255"`
	Description    *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	StartAt        string   `json:"startAt" validate:"required"`
	EndAt          string   `json:"endAt" validate:"required"`
	AllDay         bool     `json:"allDay"`
	Type           string   `json:"type" validate:"required,oneof=meeting holiday training personal other"`
	Location       *string  `json:"location,omitempty" validate:"omitempty,max=255"`
	RecurrenceRule *string  `json:"recurrenceRule,omitempty" validate:"omitempty,max=500"`
	AttendeeIDs    []string `json:"attendeeIds,omitempty" validate:"omitempty,dive,uuid"`

	startAt time.Time
	endAt   time.Time
}

func (r *CreateEventRequest) Validate() error {
	errs := validator.Struct(r)
	var ok bool
	if r.StartAt != "" {
		if r.startAt, ok = parseEventTime(r.StartAt); !ok {
			errs.Add("startAt", "startAt must be an RFC3339 timestamp or YYYY-MM-DD date")
		}
	}
	if r.EndAt != "" {
		if r.endAt, ok = parseEventTime(r.EndAt); !ok {
			errs.Add("endAt", "endAt must be an RFC3339 timestamp or YYYY-MM-DD date")
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if r.AllDay {
		if r.endAt.Before(r.startAt) {
			return ErrInvalidTimeRange
		}
		r.startAt, r.endAt = normalizeAllDay(r.startAt, r.endAt)
	} else if !r.endAt.After(r.startAt) {
		return ErrInvalidTimeRange
	}

	if r.RecurrenceRule != nil && !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(*r.RecurrenceRule)), "FREQ=") {
		return ErrInvalidRecurrence
	}
	return nil
}

// Window returns the parsed event window; only meaningful after Validate succeeded.
func (r *CreateEventRequest) Window() (time.Time, time.Time) {
	return r.startAt, r.endAt
}

func parseEventTime(s string) (time.Time, bool) {
	if t, ok := validator.IsValidDateTime(s); ok {
		return t, true
	}
	return validator.IsValidDate(s)
}

type UpdateEventRequest struct {
	ID string `json:"-"`
	CreateEventRequest
}

type EventFilter struct {
	From *string
	To   *string
	Type *string

	from time.Time
	to   time.Time
}

// Validate defaults the range to the current month around now.
func (f *EventFilter) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	f.from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	f.to = f.from.AddDate(0, 1, 0)

	if f.From != nil {
		t, ok := parseEventTime(*f.From)
		if !ok {
			errs.Add("from", "from must be an RFC3339 timestamp or YYYY-MM-DD date")
		}
		f.from = t
	}
	if f.To != nil {
		t, ok := parseEventTime(*f.To)
		if !ok {
			errs.Add("to", "to must be an RFC3339 timestamp or YYYY-MM-DD date")
		}
		f.to = t
	}
	if f.Type != nil && !validator.IsInSlice(EventType(*f.Type), []EventType{
		EventTypeMeeting, EventTypeHoliday, EventTypeTraining, EventTypePersonal, EventTypeOther,
	}) {
		errs.Add("type", "type must be one of: meeting holiday training personal other")
	}
	if len(errs) > 0 {
		return errs
	}
	if !f.to.After(f.from) {
		return ErrInvalidTimeRange
	}
	return nil
}

// Range returns the resolved window; only meaningful after Validate succeeded.
func (f *EventFilter) Range() (time.Time, time.Time) {
	return f.from, f.to
}

type EventResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	StartAt        string    `json:"startAt"`
	EndAt          string    `json:"endAt"`
	AllDay         bool      `json:"allDay"`
	Type           EventType `json:"type"`
	Location       *string   `json:"location,omitempty"`
	CreatedBy      string    `json:"createdBy"`
	RecurrenceRule *string   `json:"recurrenceRule,omitempty"`
	AttendeeIDs    []string  `json:"attendeeIds"`
	CreatedAt      string    `json:"createdAt"`
	UpdatedAt      string    `json:"updatedAt"`
}

func ToResponse(e Event) EventResponse {
	attendees := e.AttendeeIDs
	if attendees == nil {
		attendees = []string{}
	}
	return EventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		StartAt:        e.StartAt.Format(time.RFC3339),
		EndAt:          e.EndAt.Format(time.RFC3339),
		AllDay:         e.AllDay,
		Type:           e.Type,
		Location:       e.Location,
		CreatedBy:      e.CreatedBy,
		RecurrenceRule: e.RecurrenceRule,
		AttendeeIDs:    attendees,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      e.UpdatedAt.Format(time.RFC3339),
	}
}
