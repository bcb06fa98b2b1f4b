package calendar

import (
	"slices"
	"time"
)

type EventType string

const (
	EventTypeMeeting  EventType = "meeting"
	EventTypeHoliday  EventType = "holiday"
	EventTypeTraining EventType = "training"
	EventTypePersonal EventType = "personal"
	EventTypeOther    EventType = "other"
)

type Event struct {
	ID             string
	Title          string
	Description    *string
	StartAt        time.Time
	EndAt          time.Time
	AllDay         bool
	Type           EventType
	Location       *string
	CreatedBy      string
	RecurrenceRule *string
	AttendeeIDs    []string
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Participants returns the creator followed by attendees, without duplicates.
func (e Event) Participants() []string {
	ids := []string{e.CreatedBy}
	for _, id := range e.AttendeeIDs {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// VisibleTo reports whether userID may read the event.
func (e Event) VisibleTo(userID string) bool {
	if e.IsDeleted {
		return false
	}
	return e.Type == EventTypeHoliday || slices.Contains(e.Participants(), userID)
}

// normalizeAllDay stretches an all-day event over whole days in UTC.
func normalizeAllDay(start, end time.Time) (time.Time, time.Time) {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return start, end
}
