package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_VisibleTo(t *testing.T) {
	e := Event{CreatedBy: "u1", AttendeeIDs: []string{"u2", "u1"}, Type: EventTypeMeeting}

	assert.Equal(t, []string{"u1", "u2"}, e.Participants())
	assert.True(t, e.VisibleTo("u1"))
	assert.True(t, e.VisibleTo("u2"))
	assert.False(t, e.VisibleTo("u3"))

	e.Type = EventTypeHoliday
	assert.True(t, e.VisibleTo("u3"), "holidays are visible to everyone")

	e.IsDeleted = true
	assert.False(t, e.VisibleTo("u1"))
}

func TestCreateEventRequest_Validate(t *testing.T) {
	t.Run("end before start", func(t *testing.T) {
		req := CreateEventRequest{Title: "Standup", Type: "meeting", StartAt: "2026-04-01T10:00:00Z", EndAt: "2026-04-01T09:00:00Z"}
		assert.ErrorIs(t, req.Validate(), ErrInvalidTimeRange)
	})

	t.Run("all day single date", func(t *testing.T) {
		req := CreateEventRequest{Title: "Founders day", Type: "holiday", StartAt: "2026-04-01", EndAt: "2026-04-01", AllDay: true}
		require.NoError(t, req.Validate())
		start, end := req.Window()
		assert.Equal(t, 24*time.Hour, end.Sub(start))
	})

	t.Run("recurrence rule", func(t *testing.T) {
		bad := "WEEKLY"
		req := CreateEventRequest{Title: "Sync", Type: "meeting", StartAt: "2026-04-01T10:00:00Z", EndAt: "2026-04-01T11:00:00Z", RecurrenceRule: &bad}
		assert.ErrorIs(t, req.Validate(), ErrInvalidRecurrence)

		good := "FREQ=WEEKLY;BYDAY=MO"
		req.RecurrenceRule = &good
		assert.NoError(t, req.Validate())
	})

	t.Run("unknown type", func(t *testing.T) {
		req := CreateEventRequest{Title: "Party", Type: "party", StartAt: "2026-04-01T10:00:00Z", EndAt: "2026-04-01T11:00:00Z"}
		assert.Error(t, req.Validate())
	})
}

func TestEventFilter_Validate(t *testing.T) {
	now := time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)

	var f EventFilter
	require.NoError(t, f.Validate(now))
	from, to := f.Range()
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), to)

	bad := "2026-05-01"
	early := "2026-04-01"
	f = EventFilter{From: &bad, To: &early}
	assert.ErrorIs(t, f.Validate(now), ErrInvalidTimeRange)
}
