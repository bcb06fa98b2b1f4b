package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotification_Due(t *testing.T) {
	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		n    Notification
		want bool
	}{
		{"immediate", Notification{IsActive: true}, true},
		{"schedule passed", Notification{IsActive: true, ScheduledAt: &past}, true},
		{"schedule now", Notification{IsActive: true, ScheduledAt: &now}, true},
		{"schedule ahead", Notification{IsActive: true, ScheduledAt: &future}, false},
		{"already sent", Notification{IsActive: true, SentAt: &past}, false},
		{"inactive", Notification{IsActive: false}, false},
		{"expired", Notification{IsActive: true, ExpiresAt: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.n.Due(now))
		})
	}
}

func TestCreateNotificationRequest_Validate(t *testing.T) {
	req := CreateNotificationRequest{Title: "Townhall", Message: "Friday 3pm", Type: "general"}
	assert.Error(t, req.Validate(), "recipients are required unless broadcasting")

	req.All = true
	assert.NoError(t, req.Validate())

	at := "2026-02-01T09:00:00Z"
	before := "2026-02-01T08:00:00Z"
	req.ScheduledAt = &at
	req.ExpiresAt = &before
	assert.ErrorIs(t, req.Validate(), ErrExpiryBeforeSchedule)

	after := "2026-02-02T08:00:00Z"
	req.ExpiresAt = &after
	assert.NoError(t, req.Validate())
	scheduled, expires := req.Schedule()
	assert.Equal(t, 9, scheduled.Hour())
	assert.Equal(t, 2, expires.Day())
}
