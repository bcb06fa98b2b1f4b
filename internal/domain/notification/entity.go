package notification

import "time"

type Type string

const (
	TypeGeneral    Type = "general"
	TypeAttendance Type = "attendance"
	TypeLeave      Type = "leave"
	TypeOvertime   Type = "overtime"
	TypeTeam       Type = "team"
	TypeCalendar   Type = "calendar"
	TypeSystem     Type = "system"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Recipient holds one user's read state for a notification.
type Recipient struct {
	UserID string
	IsRead bool
	ReadAt *time.Time
}

type Notification struct {
	ID          string
	Title       string
	Message     string
	Type        Type
	Priority    Priority
	SenderID    *string
	Data        map[string]any
	ScheduledAt *time.Time
	ExpiresAt   *time.Time
	SentAt      *time.Time
	IsActive    bool
	CreatedAt   time.Time
	Recipients  []Recipient
}

// Due reports whether the notification should be delivered at now.
func (n Notification) Due(now time.Time) bool {
	if !n.IsActive || n.SentAt != nil {
		return false
	}
	if n.ExpiresAt != nil && !now.Before(*n.ExpiresAt) {
		return false
	}
	return n.ScheduledAt == nil || !n.ScheduledAt.After(now)
}

func (n Notification) RecipientIDs() []string {
	ids := make([]string, len(n.Recipients))
	for i, r := range n.Recipients {
		ids[i] = r.UserID
	}
	return ids
}

// InboxItem is a notification as seen by one recipient.
type InboxItem struct {
	Notification
	IsRead bool
	ReadAt *time.Time
}

type FCMToken struct {
	ID         string
	UserID     string
	Token      string
	DeviceType string
	CreatedAt  time.Time
	LastUsedAt time.Time
}
