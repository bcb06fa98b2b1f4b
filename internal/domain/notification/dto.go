package notification

import (
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

// NotifyRequest addresses explicit users, every active holder of RecipientRoles, or both.
type NotifyRequest struct {
	RecipientIDs   []string
	RecipientRoles []user.Role
	SenderID       *string
	Type           Type
	Priority       Priority
	Title          string
	Message        string
	Data           map[string]any
}

type CreateNotificationRequest struct {
	Title        string         `json:"title" validate:"notblank,max=255"`
	Message      string         `json:"message" validate:"notblank,max=5000"`
	Type         string         `json:"type" validate:"required,oneof=general attendance leave overtime team calendar system"`
	Priority     string         `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	RecipientIDs []string       `json:"recipientIds" validate:"omitempty,dive,uuid"`
	All          bool           `json:"all"`
	ScheduledAt  *string        `json:"scheduledAt,omitempty"`
	ExpiresAt    *string        `json:"expiresAt,omitempty"`
	Data         map[string]any `json:"data,omitempty"`

	scheduledAt *time.Time
	expiresAt   *time.Time
}

func (r *CreateNotificationRequest) Validate() error {
	errs := validator.Struct(r)

	if !r.All && len(r.RecipientIDs) == 0 {
		errs.Add("recipientIds", "recipientIds is required unless all is true")
	}
	if r.ScheduledAt != nil {
		t, ok := validator.IsValidDateTime(*r.ScheduledAt)
		if !ok {
			errs.Add("scheduledAt", "scheduledAt must be an RFC3339 timestamp")
		} else {
			r.scheduledAt = &t
		}
	}
	if r.ExpiresAt != nil {
		t, ok := validator.IsValidDateTime(*r.ExpiresAt)
		if !ok {
			errs.Add("expiresAt", "expiresAt must be an RFC3339 timestamp")
		} else {
			r.expiresAt = &t
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if r.scheduledAt != nil && r.expiresAt != nil && !r.expiresAt.After(*r.scheduledAt) {
		return ErrExpiryBeforeSchedule
	}
	return nil
}

// Schedule returns the parsed schedule and expiry; only meaningful after Validate succeeded.
func (r *CreateNotificationRequest) Schedule() (*time.Time, *time.Time) {
	return r.scheduledAt, r.expiresAt
}

type InboxFilter struct {
	UnreadOnly bool
	Page       int
	Limit      int
}

type RegisterTokenRequest struct {
	Token      string `json:"token" validate:"required,max=4096"`
	DeviceType string `json:"deviceType" validate:"omitempty,oneof=android ios web"`
}

func (r *RegisterTokenRequest) Validate() error {
	return validator.Struct(r).Err()
}

type UnregisterTokenRequest struct {
	Token string `json:"token" validate:"required,max=4096"`
}

func (r *UnregisterTokenRequest) Validate() error {
	return validator.Struct(r).Err()
}

type NotificationResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Type        Type           `json:"type"`
	Priority    Priority       `json:"priority"`
	SenderID    *string        `json:"senderId,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	IsRead      bool           `json:"isRead"`
	ReadAt      *string        `json:"readAt,omitempty"`
	ScheduledAt *string        `json:"scheduledAt,omitempty"`
	ExpiresAt   *string        `json:"expiresAt,omitempty"`
	SentAt      *string        `json:"sentAt,omitempty"`
	Recipients  int            `json:"recipients,omitempty"`
	CreatedAt   string         `json:"createdAt"`
}

func ToResponse(n Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Title:       n.Title,
		Message:     n.Message,
		Type:        n.Type,
		Priority:    n.Priority,
		SenderID:    n.SenderID,
		Data:        n.Data,
		ScheduledAt: formatTime(n.ScheduledAt),
		ExpiresAt:   formatTime(n.ExpiresAt),
		SentAt:      formatTime(n.SentAt),
		Recipients:  len(n.Recipients),
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
}

func ToInboxResponse(item InboxItem) NotificationResponse {
	resp := ToResponse(item.Notification)
	resp.Recipients = 0
	resp.IsRead = item.IsRead
	resp.ReadAt = formatTime(item.ReadAt)
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

type ListNotificationResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
	UnreadCount   int64                  `json:"unreadCount"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
}

// SSEEvent represents an event sent to a streaming client
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}
