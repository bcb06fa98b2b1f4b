package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoRecipients         = errors.New("notification has no recipients")
	ErrScheduleInPast       = errors.New("scheduledAt must be in the future")
	ErrExpiryBeforeSchedule = errors.New("expiresAt must be after scheduledAt")
	ErrFCMTokenNotFound     = errors.New("fcm token not found")
)
