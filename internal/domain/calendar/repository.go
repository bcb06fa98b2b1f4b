package calendar

import (
	"context"
	"time"
)

type EventRepository interface {
	// Create stores the event and its attendee rows.
	Create(ctx context.Context, event Event) (Event, error)
	GetByID(ctx context.Context, id string) (Event, error)
	// Update rewrites the event and replaces its attendee set.
	Update(ctx context.Context, event Event) (Event, error)
	SoftDelete(ctx context.Context, id string) error

	// ListVisible returns events created by or attended by userID, plus holidays, intersecting [from, to).
	ListVisible(ctx context.Context, userID string, filter EventFilter) ([]Event, error)

	// HasConflict reports whether any of userIDs already has a non-deleted, non-holiday event
	// intersecting [start, end), ignoring excludeID.
	HasConflict(ctx context.Context, userIDs []string, start, end time.Time, excludeID *string) (bool, error)
}
