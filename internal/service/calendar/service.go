package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
)

type CalendarServiceImpl struct {
	calendar.EventRepository
	users    user.UserRepository
	notifier notification.Notifier
	now      func() time.Time
}

func NewCalendarService(eventRepository calendar.EventRepository, userRepository user.UserRepository, notifier notification.Notifier) calendar.CalendarService {
	return &CalendarServiceImpl{
		EventRepository: eventRepository,
		users:           userRepository,
		notifier:        notifier,
		now:             time.Now,
	}
}

// attendees dedupes the requested ids, drops the creator and rejects unknown or inactive users.
func (s *CalendarServiceImpl) attendees(ctx context.Context, creatorID string, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == creatorID || slices.Contains(out, id) {
			continue
		}
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !u.Active() {
			return nil, user.ErrUserNotFound
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *CalendarServiceImpl) checkConflict(ctx context.Context, event calendar.Event, excludeID *string) error {
	if event.Type == calendar.EventTypeHoliday {
		return nil
	}
	conflict, err := s.EventRepository.HasConflict(ctx, event.Participants(), event.StartAt, event.EndAt, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check event conflicts: %w", err)
	}
	if conflict {
		return calendar.ErrEventConflict
	}
	return nil
}

func (s *CalendarServiceImpl) notifyAttendees(ctx context.Context, principal user.Principal, event calendar.Event, recipients []string, title, message string) {
	recipients = slices.DeleteFunc(slices.Clone(recipients), func(id string) bool { return id == principal.UserID })
	if len(recipients) == 0 {
		return
	}
	s.notifier.Notify(ctx, notification.NotifyRequest{
		RecipientIDs: recipients,
		SenderID:     &principal.UserID,
		Type:         notification.TypeCalendar,
		Priority:     notification.PriorityNormal,
		Title:        title,
		Message:      message,
		Data:         map[string]any{"eventId": event.ID, "startAt": event.StartAt.Format(time.RFC3339)},
	})
}

// Create implements calendar.CalendarService.
func (s *CalendarServiceImpl) Create(ctx context.Context, principal user.Principal, req calendar.CreateEventRequest) (calendar.EventResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.EventResponse{}, err
	}
	eventType := calendar.EventType(req.Type)
	if eventType == calendar.EventTypeHoliday && !principal.IsPeopleAdmin() {
		return calendar.EventResponse{}, calendar.ErrHolidayRequiresAdmin
	}
	attendees, err := s.attendees(ctx, principal.UserID, req.AttendeeIDs)
	if err != nil {
		return calendar.EventResponse{}, err
	}

	start, end := req.Window()
	event := calendar.Event{
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		StartAt:        start,
		EndAt:          end,
		AllDay:         req.AllDay,
		Type:           eventType,
		Location:       req.Location,
		CreatedBy:      principal.UserID,
		RecurrenceRule: req.RecurrenceRule,
		AttendeeIDs:    attendees,
	}
	if err := s.checkConflict(ctx, event, nil); err != nil {
		return calendar.EventResponse{}, err
	}

	created, err := s.EventRepository.Create(ctx, event)
	if err != nil {
		return calendar.EventResponse{}, fmt.Errorf("failed to create event: %w", err)
	}

	s.notifyAttendees(ctx, principal, created, created.AttendeeIDs, "New calendar event",
		fmt.Sprintf("%s invited you to %q on %s", principal.FullName, created.Title, created.StartAt.Format(time.RFC3339)))

	slog.Info("Calendar event created", "event_id", created.ID, "type", created.Type, "created_by", principal.UserID)
	return calendar.ToResponse(created), nil
}

// List implements calendar.CalendarService.
func (s *CalendarServiceImpl) List(ctx context.Context, principal user.Principal, filter calendar.EventFilter) ([]calendar.EventResponse, error) {
	if err := filter.Validate(s.now().UTC()); err != nil {
		return nil, err
	}
	events, err := s.EventRepository.ListVisible(ctx, principal.UserID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	resp := make([]calendar.EventResponse, len(events))
	for i, e := range events {
		resp[i] = calendar.ToResponse(e)
	}
	return resp, nil
}

// visible loads an event the caller may see. People admins see every live event.
func (s *CalendarServiceImpl) visible(ctx context.Context, principal user.Principal, eventID string) (calendar.Event, error) {
	event, err := s.EventRepository.GetByID(ctx, eventID)
	if err != nil {
		return calendar.Event{}, err
	}
	if event.IsDeleted {
		return calendar.Event{}, calendar.ErrEventNotFound
	}
	if !event.VisibleTo(principal.UserID) && !principal.IsPeopleAdmin() {
		return calendar.Event{}, calendar.ErrEventNotFound
	}
	return event, nil
}

// editable additionally requires the creator or a people admin.
func (s *CalendarServiceImpl) editable(ctx context.Context, principal user.Principal, eventID string) (calendar.Event, error) {
	event, err := s.visible(ctx, principal, eventID)
	if err != nil {
		return calendar.Event{}, err
	}
	if event.CreatedBy != principal.UserID && !principal.IsPeopleAdmin() {
		return calendar.Event{}, user.ErrInsufficientPermissions
	}
	return event, nil
}

// Get implements calendar.CalendarService.
func (s *CalendarServiceImpl) Get(ctx context.Context, principal user.Principal, eventID string) (calendar.EventResponse, error) {
	event, err := s.visible(ctx, principal, eventID)
	if err != nil {
		return calendar.EventResponse{}, err
	}
	return calendar.ToResponse(event), nil
}

// Update implements calendar.CalendarService. Conflicts are checked again, ignoring the event itself.
func (s *CalendarServiceImpl) Update(ctx context.Context, principal user.Principal, req calendar.UpdateEventRequest) (calendar.EventResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.EventResponse{}, err
	}
	event, err := s.editable(ctx, principal, req.ID)
	if err != nil {
		return calendar.EventResponse{}, err
	}

	eventType := calendar.EventType(req.Type)
	if (eventType == calendar.EventTypeHoliday || event.Type == calendar.EventTypeHoliday) && !principal.IsPeopleAdmin() {
		return calendar.EventResponse{}, calendar.ErrHolidayRequiresAdmin
	}
	attendees, err := s.attendees(ctx, event.CreatedBy, req.AttendeeIDs)
	if err != nil {
		return calendar.EventResponse{}, err
	}

	start, end := req.Window()
	event.Title = strings.TrimSpace(req.Title)
	event.Description = req.Description
	event.StartAt, event.EndAt = start, end
	event.AllDay = req.AllDay
	event.Type = eventType
	event.Location = req.Location
	event.RecurrenceRule = req.RecurrenceRule
	previous := event.AttendeeIDs
	event.AttendeeIDs = attendees

	if err := s.checkConflict(ctx, event, &event.ID); err != nil {
		return calendar.EventResponse{}, err
	}

	updated, err := s.EventRepository.Update(ctx, event)
	if err != nil {
		return calendar.EventResponse{}, fmt.Errorf("failed to update event: %w", err)
	}

	var kept, added []string
	for _, id := range updated.AttendeeIDs {
		if slices.Contains(previous, id) {
			kept = append(kept, id)
		} else {
			added = append(added, id)
		}
	}
	s.notifyAttendees(ctx, principal, updated, kept, "Calendar event updated",
		fmt.Sprintf("%q now runs %s to %s", updated.Title, updated.StartAt.Format(time.RFC3339), updated.EndAt.Format(time.RFC3339)))
	s.notifyAttendees(ctx, principal, updated, added, "New calendar event",
		fmt.Sprintf("%s invited you to %q on %s", principal.FullName, updated.Title, updated.StartAt.Format(time.RFC3339)))

	return calendar.ToResponse(updated), nil
}

// Delete implements calendar.CalendarService.
func (s *CalendarServiceImpl) Delete(ctx context.Context, principal user.Principal, eventID string) error {
	event, err := s.editable(ctx, principal, eventID)
	if err != nil {
		return err
	}
	if event.Type == calendar.EventTypeHoliday && !principal.IsPeopleAdmin() {
		return calendar.ErrHolidayRequiresAdmin
	}
	if err := s.EventRepository.SoftDelete(ctx, eventID); err != nil {
		return err
	}

	s.notifyAttendees(ctx, principal, event, event.Participants(), "Calendar event cancelled",
		fmt.Sprintf("%q on %s was cancelled", event.Title, event.StartAt.Format(time.RFC3339)))
	slog.Info("Calendar event deleted", "event_id", eventID, "deleted_by", principal.UserID)
	return nil
}
