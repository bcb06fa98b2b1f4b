package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const eventColumns = `
	e.id, e.title, e.description, e.start_at, e.end_at, e.all_day, e.type, e.location,
	e.created_by, e.recurrence_rule, e.is_deleted, e.created_at, e.updated_at,
	ARRAY(SELECT a.user_id::text FROM calendar_attendees a WHERE a.event_id = e.id ORDER BY a.user_id)`

type eventRepositoryImpl struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) calendar.EventRepository {
	return &eventRepositoryImpl{db: db}
}

func scanEvent(row pgx.Row) (calendar.Event, error) {
	var e calendar.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.StartAt,
		&e.EndAt,
		&e.AllDay,
		&e.Type,
		&e.Location,
		&e.CreatedBy,
		&e.RecurrenceRule,
		&e.IsDeleted,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.AttendeeIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.Event{}, calendar.ErrEventNotFound
		}
		return calendar.Event{}, err
	}
	return e, nil
}

func replaceAttendees(ctx context.Context, q database.Querier, eventID string, attendeeIDs []string) error {
	if _, err := q.Exec(ctx, `DELETE FROM calendar_attendees WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to clear attendees: %w", err)
	}
	if len(attendeeIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		INSERT INTO calendar_attendees (event_id, user_id)
		SELECT $1, UNNEST($2::uuid[])
		ON CONFLICT DO NOTHING`, eventID, attendeeIDs)
	if err != nil {
		return fmt.Errorf("failed to store attendees: %w", err)
	}
	return nil
}

func (r *eventRepositoryImpl) Create(ctx context.Context, e calendar.Event) (calendar.Event, error) {
	var created calendar.Event
	err := inTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		var id string
		err := q.QueryRow(ctx, `
			INSERT INTO calendar_events (id, title, description, start_at, end_at, all_day, type, location, created_by, recurrence_rule)
			VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			e.Title,
			e.Description,
			e.StartAt,
			e.EndAt,
			e.AllDay,
			e.Type,
			e.Location,
			e.CreatedBy,
			e.RecurrenceRule,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		if err := replaceAttendees(ctx, q, id, e.AttendeeIDs); err != nil {
			return err
		}

		created, err = scanEvent(q.QueryRow(ctx, `SELECT `+eventColumns+` FROM calendar_events e WHERE e.id = $1`, id))
		return err
	})
	return created, err
}

func (r *eventRepositoryImpl) GetByID(ctx context.Context, id string) (calendar.Event, error) {
	q := GetQuerier(ctx, r.db)
	return scanEvent(q.QueryRow(ctx, `SELECT `+eventColumns+` FROM calendar_events e WHERE e.id = $1 AND NOT e.is_deleted`, id))
}

func (r *eventRepositoryImpl) Update(ctx context.Context, e calendar.Event) (calendar.Event, error) {
	var updated calendar.Event
	err := inTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		tag, err := q.Exec(ctx, `
			UPDATE calendar_events
			SET title = $2, description = $3, start_at = $4, end_at = $5, all_day = $6,
				type = $7, location = $8, recurrence_rule = $9, updated_at = NOW()
			WHERE id = $1 AND NOT is_deleted`,
			e.ID,
			e.Title,
			e.Description,
			e.StartAt,
			e.EndAt,
			e.AllDay,
			e.Type,
			e.Location,
			e.RecurrenceRule,
		)
		if err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return calendar.ErrEventNotFound
		}
		if err := replaceAttendees(ctx, q, e.ID, e.AttendeeIDs); err != nil {
			return err
		}

		updated, err = scanEvent(q.QueryRow(ctx, `SELECT `+eventColumns+` FROM calendar_events e WHERE e.id = $1`, e.ID))
		return err
	})
	return updated, err
}

func (r *eventRepositoryImpl) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE calendar_events SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return calendar.ErrEventNotFound
	}
	return nil
}

func (r *eventRepositoryImpl) ListVisible(ctx context.Context, userID string, filter calendar.EventFilter) ([]calendar.Event, error) {
	q := GetQuerier(ctx, r.db)
	from, to := filter.Range()

	var c conditions
	c.raw("NOT e.is_deleted")
	c.add("e.start_at < ?", to)
	c.add("e.end_at > ?", from)
	c.add(`(e.type = 'holiday' OR e.created_by = ? OR EXISTS (
		SELECT 1 FROM calendar_attendees a WHERE a.event_id = e.id AND a.user_id = ?))`, userID)
	if filter.Type != nil {
		c.add("e.type = ?", *filter.Type)
	}

	query := `SELECT ` + eventColumns + ` FROM calendar_events e ` + c.where() + ` ORDER BY e.start_at, e.id`
	rows, err := q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]calendar.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepositoryImpl) HasConflict(ctx context.Context, userIDs []string, start, end time.Time, excludeID *string) (bool, error) {
	if len(userIDs) == 0 {
		return false, nil
	}
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM calendar_events e
			WHERE NOT e.is_deleted AND e.type <> 'holiday'
				AND e.start_at < $3 AND e.end_at > $2
				AND ($4::uuid IS NULL OR e.id <> $4::uuid)
				AND (e.created_by = ANY($1::uuid[]) OR EXISTS (
					SELECT 1 FROM calendar_attendees a
					WHERE a.event_id = e.id AND a.user_id = ANY($1::uuid[])))
		)`, userIDs, start, end, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check event conflict: %w", err)
	}
	return exists, nil
}
