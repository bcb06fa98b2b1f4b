package team

import (
	"context"
	"time"
)

type TeamRepository interface {
	Create(ctx context.Context, team Team) (Team, error)
	GetByID(ctx context.Context, id string) (Team, error)
	// Lock takes a row lock on the team for the surrounding transaction.
	Lock(ctx context.Context, id string) error
	ListByMember(ctx context.Context, userID string, filter TeamFilter) ([]Team, int64, error)
	Update(ctx context.Context, team Team) (Team, error)
}

type MemberRepository interface {
	// Add returns ErrAlreadyMember when the pair already exists.
	Add(ctx context.Context, member Member) (Member, error)
	Get(ctx context.Context, teamID, userID string) (Member, error)
	List(ctx context.Context, teamID string) ([]Member, error)
	UpdateRole(ctx context.Context, teamID, userID string, role MemberRole) (Member, error)
	Remove(ctx context.Context, teamID, userID string) error
	CountByRole(ctx context.Context, teamID string, role MemberRole) (int, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task Task) (Task, error)
	GetByID(ctx context.Context, teamID, id string) (Task, error)
	List(ctx context.Context, filter TaskFilter) ([]Task, error)
	Update(ctx context.Context, task Task) (Task, error)
	Delete(ctx context.Context, teamID, id string) error
}

type ChatRepository interface {
	Create(ctx context.Context, msg ChatMessage) (ChatMessage, error)
	// List returns messages newest first.
	List(ctx context.Context, teamID string, page, limit int) ([]ChatMessage, int64, error)
}

type MeetingRepository interface {
	Create(ctx context.Context, meeting Meeting) (Meeting, error)
	GetByID(ctx context.Context, teamID, id string) (Meeting, error)
	ListUpcoming(ctx context.Context, teamID string, from time.Time) ([]Meeting, error)
	// HasConflict checks non-cancelled meetings of the team intersecting [start, end).
	HasConflict(ctx context.Context, teamID string, start, end time.Time, excludeID *string) (bool, error)
	Cancel(ctx context.Context, teamID, id string) (Meeting, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, doc Document) (Document, error)
	GetByID(ctx context.Context, teamID, id string) (Document, error)
	List(ctx context.Context, teamID string) ([]Document, error)
	Delete(ctx context.Context, teamID, id string) error
}
