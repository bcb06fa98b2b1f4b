package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const teamColumns = `
	t.id, t.organization_id, t.name, t.description, t.created_by, t.is_active, t.created_at, t.updated_at,
	(SELECT COUNT(*) FROM team_members m WHERE m.team_id = t.id)::int`

type teamRepositoryImpl struct {
	db *database.DB
}

func NewTeamRepository(db *database.DB) team.TeamRepository {
	return &teamRepositoryImpl{db: db}
}

func scanTeam(row pgx.Row) (team.Team, error) {
	var t team.Team
	err := row.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.Description, &t.CreatedBy, &t.IsActive, &t.CreatedAt, &t.UpdatedAt, &t.MemberCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Team{}, team.ErrTeamNotFound
		}
		return team.Team{}, err
	}
	return t, nil
}

func (r *teamRepositoryImpl) Create(ctx context.Context, t team.Team) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO teams AS t (id, organization_id, name, description, created_by)
		VALUES (uuidv7(), $1, $2, $3, $4)
		RETURNING ` + teamColumns

	return scanTeam(q.QueryRow(ctx, query, t.OrganizationID, t.Name, t.Description, t.CreatedBy))
}

func (r *teamRepositoryImpl) GetByID(ctx context.Context, id string) (team.Team, error) {
	q := GetQuerier(ctx, r.db)
	return scanTeam(q.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.id = $1`, id))
}

func (r *teamRepositoryImpl) Lock(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var locked string
	if err := q.QueryRow(ctx, `SELECT id FROM teams WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.ErrTeamNotFound
		}
		return fmt.Errorf("failed to lock team: %w", err)
	}
	return nil
}

func (r *teamRepositoryImpl) ListByMember(ctx context.Context, userID string, filter team.TeamFilter) ([]team.Team, int64, error) {
	q := GetQuerier(ctx, r.db)

	var c conditions
	c.add("EXISTS (SELECT 1 FROM team_members m WHERE m.team_id = t.id AND m.user_id = ?)", userID)
	if !filter.IncludeArchived {
		c.raw("t.is_active")
	}
	where := c.where()

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM teams t `+where, c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count teams: %w", err)
	}

	query := `SELECT ` + teamColumns + ` FROM teams t ` + where + ` ORDER BY t.name, t.id ` + c.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]team.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, 0, err
		}
		teams = append(teams, t)
	}
	return teams, total, rows.Err()
}

func (r *teamRepositoryImpl) Update(ctx context.Context, t team.Team) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE teams AS t
		SET name = $2, description = $3, is_active = $4, updated_at = NOW()
		WHERE t.id = $1
		RETURNING ` + teamColumns

	return scanTeam(q.QueryRow(ctx, query, t.ID, t.Name, t.Description, t.IsActive))
}

type memberRepositoryImpl struct {
	db *database.DB
}

func NewMemberRepository(db *database.DB) team.MemberRepository {
	return &memberRepositoryImpl{db: db}
}

func scanMember(row pgx.Row, extra ...any) (team.Member, error) {
	var m team.Member
	dest := append([]any{&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Member{}, team.ErrMemberNotFound
		}
		if database.IsUniqueViolation(err, "uq_team_members") {
			return team.Member{}, team.ErrAlreadyMember
		}
		return team.Member{}, err
	}
	return m, nil
}

func (r *memberRepositoryImpl) Add(ctx context.Context, m team.Member) (team.Member, error) {
	q := GetQuerier(ctx, r.db)

	return scanMember(q.QueryRow(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING team_id, user_id, role, joined_at`, m.TeamID, m.UserID, m.Role))
}

func (r *memberRepositoryImpl) Get(ctx context.Context, teamID, userID string) (team.Member, error) {
	q := GetQuerier(ctx, r.db)

	var fullName, email string
	m, err := scanMember(q.QueryRow(ctx, `
		SELECT m.team_id, m.user_id, m.role, m.joined_at, u.full_name, u.email
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1 AND m.user_id = $2`, teamID, userID), &fullName, &email)
	if err != nil {
		return team.Member{}, err
	}
	m.FullName, m.Email = &fullName, &email
	return m, nil
}

func (r *memberRepositoryImpl) List(ctx context.Context, teamID string) ([]team.Member, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT m.team_id, m.user_id, m.role, m.joined_at, u.full_name, u.email
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY CASE m.role WHEN 'leader' THEN 0 WHEN 'member' THEN 1 ELSE 2 END, u.full_name`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	members := make([]team.Member, 0)
	for rows.Next() {
		var fullName, email string
		m, err := scanMember(rows, &fullName, &email)
		if err != nil {
			return nil, err
		}
		m.FullName, m.Email = &fullName, &email
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *memberRepositoryImpl) UpdateRole(ctx context.Context, teamID, userID string, role team.MemberRole) (team.Member, error) {
	q := GetQuerier(ctx, r.db)

	return scanMember(q.QueryRow(ctx, `
		UPDATE team_members SET role = $3
		WHERE team_id = $1 AND user_id = $2
		RETURNING team_id, user_id, role, joined_at`, teamID, userID, role))
}

func (r *memberRepositoryImpl) Remove(ctx context.Context, teamID, userID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return team.ErrMemberNotFound
	}
	return nil
}

func (r *memberRepositoryImpl) CountByRole(ctx context.Context, teamID string, role team.MemberRole) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND role = $2`, teamID, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count team members: %w", err)
	}
	return count, nil
}

const taskColumns = `
	id, team_id, title, description, assignee_id, status, priority, due_date, created_by, created_at, updated_at`

type taskRepositoryImpl struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) team.TaskRepository {
	return &taskRepositoryImpl{db: db}
}

func scanTask(row pgx.Row) (team.Task, error) {
	var t team.Task
	err := row.Scan(
		&t.ID,
		&t.TeamID,
		&t.Title,
		&t.Description,
		&t.AssigneeID,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Task{}, team.ErrTaskNotFound
		}
		return team.Task{}, err
	}
	return t, nil
}

func (r *taskRepositoryImpl) Create(ctx context.Context, t team.Task) (team.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO team_tasks (id, team_id, title, description, assignee_id, status, priority, due_date, created_by)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + taskColumns

	return scanTask(q.QueryRow(ctx, query,
		t.TeamID,
		t.Title,
		t.Description,
		t.AssigneeID,
		t.Status,
		t.Priority,
		t.DueDate,
		t.CreatedBy,
	))
}

func (r *taskRepositoryImpl) GetByID(ctx context.Context, teamID, id string) (team.Task, error) {
	q := GetQuerier(ctx, r.db)
	return scanTask(q.QueryRow(ctx, `SELECT `+taskColumns+` FROM team_tasks WHERE team_id = $1 AND id = $2`, teamID, id))
}

func (r *taskRepositoryImpl) List(ctx context.Context, filter team.TaskFilter) ([]team.Task, error) {
	q := GetQuerier(ctx, r.db)

	var c conditions
	c.add("team_id = ?", filter.TeamID)
	if filter.Status != nil {
		c.add("status = ?", *filter.Status)
	}
	if filter.AssigneeID != nil {
		c.add("assignee_id = ?", *filter.AssigneeID)
	}

	query := `SELECT ` + taskColumns + ` FROM team_tasks ` + c.where() + ` ORDER BY due_date NULLS LAST, created_at`
	rows, err := q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list team tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]team.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepositoryImpl) Update(ctx context.Context, t team.Task) (team.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE team_tasks
		SET title = $3, description = $4, assignee_id = $5, status = $6, priority = $7, due_date = $8, updated_at = NOW()
		WHERE team_id = $1 AND id = $2
		RETURNING ` + taskColumns

	return scanTask(q.QueryRow(ctx, query,
		t.TeamID,
		t.ID,
		t.Title,
		t.Description,
		t.AssigneeID,
		t.Status,
		t.Priority,
		t.DueDate,
	))
}

func (r *taskRepositoryImpl) Delete(ctx context.Context, teamID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM team_tasks WHERE team_id = $1 AND id = $2`, teamID, id)
	if err != nil {
		return fmt.Errorf("failed to delete team task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return team.ErrTaskNotFound
	}
	return nil
}

type chatRepositoryImpl struct {
	db *database.DB
}

func NewChatRepository(db *database.DB) team.ChatRepository {
	return &chatRepositoryImpl{db: db}
}

func (r *chatRepositoryImpl) Create(ctx context.Context, msg team.ChatMessage) (team.ChatMessage, error) {
	q := GetQuerier(ctx, r.db)

	var out team.ChatMessage
	err := q.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO team_chats (id, team_id, sender_id, message)
			VALUES (uuidv7(), $1, $2, $3)
			RETURNING id, team_id, sender_id, message, created_at
		)
		SELECT i.id, i.team_id, i.sender_id, i.message, i.created_at, u.full_name
		FROM inserted i
		JOIN users u ON u.id = i.sender_id`, msg.TeamID, msg.SenderID, msg.Message).
		Scan(&out.ID, &out.TeamID, &out.SenderID, &out.Message, &out.CreatedAt, &out.SenderName)
	if err != nil {
		return team.ChatMessage{}, fmt.Errorf("failed to post team message: %w", err)
	}
	return out, nil
}

func (r *chatRepositoryImpl) List(ctx context.Context, teamID string, page, limit int) ([]team.ChatMessage, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM team_chats WHERE team_id = $1`, teamID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count team messages: %w", err)
	}

	page, limit = normalizePage(page, limit)
	rows, err := q.Query(ctx, `
		SELECT c.id, c.team_id, c.sender_id, c.message, c.created_at, u.full_name
		FROM team_chats c
		JOIN users u ON u.id = c.sender_id
		WHERE c.team_id = $1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3`, teamID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list team messages: %w", err)
	}
	defer rows.Close()

	messages := make([]team.ChatMessage, 0)
	for rows.Next() {
		var m team.ChatMessage
		if err := rows.Scan(&m.ID, &m.TeamID, &m.SenderID, &m.Message, &m.CreatedAt, &m.SenderName); err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}

const meetingColumns = `id, team_id, title, agenda, start_at, end_at, location, created_by, is_cancelled, created_at`

type meetingRepositoryImpl struct {
	db *database.DB
}

func NewMeetingRepository(db *database.DB) team.MeetingRepository {
	return &meetingRepositoryImpl{db: db}
}

func scanMeeting(row pgx.Row) (team.Meeting, error) {
	var m team.Meeting
	err := row.Scan(&m.ID, &m.TeamID, &m.Title, &m.Agenda, &m.StartAt, &m.EndAt, &m.Location, &m.CreatedBy, &m.IsCancelled, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Meeting{}, team.ErrMeetingNotFound
		}
		return team.Meeting{}, err
	}
	return m, nil
}

func (r *meetingRepositoryImpl) Create(ctx context.Context, m team.Meeting) (team.Meeting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO team_meetings (id, team_id, title, agenda, start_at, end_at, location, created_by)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + meetingColumns

	return scanMeeting(q.QueryRow(ctx, query, m.TeamID, m.Title, m.Agenda, m.StartAt, m.EndAt, m.Location, m.CreatedBy))
}

func (r *meetingRepositoryImpl) GetByID(ctx context.Context, teamID, id string) (team.Meeting, error) {
	q := GetQuerier(ctx, r.db)
	return scanMeeting(q.QueryRow(ctx, `SELECT `+meetingColumns+` FROM team_meetings WHERE team_id = $1 AND id = $2`, teamID, id))
}

func (r *meetingRepositoryImpl) ListUpcoming(ctx context.Context, teamID string, from time.Time) ([]team.Meeting, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+meetingColumns+` FROM team_meetings
		WHERE team_id = $1 AND NOT is_cancelled AND end_at > $2
		ORDER BY start_at`, teamID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list team meetings: %w", err)
	}
	defer rows.Close()

	meetings := make([]team.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (r *meetingRepositoryImpl) HasConflict(ctx context.Context, teamID string, start, end time.Time, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM team_meetings
			WHERE team_id = $1 AND NOT is_cancelled
				AND start_at < $3 AND end_at > $2
				AND ($4::uuid IS NULL OR id <> $4::uuid)
		)`, teamID, start, end, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check meeting conflict: %w", err)
	}
	return exists, nil
}

func (r *meetingRepositoryImpl) Cancel(ctx context.Context, teamID, id string) (team.Meeting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE team_meetings SET is_cancelled = TRUE
		WHERE team_id = $1 AND id = $2
		RETURNING ` + meetingColumns

	return scanMeeting(q.QueryRow(ctx, query, teamID, id))
}

const documentColumns = `id, team_id, title, file_url, content_type, size_bytes, uploaded_by, created_at`

type documentRepositoryImpl struct {
	db *database.DB
}

func NewDocumentRepository(db *database.DB) team.DocumentRepository {
	return &documentRepositoryImpl{db: db}
}

func scanDocument(row pgx.Row) (team.Document, error) {
	var d team.Document
	err := row.Scan(&d.ID, &d.TeamID, &d.Title, &d.FileURL, &d.ContentType, &d.SizeBytes, &d.UploadedBy, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Document{}, team.ErrDocumentNotFound
		}
		return team.Document{}, err
	}
	return d, nil
}

func (r *documentRepositoryImpl) Create(ctx context.Context, d team.Document) (team.Document, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO team_documents (id, team_id, title, file_url, content_type, size_bytes, uploaded_by)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6)
		RETURNING ` + documentColumns

	return scanDocument(q.QueryRow(ctx, query, d.TeamID, d.Title, d.FileURL, d.ContentType, d.SizeBytes, d.UploadedBy))
}

func (r *documentRepositoryImpl) GetByID(ctx context.Context, teamID, id string) (team.Document, error) {
	q := GetQuerier(ctx, r.db)
	return scanDocument(q.QueryRow(ctx, `SELECT `+documentColumns+` FROM team_documents WHERE team_id = $1 AND id = $2`, teamID, id))
}

func (r *documentRepositoryImpl) List(ctx context.Context, teamID string) ([]team.Document, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+documentColumns+` FROM team_documents WHERE team_id = $1 ORDER BY created_at DESC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team documents: %w", err)
	}
	defer rows.Close()

	docs := make([]team.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *documentRepositoryImpl) Delete(ctx context.Context, teamID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM team_documents WHERE team_id = $1 AND id = $2`, teamID, id)
	if err != nil {
		return fmt.Errorf("failed to delete team document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return team.ErrDocumentNotFound
	}
	return nil
}
