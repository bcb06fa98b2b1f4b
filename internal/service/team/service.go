package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/file"
)

type TeamServiceImpl struct {
	team.TeamRepository
	members     team.MemberRepository
	tasks       team.TaskRepository
	chats       team.ChatRepository
	meetings    team.MeetingRepository
	documents   team.DocumentRepository
	users       user.UserRepository
	fileService file.FileService
	notifier    notification.Notifier
	transactor  database.Transactor
	now         func() time.Time
}

// Repositories groups the team sub-resource stores.
type Repositories struct {
	Teams     team.TeamRepository
	Members   team.MemberRepository
	Tasks     team.TaskRepository
	Chats     team.ChatRepository
	Meetings  team.MeetingRepository
	Documents team.DocumentRepository
}

func NewTeamService(
	repos Repositories,
	userRepository user.UserRepository,
	fileService file.FileService,
	notifier notification.Notifier,
	transactor database.Transactor,
) team.TeamService {
	return &TeamServiceImpl{
		TeamRepository: repos.Teams,
		members:        repos.Members,
		tasks:          repos.Tasks,
		chats:          repos.Chats,
		meetings:       repos.Meetings,
		documents:      repos.Documents,
		users:          userRepository,
		fileService:    fileService,
		notifier:       notifier,
		transactor:     transactor,
		now:            time.Now,
	}
}

// membership loads the team and the caller's membership. Admins act as leaders of every team.
func (s *TeamServiceImpl) membership(ctx context.Context, principal user.Principal, teamID string) (team.Team, team.Member, error) {
	t, err := s.TeamRepository.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, team.Member{}, err
	}

	m, err := s.members.Get(ctx, teamID, principal.UserID)
	if errors.Is(err, team.ErrMemberNotFound) {
		if principal.Role == user.RoleAdmin {
			return t, team.Member{TeamID: teamID, UserID: principal.UserID, Role: team.MemberRoleLeader}, nil
		}
		return team.Team{}, team.Member{}, team.ErrNotTeamMember
	}
	if err != nil {
		return team.Team{}, team.Member{}, err
	}
	return t, m, nil
}

// contributor additionally requires an active team and a role that may write.
func (s *TeamServiceImpl) contributor(ctx context.Context, principal user.Principal, teamID string) (team.Team, team.Member, error) {
	t, m, err := s.membership(ctx, principal, teamID)
	if err != nil {
		return team.Team{}, team.Member{}, err
	}
	if !t.IsActive {
		return team.Team{}, team.Member{}, team.ErrTeamArchived
	}
	if !m.Role.CanContribute() {
		return team.Team{}, team.Member{}, team.ErrInsufficientTeamRole
	}
	return t, m, nil
}

func (s *TeamServiceImpl) leader(ctx context.Context, principal user.Principal, teamID string) (team.Team, error) {
	t, m, err := s.membership(ctx, principal, teamID)
	if err != nil {
		return team.Team{}, err
	}
	if m.Role != team.MemberRoleLeader {
		return team.Team{}, team.ErrInsufficientTeamRole
	}
	return t, nil
}

// notifyMembers tells every member except the actor.
func (s *TeamServiceImpl) notifyMembers(ctx context.Context, principal user.Principal, teamID string, title, message string, data map[string]any) {
	members, err := s.members.List(ctx, teamID)
	if err != nil {
		slog.Error("Failed to list team members for notification", "team_id", teamID, "error", err)
		return
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		if m.UserID != principal.UserID {
			ids = append(ids, m.UserID)
		}
	}
	if len(ids) == 0 {
		return
	}
	s.notifier.Notify(ctx, notification.NotifyRequest{
		RecipientIDs: ids,
		SenderID:     &principal.UserID,
		Type:         notification.TypeTeam,
		Priority:     notification.PriorityNormal,
		Title:        title,
		Message:      message,
		Data:         data,
	})
}

func (s *TeamServiceImpl) notifyUser(ctx context.Context, principal user.Principal, userID, title, message string, data map[string]any) {
	if userID == principal.UserID {
		return
	}
	s.notifier.Notify(ctx, notification.NotifyRequest{
		RecipientIDs: []string{userID},
		SenderID:     &principal.UserID,
		Type:         notification.TypeTeam,
		Priority:     notification.PriorityNormal,
		Title:        title,
		Message:      message,
		Data:         data,
	})
}

// Create implements team.TeamService. The creator joins as leader.
func (s *TeamServiceImpl) Create(ctx context.Context, principal user.Principal, req team.CreateTeamRequest) (team.TeamResponse, error) {
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}
	orgID := req.OrganizationID
	if orgID == nil {
		orgID = principal.OrganizationID
	}

	var created team.Team
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := s.TeamRepository.Create(ctx, team.Team{
			OrganizationID: orgID,
			Name:           strings.TrimSpace(req.Name),
			Description:    req.Description,
			CreatedBy:      principal.UserID,
			IsActive:       true,
		})
		if err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}
		if _, err := s.members.Add(ctx, team.Member{TeamID: t.ID, UserID: principal.UserID, Role: team.MemberRoleLeader}); err != nil {
			return fmt.Errorf("failed to add team leader: %w", err)
		}
		t.MemberCount = 1
		created = t
		return nil
	})
	if err != nil {
		return team.TeamResponse{}, err
	}

	slog.Info("Team created", "team_id", created.ID, "created_by", principal.UserID)
	resp := team.ToTeamResponse(created)
	resp.MyRole = string(team.MemberRoleLeader)
	return resp, nil
}

// ListMine implements team.TeamService.
func (s *TeamServiceImpl) ListMine(ctx context.Context, principal user.Principal, filter team.TeamFilter) (team.ListTeamResponse, error) {
	teams, total, err := s.TeamRepository.ListByMember(ctx, principal.UserID, filter)
	if err != nil {
		return team.ListTeamResponse{}, fmt.Errorf("failed to list teams: %w", err)
	}

	items := make([]team.TeamResponse, len(teams))
	for i, t := range teams {
		items[i] = team.ToTeamResponse(t)
	}
	page, limit := validator.NormalizePage(filter.Page, filter.Limit)
	return team.ListTeamResponse{Teams: items, TotalCount: total, Page: page, Limit: limit}, nil
}

// Get implements team.TeamService.
func (s *TeamServiceImpl) Get(ctx context.Context, principal user.Principal, teamID string) (team.TeamResponse, error) {
	t, m, err := s.membership(ctx, principal, teamID)
	if err != nil {
		return team.TeamResponse{}, err
	}
	resp := team.ToTeamResponse(t)
	resp.MyRole = string(m.Role)
	return resp, nil
}

// Update implements team.TeamService.
func (s *TeamServiceImpl) Update(ctx context.Context, principal user.Principal, req team.UpdateTeamRequest) (team.TeamResponse, error) {
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}
	t, err := s.leader(ctx, principal, req.ID)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if !t.IsActive {
		return team.TeamResponse{}, team.ErrTeamArchived
	}

	if req.Name != nil {
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	updated, err := s.TeamRepository.Update(ctx, t)
	if err != nil {
		return team.TeamResponse{}, err
	}
	return team.ToTeamResponse(updated), nil
}

// Archive implements team.TeamService.
func (s *TeamServiceImpl) Archive(ctx context.Context, principal user.Principal, teamID string) (team.TeamResponse, error) {
	t, err := s.leader(ctx, principal, teamID)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if !t.IsActive {
		return team.ToTeamResponse(t), nil
	}

	t.IsActive = false
	archived, err := s.TeamRepository.Update(ctx, t)
	if err != nil {
		return team.TeamResponse{}, err
	}
	slog.Info("Team archived", "team_id", teamID, "archived_by", principal.UserID)
	return team.ToTeamResponse(archived), nil
}

// AddMember implements team.TeamService.
func (s *TeamServiceImpl) AddMember(ctx context.Context, principal user.Principal, req team.AddMemberRequest) (team.MemberResponse, error) {
	if err := req.Validate(); err != nil {
		return team.MemberResponse{}, err
	}
	t, err := s.leader(ctx, principal, req.TeamID)
	if err != nil {
		return team.MemberResponse{}, err
	}
	if !t.IsActive {
		return team.MemberResponse{}, team.ErrTeamArchived
	}

	u, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return team.MemberResponse{}, err
	}
	if !u.Active() {
		return team.MemberResponse{}, user.ErrUserNotFound
	}

	m, err := s.members.Add(ctx, team.Member{TeamID: t.ID, UserID: u.ID, Role: req.MemberRole()})
	if err != nil {
		return team.MemberResponse{}, err
	}
	m.FullName, m.Email = &u.FullName, &u.Email

	s.notifyUser(ctx, principal, u.ID, "Added to team",
		fmt.Sprintf("%s added you to %s as %s", principal.FullName, t.Name, m.Role),
		map[string]any{"teamId": t.ID})
	return team.ToMemberResponse(m), nil
}

// UpdateMemberRole implements team.TeamService. The team row is locked so two concurrent
// demotions cannot both pass the last-leader check.
func (s *TeamServiceImpl) UpdateMemberRole(ctx context.Context, principal user.Principal, req team.UpdateMemberRoleRequest) (team.MemberResponse, error) {
	if err := req.Validate(); err != nil {
		return team.MemberResponse{}, err
	}
	if _, err := s.leader(ctx, principal, req.TeamID); err != nil {
		return team.MemberResponse{}, err
	}

	role := team.MemberRole(req.Role)
	var updated team.Member
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.TeamRepository.Lock(ctx, req.TeamID); err != nil {
			return err
		}
		current, err := s.members.Get(ctx, req.TeamID, req.UserID)
		if err != nil {
			return err
		}
		if current.Role == team.MemberRoleLeader && role != team.MemberRoleLeader {
			if err := s.ensureAnotherLeader(ctx, req.TeamID); err != nil {
				return err
			}
		}
		updated, err = s.members.UpdateRole(ctx, req.TeamID, req.UserID, role)
		return err
	})
	if err != nil {
		return team.MemberResponse{}, err
	}
	return team.ToMemberResponse(updated), nil
}

func (s *TeamServiceImpl) ensureAnotherLeader(ctx context.Context, teamID string) error {
	leaders, err := s.members.CountByRole(ctx, teamID, team.MemberRoleLeader)
	if err != nil {
		return fmt.Errorf("failed to count leaders: %w", err)
	}
	if leaders <= 1 {
		return team.ErrLastLeader
	}
	return nil
}

// RemoveMember implements team.TeamService. Members may remove themselves.
func (s *TeamServiceImpl) RemoveMember(ctx context.Context, principal user.Principal, teamID, userID string) error {
	if userID == principal.UserID {
		if _, _, err := s.membership(ctx, principal, teamID); err != nil {
			return err
		}
	} else if _, err := s.leader(ctx, principal, teamID); err != nil {
		return err
	}

	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.TeamRepository.Lock(ctx, teamID); err != nil {
			return err
		}
		current, err := s.members.Get(ctx, teamID, userID)
		if err != nil {
			return err
		}
		if current.Role == team.MemberRoleLeader {
			if err := s.ensureAnotherLeader(ctx, teamID); err != nil {
				return err
			}
		}
		return s.members.Remove(ctx, teamID, userID)
	})
}

// ListMembers implements team.TeamService.
func (s *TeamServiceImpl) ListMembers(ctx context.Context, principal user.Principal, teamID string) ([]team.MemberResponse, error) {
	if _, _, err := s.membership(ctx, principal, teamID); err != nil {
		return nil, err
	}
	members, err := s.members.List(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	resp := make([]team.MemberResponse, len(members))
	for i, m := range members {
		resp[i] = team.ToMemberResponse(m)
	}
	return resp, nil
}

func (s *TeamServiceImpl) checkAssignee(ctx context.Context, teamID string, assigneeID *string) error {
	if assigneeID == nil {
		return nil
	}
	_, err := s.members.Get(ctx, teamID, *assigneeID)
	if errors.Is(err, team.ErrMemberNotFound) {
		return team.ErrAssigneeNotMember
	}
	return err
}

func parseDueDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	d, _ := validator.IsValidDate(*s)
	return &d
}

// CreateTask implements team.TeamService.
func (s *TeamServiceImpl) CreateTask(ctx context.Context, principal user.Principal, req team.CreateTaskRequest) (team.TaskResponse, error) {
	if err := req.Validate(); err != nil {
		return team.TaskResponse{}, err
	}
	t, _, err := s.contributor(ctx, principal, req.TeamID)
	if err != nil {
		return team.TaskResponse{}, err
	}
	if err := s.checkAssignee(ctx, t.ID, req.AssigneeID); err != nil {
		return team.TaskResponse{}, err
	}

	priority := team.TaskPriority(req.Priority)
	if priority == "" {
		priority = team.TaskPriorityMedium
	}
	task, err := s.tasks.Create(ctx, team.Task{
		TeamID:      t.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Status:      team.TaskStatusTodo,
		Priority:    priority,
		DueDate:     parseDueDate(req.DueDate),
		CreatedBy:   principal.UserID,
	})
	if err != nil {
		return team.TaskResponse{}, fmt.Errorf("failed to create task: %w", err)
	}

	if task.AssigneeID != nil {
		s.notifyUser(ctx, principal, *task.AssigneeID, "New task assigned",
			fmt.Sprintf("%s assigned you %q in %s", principal.FullName, task.Title, t.Name),
			map[string]any{"teamId": t.ID, "taskId": task.ID})
	}
	return team.ToTaskResponse(task), nil
}

// ListTasks implements team.TeamService.
func (s *TeamServiceImpl) ListTasks(ctx context.Context, principal user.Principal, filter team.TaskFilter) ([]team.TaskResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if _, _, err := s.membership(ctx, principal, filter.TeamID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	resp := make([]team.TaskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = team.ToTaskResponse(t)
	}
	return resp, nil
}

// GetTask implements team.TeamService.
func (s *TeamServiceImpl) GetTask(ctx context.Context, principal user.Principal, teamID, taskID string) (team.TaskResponse, error) {
	if _, _, err := s.membership(ctx, principal, teamID); err != nil {
		return team.TaskResponse{}, err
	}
	task, err := s.tasks.GetByID(ctx, teamID, taskID)
	if err != nil {
		return team.TaskResponse{}, err
	}
	return team.ToTaskResponse(task), nil
}

// UpdateTask implements team.TeamService.
func (s *TeamServiceImpl) UpdateTask(ctx context.Context, principal user.Principal, req team.UpdateTaskRequest) (team.TaskResponse, error) {
	if err := req.Validate(); err != nil {
		return team.TaskResponse{}, err
	}
	t, _, err := s.contributor(ctx, principal, req.TeamID)
	if err != nil {
		return team.TaskResponse{}, err
	}
	task, err := s.tasks.GetByID(ctx, req.TeamID, req.ID)
	if err != nil {
		return team.TaskResponse{}, err
	}
	if err := s.checkAssignee(ctx, req.TeamID, req.AssigneeID); err != nil {
		return team.TaskResponse{}, err
	}

	previous := task.AssigneeID
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}
	if req.Priority != nil {
		task.Priority = team.TaskPriority(*req.Priority)
	}
	if req.DueDate != nil {
		task.DueDate = parseDueDate(req.DueDate)
	}

	updated, err := s.tasks.Update(ctx, task)
	if err != nil {
		return team.TaskResponse{}, err
	}

	if updated.AssigneeID != nil && (previous == nil || *previous != *updated.AssigneeID) {
		s.notifyUser(ctx, principal, *updated.AssigneeID, "New task assigned",
			fmt.Sprintf("%s assigned you %q in %s", principal.FullName, updated.Title, t.Name),
			map[string]any{"teamId": t.ID, "taskId": updated.ID})
	}
	return team.ToTaskResponse(updated), nil
}

// UpdateTaskStatus implements team.TeamService.
func (s *TeamServiceImpl) UpdateTaskStatus(ctx context.Context, principal user.Principal, req team.UpdateTaskStatusRequest) (team.TaskResponse, error) {
	if err := req.Validate(); err != nil {
		return team.TaskResponse{}, err
	}
	if _, _, err := s.contributor(ctx, principal, req.TeamID); err != nil {
		return team.TaskResponse{}, err
	}
	task, err := s.tasks.GetByID(ctx, req.TeamID, req.ID)
	if err != nil {
		return team.TaskResponse{}, err
	}

	task.Status = team.TaskStatus(req.Status)
	updated, err := s.tasks.Update(ctx, task)
	if err != nil {
		return team.TaskResponse{}, err
	}
	if updated.Status == team.TaskStatusDone {
		s.notifyUser(ctx, principal, updated.CreatedBy, "Task completed",
			fmt.Sprintf("%s marked %q as done", principal.FullName, updated.Title),
			map[string]any{"teamId": updated.TeamID, "taskId": updated.ID})
	}
	return team.ToTaskResponse(updated), nil
}

// DeleteTask implements team.TeamService. Only the creator or a leader may delete.
func (s *TeamServiceImpl) DeleteTask(ctx context.Context, principal user.Principal, teamID, taskID string) error {
	_, m, err := s.membership(ctx, principal, teamID)
	if err != nil {
		return err
	}
	task, err := s.tasks.GetByID(ctx, teamID, taskID)
	if err != nil {
		return err
	}
	if task.CreatedBy != principal.UserID && m.Role != team.MemberRoleLeader {
		return team.ErrInsufficientTeamRole
	}
	return s.tasks.Delete(ctx, teamID, taskID)
}

// PostMessage implements team.TeamService.
func (s *TeamServiceImpl) PostMessage(ctx context.Context, principal user.Principal, req team.PostMessageRequest) (team.ChatMessageResponse, error) {
	if err := req.Validate(); err != nil {
		return team.ChatMessageResponse{}, err
	}
	if _, _, err := s.contributor(ctx, principal, req.TeamID); err != nil {
		return team.ChatMessageResponse{}, err
	}

	msg, err := s.chats.Create(ctx, team.ChatMessage{
		TeamID:   req.TeamID,
		SenderID: principal.UserID,
		Message:  strings.TrimSpace(req.Message),
	})
	if err != nil {
		return team.ChatMessageResponse{}, fmt.Errorf("failed to post message: %w", err)
	}
	if msg.SenderName == nil {
		msg.SenderName = &principal.FullName
	}
	return team.ToChatMessageResponse(msg), nil
}

// ListMessages implements team.TeamService.
func (s *TeamServiceImpl) ListMessages(ctx context.Context, principal user.Principal, teamID string, page, limit int) (team.ListChatResponse, error) {
	if _, _, err := s.membership(ctx, principal, teamID); err != nil {
		return team.ListChatResponse{}, err
	}
	page, limit = validator.NormalizePage(page, limit)
	messages, total, err := s.chats.List(ctx, teamID, page, limit)
	if err != nil {
		return team.ListChatResponse{}, fmt.Errorf("failed to list messages: %w", err)
	}

	items := make([]team.ChatMessageResponse, len(messages))
	for i, m := range messages {
		items[i] = team.ToChatMessageResponse(m)
	}
	return team.ListChatResponse{Messages: items, TotalCount: total, Page: page, Limit: limit}, nil
}

// ScheduleMeeting implements team.TeamService.
func (s *TeamServiceImpl) ScheduleMeeting(ctx context.Context, principal user.Principal, req team.ScheduleMeetingRequest) (team.MeetingResponse, error) {
	if err := req.Validate(); err != nil {
		return team.MeetingResponse{}, err
	}
	t, _, err := s.contributor(ctx, principal, req.TeamID)
	if err != nil {
		return team.MeetingResponse{}, err
	}

	start, end := req.Window()
	conflict, err := s.meetings.HasConflict(ctx, t.ID, start, end, nil)
	if err != nil {
		return team.MeetingResponse{}, fmt.Errorf("failed to check meeting conflicts: %w", err)
	}
	if conflict {
		return team.MeetingResponse{}, team.ErrMeetingConflict
	}

	meeting, err := s.meetings.Create(ctx, team.Meeting{
		TeamID:    t.ID,
		Title:     strings.TrimSpace(req.Title),
		Agenda:    req.Agenda,
		StartAt:   start,
		EndAt:     end,
		Location:  req.Location,
		CreatedBy: principal.UserID,
	})
	if err != nil {
		return team.MeetingResponse{}, fmt.Errorf("failed to schedule meeting: %w", err)
	}

	s.notifyMembers(ctx, principal, t.ID, "Meeting scheduled",
		fmt.Sprintf("%s scheduled %q for %s", principal.FullName, meeting.Title, meeting.StartAt.Format(time.RFC3339)),
		map[string]any{"teamId": t.ID, "meetingId": meeting.ID})
	return team.ToMeetingResponse(meeting), nil
}

// ListMeetings implements team.TeamService.
func (s *TeamServiceImpl) ListMeetings(ctx context.Context, principal user.Principal, teamID string) ([]team.MeetingResponse, error) {
	if _, _, err := s.membership(ctx, principal, teamID); err != nil {
		return nil, err
	}
	meetings, err := s.meetings.ListUpcoming(ctx, teamID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	resp := make([]team.MeetingResponse, len(meetings))
	for i, m := range meetings {
		resp[i] = team.ToMeetingResponse(m)
	}
	return resp, nil
}

// CancelMeeting implements team.TeamService. Only the organiser or a leader may cancel.
func (s *TeamServiceImpl) CancelMeeting(ctx context.Context, principal user.Principal, teamID, meetingID string) (team.MeetingResponse, error) {
	_, m, err := s.membership(ctx, principal, teamID)
	if err != nil {
		return team.MeetingResponse{}, err
	}
	meeting, err := s.meetings.GetByID(ctx, teamID, meetingID)
	if err != nil {
		return team.MeetingResponse{}, err
	}
	if meeting.CreatedBy != principal.UserID && m.Role != team.MemberRoleLeader {
		return team.MeetingResponse{}, team.ErrInsufficientTeamRole
	}
	if meeting.IsCancelled {
		return team.ToMeetingResponse(meeting), nil
	}

	cancelled, err := s.meetings.Cancel(ctx, teamID, meetingID)
	if err != nil {
		return team.MeetingResponse{}, err
	}
	s.notifyMembers(ctx, principal, teamID, "Meeting cancelled",
		fmt.Sprintf("%q on %s was cancelled", cancelled.Title, cancelled.StartAt.Format(time.RFC3339)),
		map[string]any{"teamId": teamID, "meetingId": cancelled.ID})
	return team.ToMeetingResponse(cancelled), nil
}

// UploadDocument implements team.TeamService.
func (s *TeamServiceImpl) UploadDocument(ctx context.Context, principal user.Principal, req team.UploadDocumentRequest) (team.DocumentResponse, error) {
	if err := req.Validate(); err != nil {
		return team.DocumentResponse{}, err
	}
	t, _, err := s.contributor(ctx, principal, req.TeamID)
	if err != nil {
		return team.DocumentResponse{}, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(req.Filename), filepath.Ext(req.Filename))
	}

	stored, err := s.fileService.UploadTeamDocument(ctx, t.ID, req.File, req.Filename, req.ContentType)
	if err != nil {
		return team.DocumentResponse{}, err
	}

	doc, err := s.documents.Create(ctx, team.Document{
		TeamID:      t.ID,
		Title:       title,
		FileURL:     stored,
		ContentType: req.ContentType,
		SizeBytes:   req.Size,
		UploadedBy:  principal.UserID,
	})
	if err != nil {
		if delErr := s.fileService.DeleteFile(ctx, stored); delErr != nil {
			slog.Warn("Failed to remove orphaned team document", "path", stored, "error", delErr)
		}
		return team.DocumentResponse{}, fmt.Errorf("failed to save document: %w", err)
	}

	return s.documentResponse(ctx, doc), nil
}

// documentResponse swaps the storage path for a signed URL when one can be issued.
func (s *TeamServiceImpl) documentResponse(ctx context.Context, doc team.Document) team.DocumentResponse {
	url, err := s.fileService.GetFileURL(ctx, doc.FileURL)
	if err != nil {
		slog.Warn("Failed to sign document URL", "document_id", doc.ID, "error", err)
	} else {
		doc.FileURL = url
	}
	return team.ToDocumentResponse(doc)
}

// ListDocuments implements team.TeamService.
func (s *TeamServiceImpl) ListDocuments(ctx context.Context, principal user.Principal, teamID string) ([]team.DocumentResponse, error) {
	if _, _, err := s.membership(ctx, principal, teamID); err != nil {
		return nil, err
	}
	docs, err := s.documents.List(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	resp := make([]team.DocumentResponse, len(docs))
	for i, d := range docs {
		resp[i] = s.documentResponse(ctx, d)
	}
	return resp, nil
}

// DeleteDocument implements team.TeamService. Only the uploader or a leader may delete.
func (s *TeamServiceImpl) DeleteDocument(ctx context.Context, principal user.Principal, teamID, documentID string) error {
	_, m, err := s.membership(ctx, principal, teamID)
	if err != nil {
		return err
	}
	doc, err := s.documents.GetByID(ctx, teamID, documentID)
	if err != nil {
		return err
	}
	if doc.UploadedBy != principal.UserID && m.Role != team.MemberRoleLeader {
		return team.ErrInsufficientTeamRole
	}

	if err := s.documents.Delete(ctx, teamID, documentID); err != nil {
		return err
	}
	if err := s.fileService.DeleteFile(ctx, doc.FileURL); err != nil {
		slog.Warn("Failed to delete team document file", "document_id", documentID, "path", doc.FileURL, "error", err)
	}
	return nil
}
