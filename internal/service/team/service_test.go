package team

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/file"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTeams struct {
	mu    sync.Mutex
	byID  map[string]team.Team
	locks int
}

func (m *memoryTeams) Create(_ context.Context, t team.Team) (team.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = fmt.Sprintf("team-%d", len(m.byID)+1)
	m.byID[t.ID] = t
	return t, nil
}

func (m *memoryTeams) GetByID(_ context.Context, id string) (team.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return team.Team{}, team.ErrTeamNotFound
	}
	return t, nil
}

func (m *memoryTeams) Lock(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks++
	return nil
}

func (m *memoryTeams) ListByMember(context.Context, string, team.TeamFilter) ([]team.Team, int64, error) {
	return nil, 0, nil
}

func (m *memoryTeams) Update(_ context.Context, t team.Team) (team.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[t.ID] = t
	return t, nil
}

type memoryMembers struct {
	mu      sync.Mutex
	members []team.Member
}

func (m *memoryMembers) find(teamID, userID string) int {
	return slices.IndexFunc(m.members, func(e team.Member) bool { return e.TeamID == teamID && e.UserID == userID })
}

func (m *memoryMembers) Add(_ context.Context, member team.Member) (team.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(member.TeamID, member.UserID) >= 0 {
		return team.Member{}, team.ErrAlreadyMember
	}
	m.members = append(m.members, member)
	return member, nil
}

func (m *memoryMembers) Get(_ context.Context, teamID, userID string) (team.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(teamID, userID)
	if i < 0 {
		return team.Member{}, team.ErrMemberNotFound
	}
	return m.members[i], nil
}

func (m *memoryMembers) List(_ context.Context, teamID string) ([]team.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []team.Member
	for _, e := range m.members {
		if e.TeamID == teamID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryMembers) UpdateRole(_ context.Context, teamID, userID string, role team.MemberRole) (team.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(teamID, userID)
	if i < 0 {
		return team.Member{}, team.ErrMemberNotFound
	}
	m.members[i].Role = role
	return m.members[i], nil
}

func (m *memoryMembers) Remove(_ context.Context, teamID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(teamID, userID)
	if i < 0 {
		return team.ErrMemberNotFound
	}
	m.members = slices.Delete(m.members, i, i+1)
	return nil
}

func (m *memoryMembers) CountByRole(_ context.Context, teamID string, role team.MemberRole) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.members {
		if e.TeamID == teamID && e.Role == role {
			count++
		}
	}
	return count, nil
}

type memoryTasks struct {
	byID map[string]team.Task
}

func (m *memoryTasks) Create(_ context.Context, t team.Task) (team.Task, error) {
	t.ID = fmt.Sprintf("task-%d", len(m.byID)+1)
	m.byID[t.ID] = t
	return t, nil
}

func (m *memoryTasks) GetByID(_ context.Context, teamID, id string) (team.Task, error) {
	t, ok := m.byID[id]
	if !ok || t.TeamID != teamID {
		return team.Task{}, team.ErrTaskNotFound
	}
	return t, nil
}

func (m *memoryTasks) List(_ context.Context, filter team.TaskFilter) ([]team.Task, error) {
	var out []team.Task
	for _, t := range m.byID {
		if t.TeamID == filter.TeamID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memoryTasks) Update(_ context.Context, t team.Task) (team.Task, error) {
	m.byID[t.ID] = t
	return t, nil
}

func (m *memoryTasks) Delete(_ context.Context, teamID, id string) error {
	if _, err := m.GetByID(context.Background(), teamID, id); err != nil {
		return err
	}
	delete(m.byID, id)
	return nil
}

type memoryChats struct {
	messages []team.ChatMessage
}

func (m *memoryChats) Create(_ context.Context, msg team.ChatMessage) (team.ChatMessage, error) {
	msg.ID = fmt.Sprintf("msg-%d", len(m.messages)+1)
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memoryChats) List(_ context.Context, teamID string, page, limit int) ([]team.ChatMessage, int64, error) {
	out := slices.Clone(m.messages)
	slices.Reverse(out)
	return out, int64(len(out)), nil
}

type memoryMeetings struct {
	byID map[string]team.Meeting
}

func (m *memoryMeetings) Create(_ context.Context, meeting team.Meeting) (team.Meeting, error) {
	meeting.ID = fmt.Sprintf("meeting-%d", len(m.byID)+1)
	m.byID[meeting.ID] = meeting
	return meeting, nil
}

func (m *memoryMeetings) GetByID(_ context.Context, teamID, id string) (team.Meeting, error) {
	meeting, ok := m.byID[id]
	if !ok || meeting.TeamID != teamID {
		return team.Meeting{}, team.ErrMeetingNotFound
	}
	return meeting, nil
}

func (m *memoryMeetings) ListUpcoming(_ context.Context, teamID string, from time.Time) ([]team.Meeting, error) {
	var out []team.Meeting
	for _, meeting := range m.byID {
		if meeting.TeamID == teamID && !meeting.IsCancelled && meeting.EndAt.After(from) {
			out = append(out, meeting)
		}
	}
	return out, nil
}

func (m *memoryMeetings) HasConflict(_ context.Context, teamID string, start, end time.Time, excludeID *string) (bool, error) {
	for _, meeting := range m.byID {
		if meeting.TeamID == teamID && (excludeID == nil || meeting.ID != *excludeID) && meeting.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryMeetings) Cancel(_ context.Context, teamID, id string) (team.Meeting, error) {
	meeting, err := m.GetByID(context.Background(), teamID, id)
	if err != nil {
		return team.Meeting{}, err
	}
	meeting.IsCancelled = true
	m.byID[id] = meeting
	return meeting, nil
}

type memoryDocuments struct {
	byID map[string]team.Document
}

func (m *memoryDocuments) Create(_ context.Context, d team.Document) (team.Document, error) {
	d.ID = fmt.Sprintf("doc-%d", len(m.byID)+1)
	m.byID[d.ID] = d
	return d, nil
}

func (m *memoryDocuments) GetByID(_ context.Context, teamID, id string) (team.Document, error) {
	d, ok := m.byID[id]
	if !ok || d.TeamID != teamID {
		return team.Document{}, team.ErrDocumentNotFound
	}
	return d, nil
}

func (m *memoryDocuments) List(_ context.Context, teamID string) ([]team.Document, error) {
	var out []team.Document
	for _, d := range m.byID {
		if d.TeamID == teamID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memoryDocuments) Delete(_ context.Context, teamID, id string) error {
	if _, err := m.GetByID(context.Background(), teamID, id); err != nil {
		return err
	}
	delete(m.byID, id)
	return nil
}

type stubFiles struct {
	file.FileService
	stored  []string
	deleted []string
}

func (s *stubFiles) UploadTeamDocument(_ context.Context, teamID string, _ io.Reader, filename string, _ string) (string, error) {
	p := "teams/" + teamID + "/documents/" + filename
	s.stored = append(s.stored, p)
	return p, nil
}

func (s *stubFiles) DeleteFile(_ context.Context, path string) error {
	s.deleted = append(s.deleted, path)
	return nil
}

func (s *stubFiles) GetFileURL(_ context.Context, path string) (string, error) {
	return "https://storage.example.com/" + path, nil
}

var (
	lead   = user.User{ID: "6a0c1f7e-0000-4000-8000-000000000001", FullName: "Nadia", Email: "nadia@example.com", Role: user.RoleManager}
	dev    = user.User{ID: "6a0c1f7e-0000-4000-8000-000000000002", FullName: "Arif", Email: "arif@example.com", Role: user.RoleEmployee}
	guest  = user.User{ID: "6a0c1f7e-0000-4000-8000-000000000003", FullName: "Lina", Email: "lina@example.com", Role: user.RoleEmployee}
	admin  = user.User{ID: "6a0c1f7e-0000-4000-8000-000000000004", FullName: "Ayu", Email: "ayu@example.com", Role: user.RoleAdmin}
	absent = user.User{ID: "6a0c1f7e-0000-4000-8000-000000000005", FullName: "Eko", Email: "eko@example.com", Role: user.RoleEmployee, IsDisabled: true}
)

type fixture struct {
	svc        *TeamServiceImpl
	teams      *memoryTeams
	members    *memoryMembers
	files      *stubFiles
	notifier   *servicetest.Notifier
	transactor *servicetest.Transactor
	teamID     string
}

// newFixture creates a team led by lead, with dev as member and guest as viewer.
func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		teams:      &memoryTeams{byID: make(map[string]team.Team)},
		members:    &memoryMembers{},
		files:      &stubFiles{},
		notifier:   &servicetest.Notifier{},
		transactor: &servicetest.Transactor{},
	}
	f.svc = NewTeamService(Repositories{
		Teams:     f.teams,
		Members:   f.members,
		Tasks:     &memoryTasks{byID: make(map[string]team.Task)},
		Chats:     &memoryChats{},
		Meetings:  &memoryMeetings{byID: make(map[string]team.Meeting)},
		Documents: &memoryDocuments{byID: make(map[string]team.Document)},
	}, servicetest.NewUsers(lead, dev, guest, admin, absent), f.files, f.notifier, f.transactor).(*TeamServiceImpl)
	f.svc.now = servicetest.NewClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)).Now

	created, err := f.svc.Create(t.Context(), lead.Principal(), team.CreateTeamRequest{Name: " Platform "})
	require.NoError(t, err)
	f.teamID = created.ID

	_, err = f.svc.AddMember(t.Context(), lead.Principal(), team.AddMemberRequest{TeamID: f.teamID, UserID: dev.ID})
	require.NoError(t, err)
	_, err = f.svc.AddMember(t.Context(), lead.Principal(), team.AddMemberRequest{TeamID: f.teamID, UserID: guest.ID, Role: "viewer"})
	require.NoError(t, err)
	return f
}

func TestCreate_CreatorLeads(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Get(t.Context(), lead.Principal(), f.teamID)
	require.NoError(t, err)
	assert.Equal(t, "Platform", got.Name)
	assert.Equal(t, "leader", got.MyRole)

	_, err = f.svc.Get(t.Context(), absent.Principal(), f.teamID)
	assert.ErrorIs(t, err, team.ErrNotTeamMember)

	got, err = f.svc.Get(t.Context(), admin.Principal(), f.teamID)
	require.NoError(t, err)
	assert.Equal(t, "leader", got.MyRole)
}

func TestAddMember(t *testing.T) {
	f := newFixture(t)

	reqs := f.notifier.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, []string{dev.ID}, reqs[0].RecipientIDs)

	_, err := f.svc.AddMember(t.Context(), lead.Principal(), team.AddMemberRequest{TeamID: f.teamID, UserID: dev.ID})
	assert.ErrorIs(t, err, team.ErrAlreadyMember)

	_, err = f.svc.AddMember(t.Context(), lead.Principal(), team.AddMemberRequest{TeamID: f.teamID, UserID: absent.ID})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.svc.AddMember(t.Context(), dev.Principal(), team.AddMemberRequest{TeamID: f.teamID, UserID: admin.ID})
	assert.ErrorIs(t, err, team.ErrInsufficientTeamRole)
}

func TestLastLeaderIsKept(t *testing.T) {
	f := newFixture(t)
	p := lead.Principal()

	_, err := f.svc.UpdateMemberRole(t.Context(), p, team.UpdateMemberRoleRequest{TeamID: f.teamID, UserID: lead.ID, Role: "member"})
	assert.ErrorIs(t, err, team.ErrLastLeader)
	assert.ErrorIs(t, f.svc.RemoveMember(t.Context(), p, f.teamID, lead.ID), team.ErrLastLeader)
	assert.Equal(t, 2, f.teams.locks)

	_, err = f.svc.UpdateMemberRole(t.Context(), p, team.UpdateMemberRoleRequest{TeamID: f.teamID, UserID: dev.ID, Role: "leader"})
	require.NoError(t, err)
	require.NoError(t, f.svc.RemoveMember(t.Context(), p, f.teamID, lead.ID))

	members, err := f.svc.ListMembers(t.Context(), dev.Principal(), f.teamID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestRemoveMember_Self(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.RemoveMember(t.Context(), guest.Principal(), f.teamID, guest.ID))
	assert.ErrorIs(t, f.svc.RemoveMember(t.Context(), dev.Principal(), f.teamID, lead.ID), team.ErrInsufficientTeamRole)
}

func TestTasks(t *testing.T) {
	f := newFixture(t)
	before := len(f.notifier.Requests())

	_, err := f.svc.CreateTask(t.Context(), lead.Principal(), team.CreateTaskRequest{TeamID: f.teamID, Title: "Ship", AssigneeID: &admin.ID})
	assert.ErrorIs(t, err, team.ErrAssigneeNotMember)

	_, err = f.svc.CreateTask(t.Context(), guest.Principal(), team.CreateTaskRequest{TeamID: f.teamID, Title: "Ship"})
	assert.ErrorIs(t, err, team.ErrInsufficientTeamRole)

	due := "2026-03-09"
	task, err := f.svc.CreateTask(t.Context(), lead.Principal(), team.CreateTaskRequest{TeamID: f.teamID, Title: "Ship", AssigneeID: &dev.ID, DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, team.TaskStatusTodo, task.Status)
	assert.Equal(t, team.TaskPriorityMedium, task.Priority)
	assert.Equal(t, due, *task.DueDate)

	reqs := f.notifier.Requests()
	require.Len(t, reqs, before+1)
	assert.Equal(t, []string{dev.ID}, reqs[before].RecipientIDs)

	done, err := f.svc.UpdateTaskStatus(t.Context(), dev.Principal(), team.UpdateTaskStatusRequest{TeamID: f.teamID, ID: task.ID, Status: "done"})
	require.NoError(t, err)
	assert.Equal(t, team.TaskStatusDone, done.Status)

	assert.ErrorIs(t, f.svc.DeleteTask(t.Context(), dev.Principal(), f.teamID, task.ID), team.ErrInsufficientTeamRole)
	require.NoError(t, f.svc.DeleteTask(t.Context(), lead.Principal(), f.teamID, task.ID))
	_, err = f.svc.GetTask(t.Context(), lead.Principal(), f.teamID, task.ID)
	assert.ErrorIs(t, err, team.ErrTaskNotFound)
}

func TestChat(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PostMessage(t.Context(), guest.Principal(), team.PostMessageRequest{TeamID: f.teamID, Message: "hi"})
	assert.ErrorIs(t, err, team.ErrInsufficientTeamRole)

	_, err = f.svc.PostMessage(t.Context(), dev.Principal(), team.PostMessageRequest{TeamID: f.teamID, Message: "first"})
	require.NoError(t, err)
	_, err = f.svc.PostMessage(t.Context(), lead.Principal(), team.PostMessageRequest{TeamID: f.teamID, Message: "second"})
	require.NoError(t, err)

	list, err := f.svc.ListMessages(t.Context(), guest.Principal(), f.teamID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list.Messages, 2)
	assert.Equal(t, "second", list.Messages[0].Message)
	assert.Equal(t, 20, list.Limit)
}

func TestMeetings(t *testing.T) {
	f := newFixture(t)
	before := len(f.notifier.Requests())

	m, err := f.svc.ScheduleMeeting(t.Context(), dev.Principal(), team.ScheduleMeetingRequest{
		TeamID: f.teamID, Title: "Planning", StartAt: "2026-03-03T09:00:00Z", EndAt: "2026-03-03T10:00:00Z",
	})
	require.NoError(t, err)

	reqs := f.notifier.Requests()
	require.Len(t, reqs, before+1)
	assert.ElementsMatch(t, []string{lead.ID, guest.ID}, reqs[before].RecipientIDs)

	_, err = f.svc.ScheduleMeeting(t.Context(), lead.Principal(), team.ScheduleMeetingRequest{
		TeamID: f.teamID, Title: "Clash", StartAt: "2026-03-03T09:30:00Z", EndAt: "2026-03-03T11:00:00Z",
	})
	assert.ErrorIs(t, err, team.ErrMeetingConflict)

	_, err = f.svc.ScheduleMeeting(t.Context(), lead.Principal(), team.ScheduleMeetingRequest{
		TeamID: f.teamID, Title: "Retro", StartAt: "2026-03-03T10:00:00Z", EndAt: "2026-03-03T11:00:00Z",
	})
	require.NoError(t, err)

	_, err = f.svc.CancelMeeting(t.Context(), guest.Principal(), f.teamID, m.ID)
	assert.ErrorIs(t, err, team.ErrInsufficientTeamRole)
	cancelled, err := f.svc.CancelMeeting(t.Context(), dev.Principal(), f.teamID, m.ID)
	require.NoError(t, err)
	assert.True(t, cancelled.IsCancelled)

	upcoming, err := f.svc.ListMeetings(t.Context(), guest.Principal(), f.teamID)
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)
}

func TestDocuments(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.UploadDocument(t.Context(), dev.Principal(), team.UploadDocumentRequest{
		TeamID: f.teamID, File: strings.NewReader("%PDF"), Filename: "handbook.pdf", ContentType: "application/pdf", Size: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "handbook", doc.Title)
	assert.Equal(t, "https://storage.example.com/teams/"+f.teamID+"/documents/handbook.pdf", doc.FileURL)

	_, err = f.svc.UploadDocument(t.Context(), guest.Principal(), team.UploadDocumentRequest{
		TeamID: f.teamID, File: strings.NewReader("x"), Filename: "x.txt", Size: 1,
	})
	assert.ErrorIs(t, err, team.ErrInsufficientTeamRole)

	assert.ErrorIs(t, f.svc.DeleteDocument(t.Context(), guest.Principal(), f.teamID, doc.ID), team.ErrInsufficientTeamRole)
	require.NoError(t, f.svc.DeleteDocument(t.Context(), lead.Principal(), f.teamID, doc.ID))
	assert.Equal(t, f.files.stored, f.files.deleted)

	docs, err := f.svc.ListDocuments(t.Context(), dev.Principal(), f.teamID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestArchive(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Archive(t.Context(), dev.Principal(), f.teamID)
	assert.ErrorIs(t, err, team.ErrInsufficientTeamRole)

	archived, err := f.svc.Archive(t.Context(), lead.Principal(), f.teamID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)

	_, err = f.svc.PostMessage(t.Context(), dev.Principal(), team.PostMessageRequest{TeamID: f.teamID, Message: "anyone?"})
	assert.ErrorIs(t, err, team.ErrTeamArchived)

	_, err = f.svc.Get(t.Context(), dev.Principal(), f.teamID)
	assert.NoError(t, err)
}
