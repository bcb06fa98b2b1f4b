package team

import (
	"context"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
)

type TeamService interface {
	Create(ctx context.Context, principal user.Principal, req CreateTeamRequest) (TeamResponse, error)
	ListMine(ctx context.Context, principal user.Principal, filter TeamFilter) (ListTeamResponse, error)
	Get(ctx context.Context, principal user.Principal, teamID string) (TeamResponse, error)
	Update(ctx context.Context, principal user.Principal, req UpdateTeamRequest) (TeamResponse, error)
	Archive(ctx context.Context, principal user.Principal, teamID string) (TeamResponse, error)

	AddMember(ctx context.Context, principal user.Principal, req AddMemberRequest) (MemberResponse, error)
	UpdateMemberRole(ctx context.Context, principal user.Principal, req UpdateMemberRoleRequest) (MemberResponse, error)
	RemoveMember(ctx context.Context, principal user.Principal, teamID, userID string) error
	ListMembers(ctx context.Context, principal user.Principal, teamID string) ([]MemberResponse, error)

	CreateTask(ctx context.Context, principal user.Principal, req CreateTaskRequest) (TaskResponse, error)
	ListTasks(ctx context.Context, principal user.Principal, filter TaskFilter) ([]TaskResponse, error)
	GetTask(ctx context.Context, principal user.Principal, teamID, taskID string) (TaskResponse, error)
	UpdateTask(ctx context.Context, principal user.Principal, req UpdateTaskRequest) (TaskResponse, error)
	UpdateTaskStatus(ctx context.Context, principal user.Principal, req UpdateTaskStatusRequest) (TaskResponse, error)
	DeleteTask(ctx context.Context, principal user.Principal, teamID, taskID string) error

	PostMessage(ctx context.Context, principal user.Principal, req PostMessageRequest) (ChatMessageResponse, error)
	ListMessages(ctx context.Context, principal user.Principal, teamID string, page, limit int) (ListChatResponse, error)

	ScheduleMeeting(ctx context.Context, principal user.Principal, req ScheduleMeetingRequest) (MeetingResponse, error)
	ListMeetings(ctx context.Context, principal user.Principal, teamID string) ([]MeetingResponse, error)
	CancelMeeting(ctx context.Context, principal user.Principal, teamID, meetingID string) (MeetingResponse, error)

	UploadDocument(ctx context.Context, principal user.Principal, req UploadDocumentRequest) (DocumentResponse, error)
	ListDocuments(ctx context.Context, principal user.Principal, teamID string) ([]DocumentResponse, error)
	DeleteDocument(ctx context.Context, principal user.Principal, teamID, documentID string) error
}
