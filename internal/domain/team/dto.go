package team

import (
	"io"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

type CreateTeamRequest struct {
	Name           string  `json:"name" validate:"notblank,max=150"`
	Description    *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	OrganizationID *string `json:"organizationId,omitempty" validate:"omitempty,uuid"`
}

func (r *CreateTeamRequest) Validate() error {
	return validator.Struct(r).Err()
}

type UpdateTeamRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty" validate:"omitempty,notblank,max=150"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

func (r *UpdateTeamRequest) Validate() error {
	return validator.Struct(r).Err()
}

type TeamFilter struct {
	IncludeArchived bool
	Page            int
	Limit           int
}

type TeamResponse struct {
	ID             string  `json:"id"`
	OrganizationID *string `json:"organizationId,omitempty"`
	Name           string  `json:"name"`
	Description    *string `json:"description,omitempty"`
	CreatedBy      string  `json:"createdBy"`
	IsActive       bool    `json:"isActive"`
	MemberCount    int     `json:"memberCount"`
	MyRole         string  `json:"myRole,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

func ToTeamResponse(t Team) TeamResponse {
	return TeamResponse{
		ID:             t.ID,
		OrganizationID: t.OrganizationID,
		Name:           t.Name,
		Description:    t.Description,
		CreatedBy:      t.CreatedBy,
		IsActive:       t.IsActive,
		MemberCount:    t.MemberCount,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      t.UpdatedAt.Format(time.RFC3339),
	}
}

type ListTeamResponse struct {
	Teams      []TeamResponse `json:"teams"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
}

type AddMemberRequest struct {
	TeamID string `json:"-"`
	UserID string `json:"userId" validate:"required,uuid"`
	Role   string `json:"role" validate:"omitempty,oneof=leader member viewer"`
}

func (r *AddMemberRequest) Validate() error {
	return validator.Struct(r).Err()
}

// MemberRole defaults to member when no role was given.
func (r *AddMemberRequest) MemberRole() MemberRole {
	if r.Role == "" {
		return MemberRoleMember
	}
	return MemberRole(r.Role)
}

type UpdateMemberRoleRequest struct {
	TeamID string `json:"-"`
	UserID string `json:"-"`
	Role   string `json:"role" validate:"required,oneof=leader member viewer"`
}

func (r *UpdateMemberRoleRequest) Validate() error {
	return validator.Struct(r).Err()
}

type MemberResponse struct {
	TeamID   string     `json:"teamId"`
	UserID   string     `json:"userId"`
	Role     MemberRole `json:"role"`
	FullName *string    `json:"fullName,omitempty"`
	Email    *string    `json:"email,omitempty"`
	JoinedAt string     `json:"joinedAt"`
}

func ToMemberResponse(m Member) MemberResponse {
	return MemberResponse{
		TeamID:   m.TeamID,
		UserID:   m.UserID,
		Role:     m.Role,
		FullName: m.FullName,
		Email:    m.Email,
		JoinedAt: m.JoinedAt.Format(time.RFC3339),
	}
}

type CreateTaskRequest struct {
	TeamID      string  `json:"-"`
	Title       string  `json:"title" validate:"notblank,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	AssigneeID  *string `json:"assigneeId,omitempty" validate:"omitempty,uuid"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"dueDate,omitempty" validate:"omitempty,date"`
}

func (r *CreateTaskRequest) Validate() error {
	return validator.Struct(r).Err()
}

// UpdateTaskRequest leaves nil fields unchanged.
type UpdateTaskRequest struct {
	TeamID      string  `json:"-"`
	ID          string  `json:"-"`
	Title       *string `json:"title,omitempty" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	AssigneeID  *string `json:"assigneeId,omitempty" validate:"omitempty,uuid"`
	Priority    *string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"dueDate,omitempty" validate:"omitempty,date"`
}

func (r *UpdateTaskRequest) Validate() error {
	return validator.Struct(r).Err()
}

type UpdateTaskStatusRequest struct {
	TeamID string `json:"-"`
	ID     string `json:"-"`
	Status string `json:"status" validate:"required,oneof=todo in_progress done"`
}

func (r *UpdateTaskStatusRequest) Validate() error {
	return validator.Struct(r).Err()
}

type TaskFilter struct {
	TeamID     string
	Status     *string
	AssigneeID *string
}

func (f *TaskFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil && !validator.IsInSlice(TaskStatus(*f.Status), []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}) {
		errs.Add("status", "status must be one of: todo in_progress done")
	}
	return errs.Err()
}

type TaskResponse struct {
	ID          string       `json:"id"`
	TeamID      string       `json:"teamId"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	AssigneeID  *string      `json:"assigneeId,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *string      `json:"dueDate,omitempty"`
	CreatedBy   string       `json:"createdBy"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

func ToTaskResponse(t Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		TeamID:      t.TeamID,
		Title:       t.Title,
		Description: t.Description,
		AssigneeID:  t.AssigneeID,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(validator.DateLayout)
		resp.DueDate = &d
	}
	return resp
}

type PostMessageRequest struct {
	TeamID  string `json:"-"`
	Message string `json:"message" validate:"notblank,max=4000"`
}

func (r *PostMessageRequest) Validate() error {
	return validator.Struct(r).Err()
}

type ChatMessageResponse struct {
	ID         string  `json:"id"`
	TeamID     string  `json:"teamId"`
	SenderID   string  `json:"senderId"`
	SenderName *string `json:"senderName,omitempty"`
	Message    string  `json:"message"`
	CreatedAt  string  `json:"createdAt"`
}

func ToChatMessageResponse(m ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:         m.ID,
		TeamID:     m.TeamID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Message:    m.Message,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
}

type ListChatResponse struct {
	Messages   []ChatMessageResponse `json:"messages"`
	TotalCount int64                 `json:"totalCount"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
}

type ScheduleMeetingRequest struct {
	TeamID   string  `json:"-"`
	Title    string  `json:"title" validate:"notblank,max=255"`
	Agenda   *string `json:"agenda,omitempty" validate:"omitempty,max=5000"`
	StartAt  string  `json:"startAt" validate:"required"`
	EndAt    string  `json:"endAt" validate:"required"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=255"`

	startAt time.Time
	endAt   time.Time
}

func (r *ScheduleMeetingRequest) Validate() error {
	errs := validator.Struct(r)
	var ok bool
	if r.StartAt != "" {
		if r.startAt, ok = validator.IsValidDateTime(r.StartAt); !ok {
			errs.Add("startAt", "startAt must be an RFC3339 timestamp")
		}
	}
	if r.EndAt != "" {
		if r.endAt, ok = validator.IsValidDateTime(r.EndAt); !ok {
			errs.Add("endAt", "endAt must be an RFC3339 timestamp")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	if !r.endAt.After(r.startAt) {
		return ErrInvalidTimeRange
	}
	return nil
}

// Window returns the parsed meeting window; only meaningful after Validate succeeded.
func (r *ScheduleMeetingRequest) Window() (time.Time, time.Time) {
	return r.startAt, r.endAt
}

type MeetingResponse struct {
	ID          string  `json:"id"`
	TeamID      string  `json:"teamId"`
	Title       string  `json:"title"`
	Agenda      *string `json:"agenda,omitempty"`
	StartAt     string  `json:"startAt"`
	EndAt       string  `json:"endAt"`
	Location    *string `json:"location,omitempty"`
	CreatedBy   string  `json:"createdBy"`
	IsCancelled bool    `json:"isCancelled"`
	CreatedAt   string  `json:"createdAt"`
}

func ToMeetingResponse(m Meeting) MeetingResponse {
	return MeetingResponse{
		ID:          m.ID,
		TeamID:      m.TeamID,
		Title:       m.Title,
		Agenda:      m.Agenda,
		StartAt:     m.StartAt.Format(time.RFC3339),
		EndAt:       m.EndAt.Format(time.RFC3339),
		Location:    m.Location,
		CreatedBy:   m.CreatedBy,
		IsCancelled: m.IsCancelled,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}

type UploadDocumentRequest struct {
	TeamID      string
	Title       string
	File        io.Reader
	Filename    string
	ContentType string
	Size        int64
}

func (r *UploadDocumentRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.File == nil {
		errs.Add("file", "file is required")
	}
	if len(r.Title) > 255 {
		errs.Add("title", "title must be at most 255 characters")
	}
	if len(errs) > 0 {
		return errs
	}
	if r.Size > MaxDocumentSize {
		return ErrDocumentTooLarge
	}
	return nil
}

type DocumentResponse struct {
	ID          string `json:"id"`
	TeamID      string `json:"teamId"`
	Title       string `json:"title"`
	FileURL     string `json:"fileUrl"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
	UploadedBy  string `json:"uploadedBy"`
	CreatedAt   string `json:"createdAt"`
}

func ToDocumentResponse(d Document) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		TeamID:      d.TeamID,
		Title:       d.Title,
		FileURL:     d.FileURL,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
}
