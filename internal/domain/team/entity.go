package team

import "time"

// MaxDocumentSize is the largest team document accepted for upload.
const MaxDocumentSize = 20 << 20

type Team struct {
	ID             string
	OrganizationID *string
	Name           string
	Description    *string
	CreatedBy      string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	MemberCount    int
}

type MemberRole string

const (
	MemberRoleLeader MemberRole = "leader"
	MemberRoleMember MemberRole = "member"
	MemberRoleViewer MemberRole = "viewer"
)

func (r MemberRole) Valid() bool {
	switch r {
	case MemberRoleLeader, MemberRoleMember, MemberRoleViewer:
		return true
	}
	return false
}

// CanContribute reports whether the role may post chat messages, tasks and documents.
func (r MemberRole) CanContribute() bool {
	return r == MemberRoleLeader || r == MemberRoleMember
}

type Member struct {
	TeamID   string
	UserID   string
	Role     MemberRole
	JoinedAt time.Time

	FullName *string
	Email    *string
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID          string
	TeamID      string
	Title       string
	Description *string
	AssigneeID  *string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ChatMessage struct {
	ID         string
	TeamID     string
	SenderID   string
	Message    string
	CreatedAt  time.Time
	SenderName *string
}

type Meeting struct {
	ID          string
	TeamID      string
	Title       string
	Agenda      *string
	StartAt     time.Time
	EndAt       time.Time
	Location    *string
	CreatedBy   string
	IsCancelled bool
	CreatedAt   time.Time
}

// Overlaps reports whether [start, end) intersects the meeting. Touching edges do not overlap.
func (m Meeting) Overlaps(start, end time.Time) bool {
	return !m.IsCancelled && start.Before(m.EndAt) && m.StartAt.Before(end)
}

type Document struct {
	ID          string
	TeamID      string
	Title       string
	FileURL     string
	ContentType string
	SizeBytes   int64
	UploadedBy  string
	CreatedAt   time.Time
}
