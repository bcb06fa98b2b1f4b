package team

import "errors"

// Team domain errors
var (
	ErrTeamNotFound         = errors.New("team not found")
	ErrTeamArchived         = errors.New("team is archived")
	ErrNotTeamMember        = errors.New("user is not a member of this team")
	ErrAlreadyMember        = errors.New("user is already a member of this team")
	ErrMemberNotFound       = errors.New("team member not found")
	ErrLastLeader           = errors.New("a team must keep at least one leader")
	ErrInsufficientTeamRole = errors.New("team role does not allow this action")

	ErrTaskNotFound      = errors.New("task not found")
	ErrAssigneeNotMember = errors.New("assignee must be a member of the team")

	ErrMeetingNotFound  = errors.New("meeting not found")
	ErrMeetingConflict  = errors.New("meeting overlaps another meeting of this team")
	ErrInvalidTimeRange = errors.New("end time must be after start time")

	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentTooLarge = errors.New("document exceeds the 20MB limit")
)
