package user

import (
	"slices"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"    // Full access
	RoleHR       Role = "hr"       // Manages people data, approves requests
	RoleManager  Role = "manager"  // Approves requests
	RoleEmployee Role = "employee" // Regular employee
)

// ApproverRoles may decide pending leave and overtime requests.
var ApproverRoles = []Role{RoleAdmin, RoleHR, RoleManager}

// PeopleAdminRoles may manage users, salaries and broadcasts.
var PeopleAdminRoles = []Role{RoleAdmin, RoleHR}

func AllRoles() []Role {
	return []Role{RoleAdmin, RoleHR, RoleManager, RoleEmployee}
}

func (r Role) Valid() bool {
	return slices.Contains(AllRoles(), r)
}

type User struct {
	ID             string
	OrganizationID *string
	FullName       string
	Email          string
	PasswordHash   *string
	Role           Role
	Phone          *string
	Position       *string
	FaceImageURL   *string
	OTPSecret      *string
	OTPExpiresAt   *time.Time
	IsDisabled     bool
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Active reports whether the account may sign in and act.
func (u User) Active() bool {
	return !u.IsDisabled && !u.IsDeleted
}

// HasReferenceFace reports whether a face image is on file for verification.
func (u User) HasReferenceFace() bool {
	return u.FaceImageURL != nil && *u.FaceImageURL != ""
}

// Principal is the authenticated caller, resolved once per request.
type Principal struct {
	UserID         string
	Email          string
	FullName       string
	Role           Role
	OrganizationID *string
}

func (u User) Principal() Principal {
	return Principal{
		UserID:         u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
	}
}

// Authorize reports whether p holds one of roles. An empty role list allows any principal.
func Authorize(p Principal, roles ...Role) bool {
	if p.UserID == "" {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	return slices.Contains(roles, p.Role)
}

// CanApprove reports whether u may be chosen as the approver of a request.
func (u User) CanApprove() bool {
	return u.Active() && slices.Contains(ApproverRoles, u.Role)
}

func (p Principal) IsApprover() bool {
	return Authorize(p, ApproverRoles...)
}

func (p Principal) IsPeopleAdmin() bool {
	return Authorize(p, PeopleAdminRoles...)
}
