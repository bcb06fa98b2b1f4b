package user

import (
	"io"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID             string  `json:"id"`
	OrganizationID *string `json:"organizationId,omitempty"`
	FullName       string  `json:"fullName"`
	Email          string  `json:"email"`
	Role           Role    `json:"role"`
	Phone          *string `json:"phone,omitempty"`
	Position       *string `json:"position,omitempty"`
	FaceImageURL   *string `json:"faceImageUrl,omitempty"`
	IsDisabled     bool    `json:"isDisabled"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		FullName:       u.FullName,
		Email:          u.Email,
		Role:           u.Role,
		Phone:          u.Phone,
		Position:       u.Position,
		FaceImageURL:   u.FaceImageURL,
		IsDisabled:     u.IsDisabled,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      u.UpdatedAt.Format(time.RFC3339),
	}
}

type CreateUserRequest struct {
	FullName       string  `json:"fullName" validate:"notblank,max=255"`
	Email          string  `json:"email" validate:"required,email,max=255"`
	Password       string  `json:"password" validate:"required,min=8,max=72"`
	Role           string  `json:"role" validate:"required,oneof=admin hr manager employee"`
	OrganizationID *string `json:"organizationId,omitempty" validate:"omitempty,uuid"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Position       *string `json:"position,omitempty" validate:"omitempty,max=100"`
}

func (r *CreateUserRequest) Validate() error {
	return validator.Struct(r).Err()
}

// UpdateUserRequest is applied by admins; nil fields are left unchanged.
type UpdateUserRequest struct {
	ID       string  `json:"-"`
	FullName *string `json:"fullName,omitempty" validate:"omitempty,notblank,max=255"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Position *string `json:"position,omitempty" validate:"omitempty,max=100"`
}

func (r *UpdateUserRequest) Validate() error {
	return validator.Struct(r).Err()
}

// UpdateProfileRequest is applied by the user to their own record.
type UpdateProfileRequest struct {
	FullName *string `json:"fullName,omitempty" validate:"omitempty,notblank,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

func (r *UpdateProfileRequest) Validate() error {
	return validator.Struct(r).Err()
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin hr manager employee"`
}

func (r *SetRoleRequest) Validate() error {
	return validator.Struct(r).Err()
}

type SetOrganizationRequest struct {
	OrganizationID *string `json:"organizationId" validate:"omitempty,uuid"`
}

func (r *SetOrganizationRequest) Validate() error {
	return validator.Struct(r).Err()
}

type UploadFaceRequest struct {
	UserID   string
	File     io.Reader
	Filename string
}

type UserFilter struct {
	Role           *Role
	OrganizationID *string
	Search         *string
	Page           int
	Limit          int
}

type ListUserResponse struct {
	Users      []UserResponse `json:"users"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
}
