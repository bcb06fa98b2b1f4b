package user

import "context"

type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Get(ctx context.Context, id string) (UserResponse, error)
	List(ctx context.Context, filter UserFilter) (ListUserResponse, error)
	Update(ctx context.Context, req UpdateUserRequest) (UserResponse, error)
	UpdateProfile(ctx context.Context, principal Principal, req UpdateProfileRequest) (UserResponse, error)
	SetRole(ctx context.Context, principal Principal, userID string, req SetRoleRequest) (UserResponse, error)
	SetOrganization(ctx context.Context, userID string, req SetOrganizationRequest) (UserResponse, error)
	SetDisabled(ctx context.Context, principal Principal, userID string, disabled bool) error
	Delete(ctx context.Context, principal Principal, userID string) error
	UploadFaceImage(ctx context.Context, req UploadFaceRequest) (UserResponse, error)
}
