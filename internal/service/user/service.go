package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/file"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	user.UserRepository
	organizations organization.OrganizationRepository
	fileService   file.FileService
}

func NewUserService(userRepository user.UserRepository, organizationRepository organization.OrganizationRepository, fileService file.FileService) user.UserService {
	return &UserServiceImpl{
		UserRepository: userRepository,
		organizations:  organizationRepository,
		fileService:    fileService,
	}
}

func (s *UserServiceImpl) ensureOrganization(ctx context.Context, organizationID *string) error {
	if organizationID == nil {
		return nil
	}
	_, err := s.organizations.GetByID(ctx, *organizationID)
	return err
}

// Create implements user.UserService.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	if err := s.ensureOrganization(ctx, req.OrganizationID); err != nil {
		return user.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	passwordHash := string(hash)

	created, err := s.UserRepository.Create(ctx, user.User{
		OrganizationID: req.OrganizationID,
		FullName:       strings.TrimSpace(req.FullName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:   &passwordHash,
		Role:           user.Role(req.Role),
		Phone:          req.Phone,
		Position:       req.Position,
	})
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(created), nil
}

func (s *UserServiceImpl) Get(ctx context.Context, id string) (user.UserResponse, error) {
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	if u.IsDeleted {
		return user.UserResponse{}, user.ErrUserNotFound
	}
	return user.ToResponse(u), nil
}

func (s *UserServiceImpl) List(ctx context.Context, filter user.UserFilter) (user.ListUserResponse, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return user.ListUserResponse{}, user.ErrInvalidRole
	}

	users, total, err := s.UserRepository.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	resp := make([]user.UserResponse, len(users))
	for i, u := range users {
		resp[i] = user.ToResponse(u)
	}
	page, limit := validator.NormalizePage(filter.Page, filter.Limit)
	return user.ListUserResponse{
		Users:      resp,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	}, nil
}

// Update implements user.UserService.
func (s *UserServiceImpl) Update(ctx context.Context, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.activeUser(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, err
	}
	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.Position != nil {
		u.Position = req.Position
	}

	updated, err := s.UserRepository.Update(ctx, u)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(updated), nil
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, principal user.Principal, req user.UpdateProfileRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.activeUser(ctx, principal.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}
	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}

	updated, err := s.UserRepository.Update(ctx, u)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(updated), nil
}

// SetRole implements user.UserService. Only admins may grant or revoke the admin role.
func (s *UserServiceImpl) SetRole(ctx context.Context, principal user.Principal, userID string, req user.SetRoleRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	if principal.UserID == userID {
		return user.UserResponse{}, user.ErrCannotModifySelf
	}

	u, err := s.activeUser(ctx, userID)
	if err != nil {
		return user.UserResponse{}, err
	}

	role := user.Role(req.Role)
	if (role == user.RoleAdmin || u.Role == user.RoleAdmin) && principal.Role != user.RoleAdmin {
		return user.UserResponse{}, user.ErrInsufficientPermissions
	}

	u.Role = role
	updated, err := s.UserRepository.Update(ctx, u)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(updated), nil
}

func (s *UserServiceImpl) SetOrganization(ctx context.Context, userID string, req user.SetOrganizationRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	if err := s.ensureOrganization(ctx, req.OrganizationID); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.activeUser(ctx, userID)
	if err != nil {
		return user.UserResponse{}, err
	}
	u.OrganizationID = req.OrganizationID

	updated, err := s.UserRepository.Update(ctx, u)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(updated), nil
}

func (s *UserServiceImpl) SetDisabled(ctx context.Context, principal user.Principal, userID string, disabled bool) error {
	if principal.UserID == userID {
		return user.ErrCannotModifySelf
	}
	return s.UserRepository.SetDisabled(ctx, userID, disabled)
}

func (s *UserServiceImpl) Delete(ctx context.Context, principal user.Principal, userID string) error {
	if principal.UserID == userID {
		return user.ErrCannotModifySelf
	}
	return s.UserRepository.SoftDelete(ctx, userID)
}

// UploadFaceImage implements user.UserService. The previous reference image is removed
// once the new one is stored.
func (s *UserServiceImpl) UploadFaceImage(ctx context.Context, req user.UploadFaceRequest) (user.UserResponse, error) {
	u, err := s.activeUser(ctx, req.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}

	key, err := s.fileService.UploadFaceImage(ctx, u.ID, req.File, req.Filename)
	if err != nil {
		if errors.Is(err, file.ErrUnsupportedImage) {
			return user.UserResponse{}, user.ErrInvalidImage
		}
		return user.UserResponse{}, err
	}

	previous := u.FaceImageURL
	u.FaceImageURL = &key
	updated, err := s.UserRepository.Update(ctx, u)
	if err != nil {
		return user.UserResponse{}, err
	}

	if previous != nil && *previous != "" && *previous != key {
		if err := s.fileService.DeleteFile(ctx, *previous); err != nil {
			slog.Warn("failed to delete previous face image", "user_id", u.ID, "path", *previous, "error", err)
		}
	}
	return user.ToResponse(updated), nil
}

func (s *UserServiceImpl) activeUser(ctx context.Context, id string) (user.User, error) {
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if u.IsDeleted {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}
