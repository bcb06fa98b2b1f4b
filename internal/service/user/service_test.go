package user

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/file"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrganizations struct {
	organization.OrganizationRepository
	known map[string]bool
}

func (s stubOrganizations) GetByID(_ context.Context, id string) (organization.Organization, error) {
	if !s.known[id] {
		return organization.Organization{}, organization.ErrOrganizationNotFound
	}
	return organization.Organization{ID: id}, nil
}

type stubFiles struct {
	file.FileService
	deleted []string
}

func (s *stubFiles) UploadFaceImage(_ context.Context, userID string, _ io.Reader, filename string) (string, error) {
	if !strings.HasSuffix(filename, ".jpg") {
		return "", file.ErrUnsupportedImage
	}
	return "faces/" + userID + "/new.jpg", nil
}

func (s *stubFiles) DeleteFile(_ context.Context, path string) error {
	s.deleted = append(s.deleted, path)
	return nil
}

func newService(users ...user.User) (*UserServiceImpl, *servicetest.Users, *stubFiles) {
	repo := servicetest.NewUsers(users...)
	files := &stubFiles{}
	orgs := stubOrganizations{known: map[string]bool{"00000000-0000-0000-0000-000000000001": true}}
	return NewUserService(repo, orgs, files).(*UserServiceImpl), repo, files
}

func TestCreate(t *testing.T) {
	svc, _, _ := newService()

	resp, err := svc.Create(t.Context(), user.CreateUserRequest{
		FullName: "Budi",
		Email:    "Budi@Example.com",
		Password: "s3cret-pass",
		Role:     "employee",
	})
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", resp.Email)

	_, err = svc.Create(t.Context(), user.CreateUserRequest{FullName: "Other", Email: "budi@example.com", Password: "s3cret-pass", Role: "hr"})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	unknownOrg := "00000000-0000-0000-0000-000000000002"
	_, err = svc.Create(t.Context(), user.CreateUserRequest{FullName: "X", Email: "x@example.com", Password: "s3cret-pass", Role: "hr", OrganizationID: &unknownOrg})
	assert.ErrorIs(t, err, organization.ErrOrganizationNotFound)
}

func TestSetRole(t *testing.T) {
	admin := user.User{ID: "admin", Email: "admin@example.com", Role: user.RoleAdmin}
	hr := user.User{ID: "hr", Email: "hr@example.com", Role: user.RoleHR}
	emp := user.User{ID: "emp", Email: "emp@example.com", Role: user.RoleEmployee}
	svc, repo, _ := newService(admin, hr, emp)

	_, err := svc.SetRole(t.Context(), hr.Principal(), "hr", user.SetRoleRequest{Role: "admin"})
	assert.ErrorIs(t, err, user.ErrCannotModifySelf)

	_, err = svc.SetRole(t.Context(), hr.Principal(), "emp", user.SetRoleRequest{Role: "admin"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = svc.SetRole(t.Context(), hr.Principal(), "emp", user.SetRoleRequest{Role: "manager"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleManager, repo.Get("emp").Role)

	_, err = svc.SetRole(t.Context(), admin.Principal(), "emp", user.SetRoleRequest{Role: "owner"})
	assert.Error(t, err)
}

func TestDisableAndDelete(t *testing.T) {
	hr := user.User{ID: "hr", Email: "hr@example.com", Role: user.RoleHR}
	emp := user.User{ID: "emp", Email: "emp@example.com", Role: user.RoleEmployee}
	svc, repo, _ := newService(hr, emp)

	assert.ErrorIs(t, svc.SetDisabled(t.Context(), hr.Principal(), "hr", true), user.ErrCannotModifySelf)
	require.NoError(t, svc.SetDisabled(t.Context(), hr.Principal(), "emp", true))
	assert.True(t, repo.Get("emp").IsDisabled)

	require.NoError(t, svc.Delete(t.Context(), hr.Principal(), "emp"))
	_, err := svc.Get(t.Context(), "emp")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUploadFaceImage(t *testing.T) {
	old := "faces/emp/old.jpg"
	emp := user.User{ID: "emp", Email: "emp@example.com", Role: user.RoleEmployee, FaceImageURL: &old}
	svc, repo, files := newService(emp)

	resp, err := svc.UploadFaceImage(t.Context(), user.UploadFaceRequest{UserID: "emp", File: strings.NewReader("jpeg"), Filename: "me.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "faces/emp/new.jpg", *resp.FaceImageURL)
	assert.True(t, repo.Get("emp").HasReferenceFace())
	assert.Equal(t, []string{old}, files.deleted)

	_, err = svc.UploadFaceImage(t.Context(), user.UploadFaceRequest{UserID: "emp", File: strings.NewReader("gif"), Filename: "me.gif"})
	assert.ErrorIs(t, err, user.ErrInvalidImage)
}
