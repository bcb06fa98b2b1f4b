package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name  string
		p     Principal
		roles []Role
		want  bool
	}{
		{"employee to approver route", Principal{UserID: "u1", Role: RoleEmployee}, ApproverRoles, false},
		{"manager to approver route", Principal{UserID: "u1", Role: RoleManager}, ApproverRoles, true},
		{"hr to approver route", Principal{UserID: "u1", Role: RoleHR}, ApproverRoles, true},
		{"admin to approver route", Principal{UserID: "u1", Role: RoleAdmin}, ApproverRoles, true},
		{"manager to people admin route", Principal{UserID: "u1", Role: RoleManager}, PeopleAdminRoles, false},
		{"any role when none required", Principal{UserID: "u1", Role: RoleEmployee}, nil, true},
		{"anonymous principal", Principal{Role: RoleAdmin}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.p, tt.roles...))
		})
	}
}

func TestUser_ActiveAndReferenceFace(t *testing.T) {
	empty := ""
	url := "faces/u1.jpg"

	assert.True(t, User{}.Active())
	assert.False(t, User{IsDisabled: true}.Active())
	assert.False(t, User{IsDeleted: true}.Active())

	assert.False(t, User{}.HasReferenceFace())
	assert.False(t, User{FaceImageURL: &empty}.HasReferenceFace())
	assert.True(t, User{FaceImageURL: &url}.HasReferenceFace())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleHR.Valid())
	assert.False(t, Role("owner").Valid())
}
