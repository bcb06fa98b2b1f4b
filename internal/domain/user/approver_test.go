package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
)

func TestCheckApprover(t *testing.T) {
	users := servicetest.NewUsers(
		user.User{ID: "emp", Role: user.RoleEmployee},
		user.User{ID: "emp-b", Role: user.RoleEmployee},
		user.User{ID: "mgr", Role: user.RoleManager},
		user.User{ID: "hr-off", Role: user.RoleHR, IsDisabled: true},
	)
	id := func(s string) *string { return &s }

	tests := []struct {
		name     string
		approver *string
		wantErr  error
	}{
		{"no approver chosen", nil, nil},
		{"manager", id("mgr"), nil},
		{"self", id("emp"), user.ErrInvalidApprover},
		{"not an approver role", id("emp-b"), user.ErrInvalidApprover},
		{"unknown user", id("ghost"), user.ErrInvalidApprover},
		{"disabled hr", id("hr-off"), user.ErrInvalidApprover},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := user.CheckApprover(context.Background(), users, "emp", tt.approver)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("repository failure is passed through", func(t *testing.T) {
		boom := errors.New("db down")
		failing := servicetest.NewUsers()
		failing.Fails = boom
		assert.ErrorIs(t, user.CheckApprover(context.Background(), failing, "emp", id("mgr")), boom)
	})
}
