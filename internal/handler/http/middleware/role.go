package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
)

// RequireRoles allows the request through when the principal holds one of roles.
func RequireRoles(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}
			if !user.Authorize(principal, roles...) {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireApprover gates the admin review routes of attendance, leave and overtime.
func RequireApprover(next http.Handler) http.Handler {
	return RequireRoles(user.ApproverRoles...)(next)
}

// RequirePeopleAdmin gates user management and policy routes.
func RequirePeopleAdmin(next http.Handler) http.Handler {
	return RequireRoles(user.PeopleAdminRoles...)(next)
}

// RequireAdmin gates organization management.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRoles(user.RoleAdmin)(next)
}
