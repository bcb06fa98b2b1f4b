package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-backend-go/internal/service/file"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.First(), validationErrs.ToMap())
		return
	}

	switch {
	// Authentication
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenRevoked),
		errors.Is(err, auth.ErrOAuthAccountAbsent):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrAccountDisabled):
		Forbidden(w, "Account is disabled")

	// Authorization
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, team.ErrInsufficientTeamRole),
		errors.Is(err, team.ErrNotTeamMember),
		errors.Is(err, calendar.ErrHolidayRequiresAdmin),
		errors.Is(err, user.ErrCannotModifySelf):
		Forbidden(w, err.Error())

	// Not found
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, organization.ErrOrganizationNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, leave.ErrLeaveRequestNotFound),
		errors.Is(err, leave.ErrPolicyNotFound),
		errors.Is(err, overtime.ErrOvertimeRequestNotFound),
		errors.Is(err, salary.ErrDepartmentNotFound),
		errors.Is(err, salary.ErrSalaryNotFound),
		errors.Is(err, notification.ErrNotificationNotFound),
		errors.Is(err, notification.ErrFCMTokenNotFound),
		errors.Is(err, team.ErrTeamNotFound),
		errors.Is(err, team.ErrMemberNotFound),
		errors.Is(err, team.ErrTaskNotFound),
		errors.Is(err, team.ErrMeetingNotFound),
		errors.Is(err, team.ErrDocumentNotFound),
		errors.Is(err, calendar.ErrEventNotFound),
		errors.Is(err, storage.ErrObjectNotFound):
		NotFound(w, err.Error())

	// Conflicts with existing state
	case errors.Is(err, user.ErrUserEmailExists),
		errors.Is(err, organization.ErrCodeExists),
		errors.Is(err, salary.ErrDepartmentExists),
		errors.Is(err, salary.ErrSalaryExists),
		errors.Is(err, team.ErrAlreadyMember):
		Conflict(w, err.Error())

	// Business rule violations
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrNotCheckedInYet),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrFaceVerificationFailed),
		errors.Is(err, leave.ErrAlreadyProcessed),
		errors.Is(err, leave.ErrInvalidDateRange),
		errors.Is(err, leave.ErrExceedsPerRequestLimit),
		errors.Is(err, leave.ErrInsufficientNotice),
		errors.Is(err, leave.ErrInsufficientBalance),
		errors.Is(err, leave.ErrOverlappingRequest),
		errors.Is(err, leave.ErrRejectionReasonRequired),
		errors.Is(err, overtime.ErrAlreadyProcessed),
		errors.Is(err, overtime.ErrDuplicateDate),
		errors.Is(err, overtime.ErrHoursOutOfRange),
		errors.Is(err, overtime.ErrRejectionReasonRequired),
		errors.Is(err, salary.ErrDefaultMustBeActive),
		errors.Is(err, salary.ErrInvalidEffectiveRange),
		errors.Is(err, salary.ErrNoRateAvailable),
		errors.Is(err, notification.ErrNoRecipients),
		errors.Is(err, notification.ErrScheduleInPast),
		errors.Is(err, notification.ErrExpiryBeforeSchedule),
		errors.Is(err, team.ErrTeamArchived),
		errors.Is(err, team.ErrLastLeader),
		errors.Is(err, team.ErrAssigneeNotMember),
		errors.Is(err, team.ErrMeetingConflict),
		errors.Is(err, team.ErrInvalidTimeRange),
		errors.Is(err, team.ErrDocumentTooLarge),
		errors.Is(err, calendar.ErrEventConflict),
		errors.Is(err, calendar.ErrInvalidTimeRange),
		errors.Is(err, calendar.ErrInvalidRecurrence),
		errors.Is(err, auth.ErrInvalidOTP),
		errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, auth.ErrSamePassword),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrInvalidImage),
		errors.Is(err, user.ErrInvalidApprover),
		errors.Is(err, file.ErrUnsupportedImage),
		errors.Is(err, storage.ErrInvalidPath):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
