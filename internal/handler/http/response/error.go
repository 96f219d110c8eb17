package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/finance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/network"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/performance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Authentication
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrRefreshTokenRevoked),
		errors.Is(err, jwt.ErrWrongTokenType),
		errors.Is(err, user.ErrUnauthenticated):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrOAuthDisabled):
		NotFound(w, err.Error())
	case errors.Is(err, auth.ErrOAuthEmailNotVerified):
		Forbidden(w, err.Error())

	// Authorization
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrAccountPending),
		errors.Is(err, user.ErrAccountRejected),
		errors.Is(err, employee.ErrApprovalForbidden),
		errors.Is(err, employee.ErrEmployeeAccessForbidden),
		errors.Is(err, attendance.ErrUnauthorized),
		errors.Is(err, leave.ErrLeaveForbidden),
		errors.Is(err, payroll.ErrPayrollGenerateForbidden),
		errors.Is(err, finance.ErrEditForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, network.ErrUnauthorizedLocation):
		Error(w, http.StatusForbidden, "UNAUTHORIZED_LOCATION", err.Error(), nil)

	// Not found
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrDocumentNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, leave.ErrLeaveRequestNotFound),
		errors.Is(err, payroll.ErrPayrollNotFound),
		errors.Is(err, finance.ErrRecordNotFound),
		errors.Is(err, performance.ErrReviewNotFound),
		errors.Is(err, network.ErrEntryNotFound),
		errors.Is(err, collection.ErrNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, report.ErrNoData):
		Error(w, http.StatusNotFound, "NO_DATA", "No data available for export", nil)

	// Conflicts with existing records
	case errors.Is(err, user.ErrUserEmailExists),
		errors.Is(err, employee.ErrEmailExists),
		errors.Is(err, employee.ErrEmployeeNotPending),
		errors.Is(err, employee.ErrAlreadyRegistered),
		errors.Is(err, attendance.ErrAttendanceExists),
		errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed),
		errors.Is(err, payroll.ErrPayrollAlreadyGenerated),
		errors.Is(err, payroll.ErrInvalidStatusTransition),
		errors.Is(err, network.ErrEntryExists):
		Conflict(w, err.Error())

	// Invalid state or input
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrNoActiveCheckIn),
		errors.Is(err, attendance.ErrInvalidAction),
		errors.Is(err, attendance.ErrCheckOutBeforeIn),
		errors.Is(err, employee.ErrEmployeeNotActive),
		errors.Is(err, employee.ErrInvalidApprovalAction),
		errors.Is(err, employee.ErrDocumentTypeNotAllowed),
		errors.Is(err, payroll.ErrNoActiveEmployees),
		errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, employee.ErrDocumentTooLarge):
		Error(w, http.StatusRequestEntityTooLarge, "", err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
