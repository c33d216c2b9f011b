package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
	"github.com/cmlabs-hris/teams-worktime/internal/domain/auth"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/validator"
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
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrMissingEmCode):
		Unauthorized(w, "Token has no employee code")
	case errors.Is(err, auth.ErrInvalidEmCode):
		BadRequest(w, "Invalid employee code", nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrSnapshotNotFound):
		NotFound(w, "No attendance data synced yet")
	case errors.Is(err, attendance.ErrSettingsNotFound):
		NotFound(w, "Settings not found")
	case errors.Is(err, attendance.ErrCredentialsMissing):
		BadRequest(w, "Teams authorization is not configured", nil)
	case errors.Is(err, attendance.ErrInvalidMonthRange):
		ValidationError(w, map[string]string{"end_month": attendance.ErrInvalidMonthRange.Error()})
	case errors.Is(err, attendance.ErrUpstreamRejected):
		BadGateway(w, "Teams rejected the request, check the stored authorization")
	case errors.Is(err, attendance.ErrUpstreamUnavailable):
		ServiceUnavailable(w, "Teams attendance service is unavailable")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
