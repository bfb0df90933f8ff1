package api

import (
	"errors"
	"net/http"

	"github.com/callhound/callhound-api/internal/api/shared"
	"github.com/callhound/callhound-api/internal/domain"
	"github.com/callhound/callhound-api/internal/service/auth"
	"github.com/callhound/callhound-api/internal/service/transcription"
	"github.com/callhound/callhound-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors. A wrong-owner lookup produces the same sentinel
	// as a missing entity, so both map to 404 here.
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	// A submission the provider rejected, or a missing backing file, is
	// something the client can act on; the provider being down is not.
	case errors.Is(err, transcription.ErrFileMissing):
		return http.StatusConflict
	case errors.Is(err, transcription.ErrSubmissionFailed):
		return http.StatusBadGateway
	case errors.Is(err, transcription.ErrTransientProvider):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken):
		return "Invalid refresh token"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrRecordingNotFound):
		return "Recording not found"

	case errors.Is(err, store.ErrJobNotFound):
		return "Transcription not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, transcription.ErrFileMissing):
		return "Recording file is no longer available"

	case errors.Is(err, transcription.ErrSubmissionFailed):
		return "Failed to submit recording for transcription"

	case errors.Is(err, transcription.ErrTransientProvider):
		return "Transcription provider temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes a response for an internal error, using the
// mapped status code and, when no override is given, the sanitized
// message for the error type.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}
