package api

import (
	"time"

	"github.com/callhound/callhound-api/internal/domain"
	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RecordingResponse represents the response data for an uploaded recording.
type RecordingResponse struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// JobResponse represents the response data for a transcription job.
type JobResponse struct {
	ID          string `json:"id"`
	RecordingID string `json:"recording_id"`
	Status      string `json:"status"`
}

// JobStatusResponse is the body returned by the status query endpoint.
// Transcription is present only for completed jobs; Error only for
// errored ones.
type JobStatusResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Transcription string `json:"transcription,omitempty"`
	Error         string `json:"error,omitempty"`
}

// recordingToResponse converts a domain.Recording to a RecordingResponse.
func recordingToResponse(rec *domain.Recording) RecordingResponse {
	return RecordingResponse{
		ID:         rec.ID.String(),
		FileName:   rec.FileName,
		FileSize:   rec.FileSize,
		UploadedAt: rec.UploadedAt,
	}
}
