package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Recording
var (
	ErrEmptyRecordingID       = errors.New("recording ID cannot be empty")
	ErrEmptyRecordingUserID   = errors.New("recording user ID cannot be empty")
	ErrEmptyRecordingFileName = errors.New("recording file name cannot be empty")
	ErrEmptyRecordingFilePath = errors.New("recording file path cannot be empty")
	ErrInvalidRecordingSize   = errors.New("recording file size must be positive")
)

// Recording represents an uploaded audio artifact owned by a user.
// It is immutable after creation except for deletion, which cascades
// to any transcription Jobs that reference it.
type Recording struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"-"` // Server-side storage location, never exposed
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// NewRecording creates a new Recording for the given owner and stored file.
// It generates a new UUID for the recording ID and sets the upload
// timestamp. Returns an error if validation fails.
func NewRecording(userID uuid.UUID, fileName, filePath string, fileSize int64) (*Recording, error) {
	rec := &Recording{
		ID:         uuid.New(),
		UserID:     userID,
		FileName:   fileName,
		FilePath:   filePath,
		FileSize:   fileSize,
		UploadedAt: time.Now().UTC(),
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Validate checks if the Recording has valid data.
// Returns an error if any field fails validation.
func (r *Recording) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRecordingID
	}

	if r.UserID == uuid.Nil {
		return ErrEmptyRecordingUserID
	}

	if r.FileName == "" {
		return ErrEmptyRecordingFileName
	}

	if r.FilePath == "" {
		return ErrEmptyRecordingFilePath
	}

	if r.FileSize <= 0 {
		return ErrInvalidRecordingSize
	}

	return nil
}
