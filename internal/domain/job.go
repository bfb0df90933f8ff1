package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a transcription job.
type JobStatus string

// Possible job status values. A job enters the store already in
// processing once submission to the provider is confirmed; pending only
// exists between local construction and that confirmation and is never
// externally visible.
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)

// Common validation errors for Job
var (
	ErrEmptyJobID            = errors.New("job ID cannot be empty")
	ErrEmptyJobUserID        = errors.New("job user ID cannot be empty")
	ErrEmptyJobRecordingID   = errors.New("job recording ID cannot be empty")
	ErrEmptyProviderJobID    = errors.New("provider job ID cannot be empty")
	ErrInvalidJobStatus      = errors.New("invalid job status")
	ErrJobAlreadyTerminal    = errors.New("job is already in a terminal state")
	ErrInconsistentJobResult = errors.New("job result fields inconsistent with status")
)

// Job represents one transcription attempt for a Recording. Its provider
// job ID is assigned exactly once at submission and never changes; status
// only moves forward and never leaves a terminal state.
type Job struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	RecordingID   uuid.UUID  `json:"recording_id"`
	ProviderJobID string     `json:"-"` // Opaque provider identifier, never exposed
	Status        JobStatus  `json:"status"`
	Transcription string     `json:"transcription,omitempty"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// NewJob creates a Job for a confirmed provider submission. The job
// starts in processing: callers only construct a Job after the provider
// has acknowledged the submission and returned its identifier.
func NewJob(userID, recordingID uuid.UUID, providerJobID string) (*Job, error) {
	job := &Job{
		ID:            uuid.New(),
		UserID:        userID,
		RecordingID:   recordingID,
		ProviderJobID: providerJobID,
		Status:        JobStatusProcessing,
		CreatedAt:     time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the Job has valid data, including the cross-field
// invariants tying result fields to the status.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if j.UserID == uuid.Nil {
		return ErrEmptyJobUserID
	}

	if j.RecordingID == uuid.Nil {
		return ErrEmptyJobRecordingID
	}

	if j.ProviderJobID == "" {
		return ErrEmptyProviderJobID
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	// Transcription is non-empty only when completed; error detail is
	// non-empty only when errored; completedAt is set iff terminal.
	if j.Transcription != "" && j.Status != JobStatusCompleted {
		return ErrInconsistentJobResult
	}
	if j.Error != "" && j.Status != JobStatusError {
		return ErrInconsistentJobResult
	}
	if (j.CompletedAt != nil) != j.IsTerminal() {
		return ErrInconsistentJobResult
	}

	return nil
}

// IsTerminal reports whether the job has reached a final state.
// No operation transitions a job out of a terminal state.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusError
}

// Complete transitions the job to completed with the given transcription
// text and stamps the completion time. Returns ErrJobAlreadyTerminal if
// the job is already terminal.
func (j *Job) Complete(transcription string, at time.Time) error {
	if j.IsTerminal() {
		return ErrJobAlreadyTerminal
	}

	completedAt := at.UTC()
	j.Status = JobStatusCompleted
	j.Transcription = transcription
	j.Error = ""
	j.CompletedAt = &completedAt
	return nil
}

// Fail transitions the job to error with the provider-reported detail
// and stamps the completion time. Returns ErrJobAlreadyTerminal if the
// job is already terminal.
func (j *Job) Fail(detail string, at time.Time) error {
	if j.IsTerminal() {
		return ErrJobAlreadyTerminal
	}

	completedAt := at.UTC()
	j.Status = JobStatusError
	j.Error = detail
	j.Transcription = ""
	j.CompletedAt = &completedAt
	return nil
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusError:
		return true
	default:
		return false
	}
}
