package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/callhound/callhound-api/internal/domain"
	"github.com/google/uuid"
)

// JobStore defines the interface for transcription job persistence.
// It is the single source of truth for what a status-query caller sees.
type JobStore interface {
	// Create saves a new job to the store.
	// It handles domain validation internally.
	// Returns ErrInvalidEntity if the owning user or recording does not exist.
	Create(ctx context.Context, job *domain.Job) error

	// GetForUser retrieves a job by ID, scoped to the owning user.
	// Returns ErrJobNotFound if the job does not exist or is owned by a
	// different user; the two cases are indistinguishable.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Job, error)

	// Finalize conditionally applies a terminal state to a job that is
	// still in processing. The write is guarded: it only succeeds if the
	// job's status is processing at write time, which makes the terminal
	// transition at-most-once under concurrent reconciliation.
	// Returns ErrJobFinalized if another writer already applied a terminal
	// state, and ErrJobNotFound if the job does not exist.
	Finalize(ctx context.Context, id uuid.UUID, status domain.JobStatus, transcription, errDetail string, completedAt time.Time) error

	// WithTx returns a new JobStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) JobStore
}
