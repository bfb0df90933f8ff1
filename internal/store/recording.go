package store

import (
	"context"
	"database/sql"

	"github.com/callhound/callhound-api/internal/domain"
	"github.com/google/uuid"
)

// RecordingStore defines the interface for recording data persistence.
type RecordingStore interface {
	// Create saves a new recording to the store.
	// It handles domain validation internally.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, recording *domain.Recording) error

	// GetForUser retrieves a recording by ID, scoped to the owning user.
	// Returns ErrRecordingNotFound if the recording does not exist or is
	// owned by a different user; the two cases are indistinguishable.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Recording, error)

	// ListByUser retrieves all recordings owned by the user, newest first.
	// Returns an empty slice if the user has no recordings.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Recording, error)

	// Delete removes a recording owned by the user. Associated jobs are
	// removed by the schema's cascade rule.
	// Returns ErrRecordingNotFound if the recording does not exist or is
	// owned by a different user.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// WithTx returns a new RecordingStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) RecordingStore
}
