package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/callhound/callhound-api/internal/domain"
	"github.com/callhound/callhound-api/internal/platform/logger"
	"github.com/callhound/callhound-api/internal/store"
	"github.com/google/uuid"
)

// JobStore implements the store.JobStore interface using a PostgreSQL
// database as the storage backend.
type JobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewJobStore creates a new PostgreSQL implementation of the JobStore
// interface. If logger is nil, a default logger will be used.
func NewJobStore(db store.DBTX, logger *slog.Logger) *JobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &JobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure JobStore implements store.JobStore interface
var _ store.JobStore = (*JobStore)(nil)

// Create implements store.JobStore.Create
func (s *JobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	query := `
		INSERT INTO jobs (id, user_id, recording_id, provider_job_id, status,
			transcription, error, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.UserID,
		job.RecordingID,
		job.ProviderJobID,
		job.Status,
		job.Transcription,
		job.Error,
		job.CreatedAt,
		job.CompletedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during job creation",
				slog.String("job_id", job.ID.String()),
				slog.String("recording_id", job.RecordingID.String()))
			return fmt.Errorf("%w: recording with ID %s not found",
				store.ErrInvalidEntity, job.RecordingID)
		}

		log.Error("failed to create job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	log.Info("job created successfully",
		slog.String("job_id", job.ID.String()),
		slog.String("recording_id", job.RecordingID.String()),
		slog.String("status", string(job.Status)))
	return nil
}

// GetForUser implements store.JobStore.GetForUser
// The user scope is part of the query so a job owned by someone else is
// indistinguishable from one that does not exist.
func (s *JobStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, recording_id, provider_job_id, status,
			transcription, error, created_at, completed_at
		FROM jobs
		WHERE id = $1 AND user_id = $2
	`

	var job domain.Job
	var status string

	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&job.ID,
		&job.UserID,
		&job.RecordingID,
		&job.ProviderJobID,
		&status,
		&job.Transcription,
		&job.Error,
		&job.CreatedAt,
		&job.CompletedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("job not found", slog.String("job_id", id.String()))
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get job",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, err
	}

	job.Status = domain.JobStatus(status)

	return &job, nil
}

// Finalize implements store.JobStore.Finalize
// The status predicate in the UPDATE is the compare-and-swap that makes
// the terminal transition at-most-once: a reconciler racing against
// another only wins if the row is still in processing at write time.
func (s *JobStore) Finalize(
	ctx context.Context,
	id uuid.UUID,
	status domain.JobStatus,
	transcription, errDetail string,
	completedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if status != domain.JobStatusCompleted && status != domain.JobStatusError {
		return domain.ErrInvalidJobStatus
	}

	query := `
		UPDATE jobs
		SET status = $1, transcription = $2, error = $3, completed_at = $4
		WHERE id = $5 AND status = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		status,
		transcription,
		errDetail,
		completedAt.UTC(),
		id,
		domain.JobStatusProcessing,
	)

	if err != nil {
		log.Error("failed to finalize job",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()),
			slog.String("status", string(status)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		// Either the job does not exist or a concurrent reconciler
		// already applied a terminal state. Distinguish with a lookup
		// so the caller knows whether to re-read.
		var exists bool
		checkErr := s.db.QueryRowContext(
			ctx,
			`SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`,
			id,
		).Scan(&exists)
		if checkErr != nil {
			log.Error("failed to check job existence after finalize miss",
				slog.String("error", checkErr.Error()),
				slog.String("job_id", id.String()))
			return checkErr
		}
		if !exists {
			return store.ErrJobNotFound
		}

		log.Debug("job already finalized by concurrent writer",
			slog.String("job_id", id.String()))
		return store.ErrJobFinalized
	}

	log.Info("job finalized",
		slog.String("job_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// WithTx implements store.JobStore.WithTx
func (s *JobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &JobStore{
		db:     tx,
		logger: s.logger,
	}
}
