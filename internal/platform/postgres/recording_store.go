package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/callhound/callhound-api/internal/domain"
	"github.com/callhound/callhound-api/internal/platform/logger"
	"github.com/callhound/callhound-api/internal/store"
	"github.com/google/uuid"
)

// RecordingStore implements the store.RecordingStore interface using a
// PostgreSQL database as the storage backend.
type RecordingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewRecordingStore creates a new PostgreSQL implementation of the
// RecordingStore interface. If logger is nil, a default logger will be used.
func NewRecordingStore(db store.DBTX, logger *slog.Logger) *RecordingStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RecordingStore{
		db:     db,
		logger: logger.With(slog.String("component", "recording_store")),
	}
}

// Ensure RecordingStore implements store.RecordingStore interface
var _ store.RecordingStore = (*RecordingStore)(nil)

// Create implements store.RecordingStore.Create
func (s *RecordingStore) Create(ctx context.Context, recording *domain.Recording) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := recording.Validate(); err != nil {
		log.Warn("recording validation failed during create",
			slog.String("error", err.Error()),
			slog.String("recording_id", recording.ID.String()))
		return err
	}

	query := `
		INSERT INTO recordings (id, user_id, file_name, file_path, file_size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		recording.ID,
		recording.UserID,
		recording.FileName,
		recording.FilePath,
		recording.FileSize,
		recording.UploadedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during recording creation",
				slog.String("recording_id", recording.ID.String()),
				slog.String("user_id", recording.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, recording.UserID)
		}

		log.Error("failed to create recording",
			slog.String("error", err.Error()),
			slog.String("recording_id", recording.ID.String()))
		return err
	}

	log.Info("recording created successfully",
		slog.String("recording_id", recording.ID.String()),
		slog.String("user_id", recording.UserID.String()),
		slog.Int64("file_size", recording.FileSize))
	return nil
}

// GetForUser implements store.RecordingStore.GetForUser
// The user scope is part of the query so a recording owned by someone
// else is indistinguishable from one that does not exist.
func (s *RecordingStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Recording, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, file_name, file_path, file_size, uploaded_at
		FROM recordings
		WHERE id = $1 AND user_id = $2
	`

	var rec domain.Recording
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.FileName,
		&rec.FilePath,
		&rec.FileSize,
		&rec.UploadedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("recording not found",
				slog.String("recording_id", id.String()))
			return nil, store.ErrRecordingNotFound
		}
		log.Error("failed to get recording",
			slog.String("error", err.Error()),
			slog.String("recording_id", id.String()))
		return nil, err
	}

	return &rec, nil
}

// ListByUser implements store.RecordingStore.ListByUser
func (s *RecordingStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Recording, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, file_name, file_path, file_size, uploaded_at
		FROM recordings
		WHERE user_id = $1
		ORDER BY uploaded_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list recordings",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var recordings []*domain.Recording
	for rows.Next() {
		var rec domain.Recording
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.FileName,
			&rec.FilePath,
			&rec.FileSize,
			&rec.UploadedAt,
		)
		if err != nil {
			log.Error("failed to scan recording row",
				slog.String("error", err.Error()))
			return nil, err
		}
		recordings = append(recordings, &rec)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if recordings == nil {
		recordings = []*domain.Recording{}
	}

	return recordings, nil
}

// Delete implements store.RecordingStore.Delete
// Associated jobs are removed by the ON DELETE CASCADE rule on jobs.
func (s *RecordingStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM recordings WHERE id = $1 AND user_id = $2`,
		id,
		userID,
	)
	if err != nil {
		log.Error("failed to delete recording",
			slog.String("error", err.Error()),
			slog.String("recording_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("recording_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		return store.ErrRecordingNotFound
	}

	log.Info("recording deleted",
		slog.String("recording_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// WithTx implements store.RecordingStore.WithTx
func (s *RecordingStore) WithTx(tx *sql.Tx) store.RecordingStore {
	return &RecordingStore{
		db:     tx,
		logger: s.logger,
	}
}
