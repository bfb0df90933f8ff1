// Package service contains application services that orchestrate domain
// entities, stores and platform clients.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/callhound/callhound-api/internal/domain"
	"github.com/callhound/callhound-api/internal/platform/logger"
	"github.com/callhound/callhound-api/internal/store"
	"github.com/google/uuid"
)

// RecordingService provides operations on uploaded audio recordings.
type RecordingService interface {
	// SaveUpload streams an uploaded file to the storage directory and
	// persists a Recording for it. The stored file gets a generated name;
	// the original name is kept on the record for display.
	SaveUpload(ctx context.Context, userID uuid.UUID, fileName string, body io.Reader) (*domain.Recording, error)

	// List returns the user's recordings, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Recording, error)

	// Delete removes the recording's row (cascading to its jobs) and its
	// file on disk. Returns store.ErrRecordingNotFound if the recording
	// does not exist or belongs to a different user.
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// recordingService is the default RecordingService implementation.
type recordingService struct {
	db         *sql.DB
	recordings store.RecordingStore
	uploadDir  string
	logger     *slog.Logger
}

// NewRecordingService creates a RecordingService storing files under
// uploadDir. The directory is created if it does not exist.
func NewRecordingService(
	db *sql.DB,
	recordings store.RecordingStore,
	uploadDir string,
	log *slog.Logger,
) (RecordingService, error) {
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &recordingService{
		db:         db,
		recordings: recordings,
		uploadDir:  uploadDir,
		logger:     log.With(slog.String("component", "recording_service")),
	}, nil
}

// SaveUpload implements RecordingService.SaveUpload.
// The file write and the row insert are not atomic; if the insert fails
// the just-written file is removed so no orphan remains.
func (s *recordingService) SaveUpload(
	ctx context.Context,
	userID uuid.UUID,
	fileName string,
	body io.Reader,
) (*domain.Recording, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	storedName := uuid.New().String() + filepath.Ext(fileName)
	storedPath := filepath.Join(s.uploadDir, storedName)

	f, err := os.OpenFile(storedPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		log.Error("failed to create upload file",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	size, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		s.removeFile(storedPath, log)
		if copyErr != nil {
			return nil, fmt.Errorf("failed to write upload: %w", copyErr)
		}
		return nil, fmt.Errorf("failed to write upload: %w", closeErr)
	}

	rec, err := domain.NewRecording(userID, fileName, storedPath, size)
	if err != nil {
		s.removeFile(storedPath, log)
		return nil, err
	}

	if err := s.recordings.Create(ctx, rec); err != nil {
		s.removeFile(storedPath, log)
		return nil, err
	}

	log.Info("recording uploaded",
		slog.String("recording_id", rec.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int64("file_size", size))
	return rec, nil
}

// List implements RecordingService.List.
func (s *recordingService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Recording, error) {
	return s.recordings.ListByUser(ctx, userID)
}

// Delete implements RecordingService.Delete.
// The path lookup and the row delete run in one transaction so a
// concurrent delete cannot slip between them. The row goes before the
// file, so a crash between the two leaves a stray file rather than a
// record pointing at nothing.
func (s *recordingService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var filePath string
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		recordings := s.recordings.WithTx(tx)

		rec, err := recordings.GetForUser(ctx, id, userID)
		if err != nil {
			return err
		}
		filePath = rec.FilePath

		return recordings.Delete(ctx, id, userID)
	})
	if err != nil {
		return err
	}

	s.removeFile(filePath, log)

	log.Info("recording deleted",
		slog.String("recording_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// removeFile deletes a stored file, logging rather than failing when the
// file is already gone.
func (s *recordingService) removeFile(path string, log *slog.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to remove recording file",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}
