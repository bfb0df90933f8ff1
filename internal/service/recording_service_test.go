package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/callhound/callhound-api/internal/domain"
	"github.com/callhound/callhound-api/internal/mocks"
	"github.com/callhound/callhound-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRecordingService wires a service against the in-memory store
// and a sqlmock connection so Delete's transaction has something real
// to begin and commit on.
func newTestRecordingService(t *testing.T) (RecordingService, *mocks.MockRecordingStore, sqlmock.Sqlmock, string) {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	recordings := mocks.NewMockRecordingStore()
	uploadDir := filepath.Join(t.TempDir(), "uploads")

	svc, err := NewRecordingService(db, recordings, uploadDir, nil)
	require.NoError(t, err)

	return svc, recordings, dbMock, uploadDir
}

func TestNewRecordingServiceCreatesUploadDir(t *testing.T) {
	t.Parallel()

	_, _, _, uploadDir := newTestRecordingService(t)

	info, err := os.Stat(uploadDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveUpload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	svc, recordings, _, uploadDir := newTestRecordingService(t)

	rec, err := svc.SaveUpload(ctx, userID, "call.mp3", bytes.NewReader([]byte("fake audio")))
	require.NoError(t, err)

	assert.Equal(t, "call.mp3", rec.FileName)
	assert.Equal(t, int64(len("fake audio")), rec.FileSize)
	assert.Equal(t, userID, rec.UserID)

	// The stored name is generated; only the extension survives.
	assert.Equal(t, uploadDir, filepath.Dir(rec.FilePath))
	assert.NotEqual(t, "call.mp3", filepath.Base(rec.FilePath))
	assert.Equal(t, ".mp3", filepath.Ext(rec.FilePath))

	written, err := os.ReadFile(rec.FilePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake audio"), written)

	stored, err := recordings.GetForUser(ctx, rec.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, rec.FilePath, stored.FilePath)
}

func TestSaveUploadStoreFailureRemovesFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, recordings, _, uploadDir := newTestRecordingService(t)

	recordings.CreateFn = func(ctx context.Context, recording *domain.Recording) error {
		return errors.New("insert failed")
	}

	_, err := svc.SaveUpload(ctx, uuid.New(), "call.mp3", bytes.NewReader([]byte("fake audio")))
	require.Error(t, err)

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed upload must not leave a file behind")
}

func TestSaveUploadEmptyBody(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _, uploadDir := newTestRecordingService(t)

	_, err := svc.SaveUpload(ctx, uuid.New(), "call.mp3", bytes.NewReader(nil))
	assert.ErrorIs(t, err, domain.ErrInvalidRecordingSize)

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	svc, recordings, dbMock, _ := newTestRecordingService(t)

	rec, err := svc.SaveUpload(ctx, userID, "call.mp3", bytes.NewReader([]byte("fake audio")))
	require.NoError(t, err)

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	require.NoError(t, svc.Delete(ctx, rec.ID, userID))

	_, err = os.Stat(rec.FilePath)
	assert.True(t, os.IsNotExist(err), "file must be removed with the row")

	_, err = recordings.GetForUser(ctx, rec.ID, userID)
	assert.ErrorIs(t, err, store.ErrRecordingNotFound)

	// The lookup and the row delete ran inside one committed transaction.
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, dbMock, _ := newTestRecordingService(t)

	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	err := svc.Delete(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrRecordingNotFound)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestDeleteOtherUsersRecording(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	owner := uuid.New()
	intruder := uuid.New()
	svc, _, dbMock, _ := newTestRecordingService(t)

	rec, err := svc.SaveUpload(ctx, owner, "call.mp3", bytes.NewReader([]byte("fake audio")))
	require.NoError(t, err)

	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	err = svc.Delete(ctx, rec.ID, intruder)
	assert.ErrorIs(t, err, store.ErrRecordingNotFound)

	// The owner's file is untouched.
	_, statErr := os.Stat(rec.FilePath)
	assert.NoError(t, statErr)
}

func TestList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	svc, _, _, _ := newTestRecordingService(t)

	_, err := svc.SaveUpload(ctx, userID, "first.mp3", bytes.NewReader([]byte("one")))
	require.NoError(t, err)
	_, err = svc.SaveUpload(ctx, userID, "second.mp3", bytes.NewReader([]byte("two")))
	require.NoError(t, err)
	_, err = svc.SaveUpload(ctx, uuid.New(), "other.mp3", bytes.NewReader([]byte("three")))
	require.NoError(t, err)

	recs, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, userID, rec.UserID)
	}
}
