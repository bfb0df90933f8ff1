package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/callhound/callhound-api/internal/domain"
	"github.com/callhound/callhound-api/internal/store"
	"github.com/google/uuid"
)

// MockRecordingStore implements store.RecordingStore for testing.
type MockRecordingStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, recording *domain.Recording) error
	GetForUserFn func(ctx context.Context, id, userID uuid.UUID) (*domain.Recording, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Recording, error)
	DeleteFn     func(ctx context.Context, id, userID uuid.UUID) error

	mu         sync.Mutex
	recordings map[uuid.UUID]*domain.Recording
}

var _ store.RecordingStore = (*MockRecordingStore)(nil)

// NewMockRecordingStore creates a mock store with an empty in-memory map.
func NewMockRecordingStore() *MockRecordingStore {
	return &MockRecordingStore{
		recordings: make(map[uuid.UUID]*domain.Recording),
	}
}

// Create implements the store.RecordingStore interface.
func (m *MockRecordingStore) Create(ctx context.Context, recording *domain.Recording) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, recording)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *recording
	m.recordings[recording.ID] = &stored
	return nil
}

// GetForUser implements the store.RecordingStore interface.
func (m *MockRecordingStore) GetForUser(
	ctx context.Context,
	id, userID uuid.UUID,
) (*domain.Recording, error) {
	if m.GetForUserFn != nil {
		return m.GetForUserFn(ctx, id, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.recordings[id]
	if !ok || rec.UserID != userID {
		return nil, store.ErrRecordingNotFound
	}
	copied := *rec
	return &copied, nil
}

// ListByUser implements the store.RecordingStore interface.
func (m *MockRecordingStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Recording, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.Recording, 0)
	for _, rec := range m.recordings {
		if rec.UserID == userID {
			copied := *rec
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UploadedAt.After(result[j].UploadedAt)
	})
	return result, nil
}

// Delete implements the store.RecordingStore interface.
func (m *MockRecordingStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.recordings[id]
	if !ok || rec.UserID != userID {
		return store.ErrRecordingNotFound
	}
	delete(m.recordings, id)
	return nil
}

// WithTx implements the store.RecordingStore interface. The mock has no
// transactions, so it returns itself.
func (m *MockRecordingStore) WithTx(tx *sql.Tx) store.RecordingStore {
	return m
}
