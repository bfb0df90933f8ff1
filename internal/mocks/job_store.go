package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/callhound/callhound-api/internal/domain"
	"github.com/callhound/callhound-api/internal/store"
	"github.com/google/uuid"
)

// MockJobStore implements store.JobStore for testing.
//
// The default implementation keeps jobs in memory under a mutex and
// honors Finalize's compare-and-swap contract, so concurrency tests
// exercise the same at-most-once semantics as the real store.
type MockJobStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, job *domain.Job) error
	GetForUserFn func(ctx context.Context, id, userID uuid.UUID) (*domain.Job, error)
	FinalizeFn   func(ctx context.Context, id uuid.UUID, status domain.JobStatus, transcription, errDetail string, completedAt time.Time) error

	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.Job

	// FinalizeCount counts successful terminal writes through the
	// default implementation.
	FinalizeCount int
}

var _ store.JobStore = (*MockJobStore)(nil)

// NewMockJobStore creates a mock store with an empty in-memory map.
func NewMockJobStore() *MockJobStore {
	return &MockJobStore{
		jobs: make(map[uuid.UUID]*domain.Job),
	}
}

// Create implements the store.JobStore interface.
func (m *MockJobStore) Create(ctx context.Context, job *domain.Job) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, job)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *job
	m.jobs[job.ID] = &stored
	return nil
}

// GetForUser implements the store.JobStore interface.
func (m *MockJobStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Job, error) {
	if m.GetForUserFn != nil {
		return m.GetForUserFn(ctx, id, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok || job.UserID != userID {
		return nil, store.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

// Finalize implements the store.JobStore interface with the same
// conditional-write semantics as the Postgres implementation.
func (m *MockJobStore) Finalize(
	ctx context.Context,
	id uuid.UUID,
	status domain.JobStatus,
	transcription, errDetail string,
	completedAt time.Time,
) error {
	if m.FinalizeFn != nil {
		return m.FinalizeFn(ctx, id, status, transcription, errDetail, completedAt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return store.ErrJobNotFound
	}
	if job.Status != domain.JobStatusProcessing {
		return store.ErrJobFinalized
	}

	job.Status = status
	job.Transcription = transcription
	job.Error = errDetail
	completed := completedAt
	job.CompletedAt = &completed
	m.FinalizeCount++
	return nil
}

// Job returns a copy of the stored job, for assertions.
func (m *MockJobStore) Job(id uuid.UUID) (*domain.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	copied := *job
	return &copied, true
}

// WithTx implements the store.JobStore interface. The mock has no
// transactions, so it returns itself.
func (m *MockJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return m
}
