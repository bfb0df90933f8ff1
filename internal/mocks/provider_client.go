package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/callhound/callhound-api/internal/platform/transkriptor"
)

// MockProviderClient implements the transcription service's ProviderClient
// interface for testing.
type MockProviderClient struct {
	// Function fields for customizable behavior
	SubmitFn      func(ctx context.Context, localFilePath, displayName string) (string, error)
	QueryStatusFn func(ctx context.Context, providerJobID string) (transkriptor.RemoteState, error)

	// Default response values
	ProviderJobID string
	State         transkriptor.RemoteState
	SubmitErr     error
	QueryErr      error

	// Call tracking for verification
	submitCalls int64
	queryCalls  int64

	mu             sync.Mutex
	SubmittedPaths []string
	QueriedJobIDs  []string
}

// Submit implements the ProviderClient interface.
func (m *MockProviderClient) Submit(
	ctx context.Context,
	localFilePath, displayName string,
) (string, error) {
	atomic.AddInt64(&m.submitCalls, 1)
	m.mu.Lock()
	m.SubmittedPaths = append(m.SubmittedPaths, localFilePath)
	m.mu.Unlock()

	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, localFilePath, displayName)
	}
	if m.SubmitErr != nil {
		return "", m.SubmitErr
	}
	return m.ProviderJobID, nil
}

// QueryStatus implements the ProviderClient interface.
func (m *MockProviderClient) QueryStatus(
	ctx context.Context,
	providerJobID string,
) (transkriptor.RemoteState, error) {
	atomic.AddInt64(&m.queryCalls, 1)
	m.mu.Lock()
	m.QueriedJobIDs = append(m.QueriedJobIDs, providerJobID)
	m.mu.Unlock()

	if m.QueryStatusFn != nil {
		return m.QueryStatusFn(ctx, providerJobID)
	}
	if m.QueryErr != nil {
		return transkriptor.RemoteState{}, m.QueryErr
	}
	return m.State, nil
}

// SubmitCalls reports how many times Submit was invoked.
func (m *MockProviderClient) SubmitCalls() int {
	return int(atomic.LoadInt64(&m.submitCalls))
}

// QueryStatusCalls reports how many times QueryStatus was invoked.
func (m *MockProviderClient) QueryStatusCalls() int {
	return int(atomic.LoadInt64(&m.queryCalls))
}
