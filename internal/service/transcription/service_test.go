package transcription

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/callhound/callhound-api/internal/domain"
	"github.com/callhound/callhound-api/internal/mocks"
	"github.com/callhound/callhound-api/internal/platform/transkriptor"
	"github.com/callhound/callhound-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frozenClock is the fixed time injected into test services, so tests
// can assert the exact completion timestamp.
var frozenClock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestService wires a service against in-memory mocks with a fixed
// clock, returning everything a test might want to inspect.
func newTestService(
	t *testing.T,
	provider *mocks.MockProviderClient,
) (*service, *mocks.MockRecordingStore, *mocks.MockJobStore) {
	t.Helper()

	recordings := mocks.NewMockRecordingStore()
	jobs := mocks.NewMockJobStore()

	svc := NewService(recordings, jobs, provider, nil).(*service)
	svc.timeFunc = func() time.Time {
		return frozenClock
	}

	return svc, recordings, jobs
}

// seedRecording creates a recording backed by a real temp file so the
// submission path's file existence check passes.
func seedRecording(t *testing.T, recordings *mocks.MockRecordingStore, userID uuid.UUID) *domain.Recording {
	t.Helper()

	path := filepath.Join(t.TempDir(), "call.mp3")
	require.NoError(t, os.WriteFile(path, []byte("fake audio"), 0o644))

	rec, err := domain.NewRecording(userID, "call.mp3", path, int64(len("fake audio")))
	require.NoError(t, err)
	require.NoError(t, recordings.Create(context.Background(), rec))

	return rec
}

// seedProcessingJob stores a job in processing, as StartTranscription
// would have left it.
func seedProcessingJob(t *testing.T, jobs *mocks.MockJobStore, userID, recordingID uuid.UUID) *domain.Job {
	t.Helper()

	job, err := domain.NewJob(userID, recordingID, "order-123")
	require.NoError(t, err)
	require.NoError(t, jobs.Create(context.Background(), job))

	return job
}

func TestStartTranscription(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	provider := &mocks.MockProviderClient{ProviderJobID: "order-123"}
	svc, recordings, jobs := newTestService(t, provider)
	rec := seedRecording(t, recordings, userID)

	job, err := svc.StartTranscription(ctx, rec.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusProcessing, job.Status)
	assert.Equal(t, rec.ID, job.RecordingID)
	assert.Equal(t, userID, job.UserID)
	assert.Equal(t, "order-123", job.ProviderJobID)
	assert.Equal(t, []string{rec.FilePath}, provider.SubmittedPaths)

	stored, ok := jobs.Job(job.ID)
	require.True(t, ok)
	assert.Equal(t, domain.JobStatusProcessing, stored.Status)
}

func TestStartTranscriptionRecordingNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := &mocks.MockProviderClient{ProviderJobID: "order-123"}
	svc, _, _ := newTestService(t, provider)

	_, err := svc.StartTranscription(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrRecordingNotFound)
	assert.Zero(t, provider.SubmitCalls())
}

func TestStartTranscriptionOtherUsersRecording(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	owner := uuid.New()
	intruder := uuid.New()

	provider := &mocks.MockProviderClient{ProviderJobID: "order-123"}
	svc, recordings, _ := newTestService(t, provider)
	rec := seedRecording(t, recordings, owner)

	_, err := svc.StartTranscription(ctx, rec.ID, intruder)
	assert.ErrorIs(t, err, store.ErrRecordingNotFound)
	assert.Zero(t, provider.SubmitCalls())
}

func TestStartTranscriptionFileMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	provider := &mocks.MockProviderClient{ProviderJobID: "order-123"}
	svc, recordings, jobs := newTestService(t, provider)
	rec := seedRecording(t, recordings, userID)

	require.NoError(t, os.Remove(rec.FilePath))

	_, err := svc.StartTranscription(ctx, rec.ID, userID)
	assert.ErrorIs(t, err, ErrFileMissing)
	assert.Zero(t, provider.SubmitCalls())
	assert.Zero(t, jobs.FinalizeCount)
}

func TestStartTranscriptionSubmitFailureCreatesNoJob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	provider := &mocks.MockProviderClient{SubmitErr: transkriptor.ErrSubmissionRejected}
	svc, recordings, _ := newTestService(t, provider)
	rec := seedRecording(t, recordings, userID)

	_, err := svc.StartTranscription(ctx, rec.ID, userID)
	assert.ErrorIs(t, err, ErrSubmissionFailed)

	// No partial state: a retry simply submits again and gets a new job.
	provider.SubmitErr = nil
	provider.ProviderJobID = "order-456"
	job, err := svc.StartTranscription(ctx, rec.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "order-456", job.ProviderJobID)
	assert.Equal(t, 2, provider.SubmitCalls())
}

func TestReconcileStillProcessing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	provider := &mocks.MockProviderClient{
		State: transkriptor.RemoteState{Status: transkriptor.RemoteStatusProcessing},
	}
	svc, _, jobs := newTestService(t, provider)
	job := seedProcessingJob(t, jobs, userID, uuid.New())

	view, err := svc.Reconcile(ctx, job.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusProcessing, view.Status)
	assert.Empty(t, view.Transcription)
	assert.Empty(t, view.Error)
	assert.Zero(t, jobs.FinalizeCount)
}

func TestReconcileCompletion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	provider := &mocks.MockProviderClient{
		State: transkriptor.RemoteState{
			Status:        transkriptor.RemoteStatusCompleted,
			Transcription: "hello world",
		},
	}
	svc, _, jobs := newTestService(t, provider)
	job := seedProcessingJob(t, jobs, userID, uuid.New())

	view, err := svc.Reconcile(ctx, job.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusCompleted, view.Status)
	assert.Equal(t, "hello world", view.Transcription)
	assert.Empty(t, view.Error)

	stored, ok := jobs.Job(job.ID)
	require.True(t, ok)
	assert.Equal(t, domain.JobStatusCompleted, stored.Status)
	assert.Equal(t, "hello world", stored.Transcription)
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, frozenClock, *stored.CompletedAt)
	assert.NoError(t, stored.Validate())
}

func TestReconcileProviderFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	provider := &mocks.MockProviderClient{
		State: transkriptor.RemoteState{
			Status: transkriptor.RemoteStatusError,
			Detail: "audio unreadable",
		},
	}
	svc, _, jobs := newTestService(t, provider)
	job := seedProcessingJob(t, jobs, userID, uuid.New())

	view, err := svc.Reconcile(ctx, job.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusError, view.Status)
	assert.Equal(t, "audio unreadable", view.Error)
	assert.Empty(t, view.Transcription)

	stored, ok := jobs.Job(job.ID)
	require.True(t, ok)
	assert.Equal(t, domain.JobStatusError, stored.Status)
	assert.Equal(t, "audio unreadable", stored.Error)
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, frozenClock, *stored.CompletedAt)
	assert.NoError(t, stored.Validate())
}

// A finalize attempt against a job that is already terminal in memory
// returns the stored view without touching the store.
func TestFinalizeAlreadyTerminal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	svc, _, jobs := newTestService(t, &mocks.MockProviderClient{})
	job := seedProcessingJob(t, jobs, userID, uuid.New())
	require.NoError(t, job.Complete("already done", frozenClock))

	view, err := svc.finalize(ctx, job, userID, domain.JobStatusError, "", "late result")
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusCompleted, view.Status)
	assert.Equal(t, "already done", view.Transcription)
	assert.Zero(t, jobs.FinalizeCount)
}

func TestReconcileTransientPollFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	provider := &mocks.MockProviderClient{QueryErr: transkriptor.ErrProviderUnavailable}
	svc, _, jobs := newTestService(t, provider)
	job := seedProcessingJob(t, jobs, userID, uuid.New())

	view, err := svc.Reconcile(ctx, job.ID, userID)
	assert.ErrorIs(t, err, ErrTransientProvider)

	// The last known state still comes back alongside the error.
	assert.Equal(t, domain.JobStatusProcessing, view.Status)

	// Nothing was written; a later successful poll proceeds as normal.
	stored, ok := jobs.Job(job.ID)
	require.True(t, ok)
	assert.Equal(t, domain.JobStatusProcessing, stored.Status)
	assert.Zero(t, jobs.FinalizeCount)

	provider.QueryErr = nil
	provider.State = transkriptor.RemoteState{
		Status:        transkriptor.RemoteStatusCompleted,
		Transcription: "hello world",
	}

	view, err = svc.Reconcile(ctx, job.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, view.Status)
}

func TestReconcileTerminalJobSkipsProvider(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	provider := &mocks.MockProviderClient{
		State: transkriptor.RemoteState{
			Status:        transkriptor.RemoteStatusCompleted,
			Transcription: "hello world",
		},
	}
	svc, _, jobs := newTestService(t, provider)
	job := seedProcessingJob(t, jobs, userID, uuid.New())

	_, err := svc.Reconcile(ctx, job.ID, userID)
	require.NoError(t, err)
	require.Equal(t, 1, provider.QueryStatusCalls())

	// Once terminal, subsequent queries are answered from the store.
	for i := 0; i < 3; i++ {
		view, err := svc.Reconcile(ctx, job.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusCompleted, view.Status)
		assert.Equal(t, "hello world", view.Transcription)
	}
	assert.Equal(t, 1, provider.QueryStatusCalls())
	assert.Equal(t, 1, jobs.FinalizeCount)
}

func TestReconcileJobNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := &mocks.MockProviderClient{}
	svc, _, _ := newTestService(t, provider)

	_, err := svc.Reconcile(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestReconcileOtherUsersJob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	owner := uuid.New()
	intruder := uuid.New()

	provider := &mocks.MockProviderClient{}
	svc, _, jobs := newTestService(t, provider)
	job := seedProcessingJob(t, jobs, owner, uuid.New())

	_, err := svc.Reconcile(ctx, job.ID, intruder)
	assert.ErrorIs(t, err, store.ErrJobNotFound)
	assert.Zero(t, provider.QueryStatusCalls())
}

// TestReconcileConcurrent drives many simultaneous reconciliations of
// the same completing job and asserts exactly one terminal write happens
// and every caller observes the same stored result.
func TestReconcileConcurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	provider := &mocks.MockProviderClient{
		State: transkriptor.RemoteState{
			Status:        transkriptor.RemoteStatusCompleted,
			Transcription: "hello world",
		},
	}
	svc, _, jobs := newTestService(t, provider)
	job := seedProcessingJob(t, jobs, userID, uuid.New())

	const callers = 32

	var wg sync.WaitGroup
	views := make([]JobView, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			views[i], errs[i] = svc.Reconcile(ctx, job.ID, userID)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, jobs.FinalizeCount, "terminal write must happen exactly once")

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, domain.JobStatusCompleted, views[i].Status)
		assert.Equal(t, "hello world", views[i].Transcription)
		assert.Empty(t, views[i].Error)
	}
}

// TestReconcileLoserReReads forces a finalize race loss and checks the
// loser returns the winner's stored result rather than its own poll.
func TestReconcileLoserReReads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	provider := &mocks.MockProviderClient{
		State: transkriptor.RemoteState{
			Status: transkriptor.RemoteStatusError,
			Detail: "stale poll result",
		},
	}
	svc, _, jobs := newTestService(t, provider)
	job := seedProcessingJob(t, jobs, userID, uuid.New())

	// A competing reconciler completed the job between this caller's poll
	// and its write.
	winnerTime := time.Now().UTC()
	require.NoError(t, jobs.Finalize(ctx, job.ID, domain.JobStatusCompleted, "winner result", "", winnerTime))

	view, err := svc.finalize(ctx, job, userID, domain.JobStatusError, "", "stale poll result")
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusCompleted, view.Status)
	assert.Equal(t, "winner result", view.Transcription)
	assert.Empty(t, view.Error)
}
