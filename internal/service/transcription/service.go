// Package transcription contains the transcription job lifecycle manager.
// It orchestrates submission to the remote provider, drives status
// reconciliation on demand, and enforces the job state machine.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/callhound/callhound-api/internal/domain"
	"github.com/callhound/callhound-api/internal/platform/logger"
	"github.com/callhound/callhound-api/internal/platform/transkriptor"
	"github.com/callhound/callhound-api/internal/store"
	"github.com/google/uuid"
)

// ProviderClient is the service's view of the remote transcription
// provider. Implemented by transkriptor.Client.
type ProviderClient interface {
	// Submit runs the provider's submission handshake for the local file
	// and returns the provider's job identifier. A single attempt per
	// call; no local side effects.
	Submit(ctx context.Context, localFilePath, displayName string) (string, error)

	// QueryStatus polls the provider for the state of a submitted job.
	// Transport failures map to transkriptor.ErrProviderUnavailable.
	QueryStatus(ctx context.Context, providerJobID string) (transkriptor.RemoteState, error)
}

// JobView is the read-only projection of a job returned to status-query
// callers. Transcription is non-empty iff the status is completed; Error
// is non-empty iff the status is error.
type JobView struct {
	JobID         uuid.UUID        `json:"job_id"`
	Status        domain.JobStatus `json:"status"`
	Transcription string           `json:"transcription,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// Service manages the lifecycle of transcription jobs.
type Service interface {
	// StartTranscription submits the recording's file to the provider and
	// persists a new job in processing. On any provider failure no job is
	// recorded and ErrSubmissionFailed is returned, so retrying from the
	// client side is safe and produces a brand-new job.
	// Returns store.ErrRecordingNotFound if the recording does not exist
	// or belongs to a different user, and ErrFileMissing if its file is
	// gone from disk.
	StartTranscription(ctx context.Context, recordingID, userID uuid.UUID) (*domain.Job, error)

	// Reconcile loads the job, queries the provider for its latest state
	// if the job is still in processing, merges the result into the
	// store, and returns the resulting view. Terminal jobs are returned
	// from the store without contacting the provider.
	// When the provider is unreachable the stored state is untouched and
	// the last known view is returned together with ErrTransientProvider.
	// Returns store.ErrJobNotFound if the job does not exist or belongs
	// to a different user.
	Reconcile(ctx context.Context, jobID, userID uuid.UUID) (JobView, error)
}

// service is the default Service implementation.
type service struct {
	recordings store.RecordingStore
	jobs       store.JobStore
	provider   ProviderClient
	logger     *slog.Logger
	timeFunc   func() time.Time // Injectable for testing
}

// NewService creates a transcription lifecycle service.
// If log is nil, a default logger is used.
func NewService(
	recordings store.RecordingStore,
	jobs store.JobStore,
	provider ProviderClient,
	log *slog.Logger,
) Service {
	if log == nil {
		log = slog.Default()
	}

	return &service{
		recordings: recordings,
		jobs:       jobs,
		provider:   provider,
		logger:     log.With(slog.String("component", "transcription_service")),
		timeFunc:   time.Now,
	}
}

// StartTranscription implements Service.StartTranscription.
// The job record is created only after the provider has acknowledged the
// submission, so a stored job always references a real provider job and
// a failed submission leaves the store unchanged.
func (s *service) StartTranscription(
	ctx context.Context,
	recordingID, userID uuid.UUID,
) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rec, err := s.recordings.GetForUser(ctx, recordingID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(rec.FilePath); err != nil {
		log.Warn("recording file missing at submission time",
			slog.String("recording_id", rec.ID.String()))
		return nil, fmt.Errorf("%w: %s", ErrFileMissing, rec.FileName)
	}

	providerJobID, err := s.provider.Submit(ctx, rec.FilePath, rec.FileName)
	if err != nil {
		log.Warn("provider submission failed",
			slog.String("recording_id", rec.ID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	job, err := domain.NewJob(userID, rec.ID, providerJobID)
	if err != nil {
		return nil, err
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		// The provider job now runs unreferenced; it completes or fails
		// on its own and nothing will ever poll it.
		log.Error("failed to persist job after provider submission",
			slog.String("recording_id", rec.ID.String()),
			slog.String("provider_job_id", providerJobID),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("transcription started",
		slog.String("job_id", job.ID.String()),
		slog.String("recording_id", rec.ID.String()))
	return job, nil
}

// Reconcile implements Service.Reconcile.
// No lock is held across the provider call; only the terminal write is
// guarded, by the store's conditional update, so concurrent reconciliation
// of the same job yields exactly one terminal write and every caller ends
// up observing the same stored result.
func (s *service) Reconcile(ctx context.Context, jobID, userID uuid.UUID) (JobView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	job, err := s.jobs.GetForUser(ctx, jobID, userID)
	if err != nil {
		return JobView{}, err
	}

	// Idempotent fast path: once terminal, the stored view is final and
	// the provider is never contacted again.
	if job.IsTerminal() {
		return viewOf(job), nil
	}

	state, err := s.provider.QueryStatus(ctx, job.ProviderJobID)
	if err != nil {
		// A transient poll failure must not be confused with the
		// provider reporting a genuine job failure: nothing is written.
		log.Debug("status poll failed, keeping last known state",
			slog.String("job_id", job.ID.String()),
			slog.String("error", err.Error()))
		return viewOf(job), fmt.Errorf("%w: %v", ErrTransientProvider, err)
	}

	switch state.Status {
	case transkriptor.RemoteStatusProcessing:
		// Nothing changed; avoid a no-op write.
		return viewOf(job), nil

	case transkriptor.RemoteStatusCompleted:
		return s.finalize(ctx, job, userID, domain.JobStatusCompleted, state.Transcription, "")

	case transkriptor.RemoteStatusError:
		return s.finalize(ctx, job, userID, domain.JobStatusError, "", state.Detail)

	default:
		return viewOf(job), fmt.Errorf("%w: unknown remote status %q",
			ErrTransientProvider, state.Status)
	}
}

// finalize applies a terminal state to the in-memory job and persists
// it through the store's conditional update. A losing writer discards
// its own remote result and re-reads the now-terminal record instead of
// overwriting it.
func (s *service) finalize(
	ctx context.Context,
	job *domain.Job,
	userID uuid.UUID,
	status domain.JobStatus,
	transcription, detail string,
) (JobView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var transitionErr error
	if status == domain.JobStatusCompleted {
		transitionErr = job.Complete(transcription, s.timeFunc())
	} else {
		transitionErr = job.Fail(detail, s.timeFunc())
	}
	if transitionErr != nil {
		// Already terminal; the stored view is final.
		return viewOf(job), nil
	}

	err := s.jobs.Finalize(ctx, job.ID, job.Status, job.Transcription, job.Error, *job.CompletedAt)
	if err != nil {
		if errors.Is(err, store.ErrJobFinalized) {
			stored, readErr := s.jobs.GetForUser(ctx, job.ID, userID)
			if readErr != nil {
				return JobView{}, readErr
			}
			log.Debug("lost finalize race, returning stored terminal state",
				slog.String("job_id", job.ID.String()))
			return viewOf(stored), nil
		}
		return JobView{}, err
	}

	log.Info("job reconciled to terminal state",
		slog.String("job_id", job.ID.String()),
		slog.String("status", string(job.Status)))

	return viewOf(job), nil
}

// viewOf projects a job into its caller-visible form.
func viewOf(job *domain.Job) JobView {
	return JobView{
		JobID:         job.ID,
		Status:        job.Status,
		Transcription: job.Transcription,
		Error:         job.Error,
	}
}
