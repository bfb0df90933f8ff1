package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/callhound/callhound-api/internal/api/shared"
	"github.com/callhound/callhound-api/internal/platform/logger"
	"github.com/callhound/callhound-api/internal/service/transcription"
)

// JobHandler handles starting transcription jobs and querying their
// status.
type JobHandler struct {
	transcriptionService transcription.Service
	logger               *slog.Logger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(transcriptionService transcription.Service, log *slog.Logger) *JobHandler {
	if log == nil {
		log = slog.Default()
	}

	return &JobHandler{
		transcriptionService: transcriptionService,
		logger:               log.With(slog.String("component", "job_handler")),
	}
}

// Start handles POST /api/recordings/{id}/transcriptions.
// It submits the recording to the provider and responds 202 Accepted
// with the new job, which callers then poll via Status.
func (h *JobHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, recordingID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	job, err := h.transcriptionService.StartTranscription(ctx, recordingID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start transcription")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, JobResponse{
		ID:          job.ID.String(),
		RecordingID: job.RecordingID.String(),
		Status:      string(job.Status),
	})
}

// Status handles GET /api/transcriptions/{id}.
// Each call reconciles the job against the provider before answering.
// When the provider is unreachable the job's last known state is still a
// truthful answer, so the handler responds 200 with it instead of
// surfacing the poll failure.
func (h *JobHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	userID, jobID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.transcriptionService.Reconcile(ctx, jobID, userID)
	if err != nil {
		if errors.Is(err, transcription.ErrTransientProvider) {
			log.Debug("serving last known job state, provider unreachable",
				slog.String("job_id", jobID.String()))
			shared.RespondWithJSON(w, r, http.StatusOK, jobViewToResponse(view))
			return
		}
		HandleAPIError(w, r, err, "Failed to query job status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobViewToResponse(view))
}

// jobViewToResponse converts a transcription.JobView to the wire form.
func jobViewToResponse(view transcription.JobView) JobStatusResponse {
	return JobStatusResponse{
		ID:            view.JobID.String(),
		Status:        string(view.Status),
		Transcription: view.Transcription,
		Error:         view.Error,
	}
}
