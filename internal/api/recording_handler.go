package api

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/callhound/callhound-api/internal/api/shared"
	"github.com/callhound/callhound-api/internal/platform/logger"
	"github.com/callhound/callhound-api/internal/service"
)

// uploadFieldName is the multipart form field that carries the audio file.
const uploadFieldName = "audio"

// RecordingHandler handles upload, listing and deletion of audio
// recordings.
type RecordingHandler struct {
	recordingService service.RecordingService
	maxUploadBytes   int64
	logger           *slog.Logger
}

// NewRecordingHandler creates a new RecordingHandler.
func NewRecordingHandler(
	recordingService service.RecordingService,
	maxUploadBytes int64,
	log *slog.Logger,
) *RecordingHandler {
	if log == nil {
		log = slog.Default()
	}

	return &RecordingHandler{
		recordingService: recordingService,
		maxUploadBytes:   maxUploadBytes,
		logger:           log.With(slog.String("component", "recording_handler")),
	}
}

// Upload handles POST /api/recordings.
// It accepts a multipart form with a single "audio" file part and
// responds with the stored recording's metadata.
func (h *RecordingHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
			return
		}
		log.Debug("missing or unreadable upload field",
			slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing audio file in form field \"audio\"")
		return
	}
	defer func() { _ = file.Close() }()

	if !isAudioUpload(header) {
		shared.RespondWithError(w, r, http.StatusUnsupportedMediaType, "Only audio files are accepted")
		return
	}

	rec, err := h.recordingService.SaveUpload(ctx, userID, header.Filename, file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
			return
		}
		HandleAPIError(w, r, err, "Failed to store recording")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, recordingToResponse(rec))
}

// List handles GET /api/recordings.
func (h *RecordingHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	recordings, err := h.recordingService.List(ctx, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list recordings")
		return
	}

	responses := make([]RecordingResponse, 0, len(recordings))
	for _, rec := range recordings {
		responses = append(responses, recordingToResponse(rec))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Delete handles DELETE /api/recordings/{id}.
func (h *RecordingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, recordingID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.recordingService.Delete(ctx, recordingID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete recording")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// isAudioUpload reports whether the part's declared content type is an
// audio type. Browsers set this from the file extension, so it is a
// coarse filter, not a validation of the bytes.
func isAudioUpload(header *multipart.FileHeader) bool {
	contentType := header.Header.Get("Content-Type")
	return strings.HasPrefix(contentType, "audio/")
}
