package transkriptor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/callhound/callhound-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// providerFixture is a configurable fake of the provider's API surface,
// covering the three handshake endpoints and the polling endpoint.
type providerFixture struct {
	t *testing.T

	uploadURLStatus  int
	uploadPutStatus  int
	initiateStatus   int
	initiateBody     map[string]any
	fileDetailStatus int
	fileDetailBody   map[string]any

	uploadedBytes []byte
	initiateSeen  initiateRequest
}

func newProviderFixture(t *testing.T) *providerFixture {
	return &providerFixture{
		t:                t,
		uploadURLStatus:  http.StatusOK,
		uploadPutStatus:  http.StatusOK,
		initiateStatus:   http.StatusAccepted,
		initiateBody:     map[string]any{"order_id": "order-123"},
		fileDetailStatus: http.StatusOK,
		fileDetailBody:   map[string]any{"status": "completed", "transcription": "hello world"},
	}
}

// start serves the fixture and returns a client pointed at it.
func (f *providerFixture) start(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("POST /local_file/get_upload_url", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req uploadURLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.FileName)

		w.WriteHeader(f.uploadURLStatus)
		if f.uploadURLStatus == http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]string{
				"upload_url": server.URL + "/upload-target",
				"public_url": "https://files.example.com/public/abc",
			})
		}
	})

	mux.HandleFunc("PUT /upload-target", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "audio/mpeg", r.Header.Get("Content-Type"))
		// Pre-signed destination, no credentials expected.
		assert.Empty(t, r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		f.uploadedBytes = body

		w.WriteHeader(f.uploadPutStatus)
	})

	mux.HandleFunc("POST /local_file/initiate_transcription", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.initiateSeen))

		w.WriteHeader(f.initiateStatus)
		_ = json.NewEncoder(w).Encode(f.initiateBody)
	})

	mux.HandleFunc("GET /local_file/get_file_detail", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "order-123", r.URL.Query().Get("order_id"))

		w.WriteHeader(f.fileDetailStatus)
		_ = json.NewEncoder(w).Encode(f.fileDetailBody)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(config.TranscriptionConfig{
		APIKey:                "test-key",
		BaseURL:               server.URL,
		Language:              "ru-RU",
		Service:               "Standard",
		RequestTimeoutSeconds: 5,
	}, nil)
	require.NoError(t, err)

	return client, server
}

// audioFile writes a small fake audio file and returns its path.
func audioFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "call.mp3")
	require.NoError(t, os.WriteFile(path, []byte("fake audio bytes"), 0o644))
	return path
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	_, err := NewClient(config.TranscriptionConfig{BaseURL: "https://example.com"}, nil)
	assert.Error(t, err)

	_, err = NewClient(config.TranscriptionConfig{APIKey: "key"}, nil)
	assert.Error(t, err)
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	fixture := newProviderFixture(t)
	client, _ := fixture.start(t)

	orderID, err := client.Submit(context.Background(), audioFile(t), "call.mp3")
	require.NoError(t, err)

	assert.Equal(t, "order-123", orderID)
	assert.Equal(t, []byte("fake audio bytes"), fixture.uploadedBytes)
	assert.Equal(t, "https://files.example.com/public/abc", fixture.initiateSeen.URL)
	assert.Equal(t, "ru-RU", fixture.initiateSeen.Language)
	assert.Equal(t, "Standard", fixture.initiateSeen.Service)
}

func TestSubmitUploadURLFailure(t *testing.T) {
	t.Parallel()

	fixture := newProviderFixture(t)
	fixture.uploadURLStatus = http.StatusInternalServerError
	client, _ := fixture.start(t)

	_, err := client.Submit(context.Background(), audioFile(t), "call.mp3")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestSubmitUploadFailure(t *testing.T) {
	t.Parallel()

	fixture := newProviderFixture(t)
	fixture.uploadPutStatus = http.StatusForbidden
	client, _ := fixture.start(t)

	_, err := client.Submit(context.Background(), audioFile(t), "call.mp3")
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestSubmitMissingFile(t *testing.T) {
	t.Parallel()

	fixture := newProviderFixture(t)
	client, _ := fixture.start(t)

	_, err := client.Submit(context.Background(), filepath.Join(t.TempDir(), "absent.mp3"), "call.mp3")
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestSubmitInitiationRejected(t *testing.T) {
	t.Parallel()

	fixture := newProviderFixture(t)
	fixture.initiateStatus = http.StatusOK // anything but 202 is a rejection
	client, _ := fixture.start(t)

	_, err := client.Submit(context.Background(), audioFile(t), "call.mp3")
	assert.ErrorIs(t, err, ErrSubmissionRejected)
}

func TestSubmitInitiationWithoutOrderID(t *testing.T) {
	t.Parallel()

	fixture := newProviderFixture(t)
	fixture.initiateBody = map[string]any{"message": "accepted"}
	client, _ := fixture.start(t)

	_, err := client.Submit(context.Background(), audioFile(t), "call.mp3")
	assert.ErrorIs(t, err, ErrSubmissionRejected)
}

func TestSubmitUnreachableProvider(t *testing.T) {
	t.Parallel()

	client, err := NewClient(config.TranscriptionConfig{
		APIKey:                "test-key",
		BaseURL:               "http://127.0.0.1:1",
		RequestTimeoutSeconds: 1,
	}, nil)
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), audioFile(t), "call.mp3")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestQueryStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body map[string]any
		want RemoteState
	}{
		{
			name: "completed",
			body: map[string]any{"status": "completed", "transcription": "hello world"},
			want: RemoteState{Status: RemoteStatusCompleted, Transcription: "hello world"},
		},
		{
			name: "error with message",
			body: map[string]any{"status": "error", "message": "audio unreadable"},
			want: RemoteState{Status: RemoteStatusError, Detail: "audio unreadable"},
		},
		{
			name: "failed without message",
			body: map[string]any{"status": "failed"},
			want: RemoteState{Status: RemoteStatusError, Detail: "transcription failed"},
		},
		{
			name: "still processing",
			body: map[string]any{"status": "processing"},
			want: RemoteState{Status: RemoteStatusProcessing},
		},
		{
			name: "unknown pre-completion state collapses to processing",
			body: map[string]any{"status": "queued"},
			want: RemoteState{Status: RemoteStatusProcessing},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fixture := newProviderFixture(t)
			fixture.fileDetailBody = tc.body
			client, _ := fixture.start(t)

			state, err := client.QueryStatus(context.Background(), "order-123")
			require.NoError(t, err)
			assert.Equal(t, tc.want, state)
		})
	}
}

func TestQueryStatusMissingStatus(t *testing.T) {
	t.Parallel()

	fixture := newProviderFixture(t)
	fixture.fileDetailBody = map[string]any{"transcription": "hello"}
	client, _ := fixture.start(t)

	_, err := client.QueryStatus(context.Background(), "order-123")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestQueryStatusHTTPError(t *testing.T) {
	t.Parallel()

	fixture := newProviderFixture(t)
	fixture.fileDetailStatus = http.StatusBadGateway
	client, _ := fixture.start(t)

	_, err := client.QueryStatus(context.Background(), "order-123")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}
