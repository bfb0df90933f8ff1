// Package transkriptor implements the client for the remote transcription
// provider. It presents the provider's three-step submission handshake
// (acquire upload target, push bytes, initiate job) and its polling call
// as two logical operations.
package transkriptor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/callhound/callhound-api/internal/config"
)

// Client makes calls against the Transkriptor transcription API.
// Configuration is an explicit value passed at construction, so multiple
// provider configurations (e.g. per-tenant credentials) remain possible.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	service  string

	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// NewClient creates a provider client from the given configuration.
// If logger is nil, a default logger is used.
func NewClient(cfg config.TranscriptionConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("transkriptor: API key cannot be empty")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("transkriptor: base URL cannot be empty")
	}

	if logger == nil {
		logger = slog.Default()
	}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		language:   cfg.Language,
		service:    cfg.Service,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		logger:     logger.With(slog.String("component", "transkriptor")),
	}, nil
}

// Submit runs the provider's three-stage submission handshake for the
// file at localFilePath and returns the provider's job identifier.
//
// The handshake is a saga with no rollback: if the upload or initiation
// fails after an upload destination was issued, the orphaned destination
// is abandoned on the provider side and an error is returned, so the
// caller never records a job that was not actually created. A single
// attempt is made per call; retry policy belongs to the caller.
func (c *Client) Submit(ctx context.Context, localFilePath, displayName string) (string, error) {
	log := c.logger

	// Stage 1: acquire an upload destination and public reference.
	var issued uploadURLResponse
	err := c.call(ctx, http.MethodPost, "/local_file/get_upload_url",
		uploadURLRequest{FileName: displayName}, http.StatusOK, &issued)
	if err != nil {
		log.Warn("failed to acquire upload destination",
			slog.String("error", err.Error()))
		var statusErr *unexpectedStatusError
		if errors.As(err, &statusErr) {
			return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return "", err
	}
	if issued.UploadURL == "" || issued.PublicURL == "" {
		log.Warn("provider issued incomplete upload destination")
		return "", fmt.Errorf("%w: missing upload or public URL", ErrProviderUnavailable)
	}

	// Stage 2: push the file's bytes to the issued destination.
	if err := c.upload(ctx, issued.UploadURL, localFilePath); err != nil {
		log.Warn("file upload failed, abandoning upload destination",
			slog.String("error", err.Error()))
		return "", err
	}

	// Stage 3: initiate the job against the public reference.
	var ack initiateResponse
	err = c.call(ctx, http.MethodPost, "/local_file/initiate_transcription",
		initiateRequest{
			URL:      issued.PublicURL,
			Language: c.language,
			Service:  c.service,
		}, http.StatusAccepted, &ack)
	if err != nil {
		// A reachable provider answering with anything but the accepted
		// status is a rejection, not an outage.
		var statusErr *unexpectedStatusError
		if errors.As(err, &statusErr) {
			return "", fmt.Errorf("%w: %v", ErrSubmissionRejected, err)
		}
		return "", err
	}
	if ack.OrderID == "" {
		return "", fmt.Errorf("%w: no order ID in acknowledgement", ErrSubmissionRejected)
	}

	log.Info("transcription submitted",
		slog.String("provider_job_id", ack.OrderID))
	return ack.OrderID, nil
}

// QueryStatus polls the provider for the state of the job identified by
// providerJobID. Transport failures and malformed responses map to
// ErrProviderUnavailable, which callers always treat as transient.
func (c *Client) QueryStatus(ctx context.Context, providerJobID string) (RemoteState, error) {
	var detail fileDetailResponse
	path := "/local_file/get_file_detail?order_id=" + url.QueryEscape(providerJobID)
	if err := c.call(ctx, http.MethodGet, path, nil, http.StatusOK, &detail); err != nil {
		var statusErr *unexpectedStatusError
		if errors.As(err, &statusErr) {
			return RemoteState{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return RemoteState{}, err
	}

	switch detail.Status {
	case "completed":
		return RemoteState{
			Status:        RemoteStatusCompleted,
			Transcription: detail.Transcription,
		}, nil
	case "error", "failed":
		msg := detail.Message
		if msg == "" {
			msg = "transcription failed"
		}
		return RemoteState{Status: RemoteStatusError, Detail: msg}, nil
	case "":
		return RemoteState{}, fmt.Errorf("%w: response missing status", ErrProviderUnavailable)
	default:
		// Everything the provider reports before completion (queued,
		// processing, ...) collapses to processing.
		return RemoteState{Status: RemoteStatusProcessing}, nil
	}
}

// call executes a JSON API request against the provider and decodes the
// response into v. A response with an unexpected status or an undecodable
// body maps to ErrProviderUnavailable.
func (c *Client) call(ctx context.Context, method, path string, body any, wantStatus int, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			c.logger.Debug("failed to close response body", slog.String("error", err.Error()))
		}
	}()

	if res.StatusCode != wantStatus {
		resBody, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &unexpectedStatusError{
			method:  method,
			path:    path,
			code:    res.StatusCode,
			message: providerMessage(resBody),
		}
	}

	if v != nil {
		if err := json.NewDecoder(res.Body).Decode(v); err != nil {
			return fmt.Errorf("%w: malformed response: %v", ErrProviderUnavailable, err)
		}
	}

	return nil
}

// upload streams the file's bytes to the issued upload destination.
// The destination is a pre-signed absolute URL, so no auth header is sent.
func (c *Client) upload(ctx context.Context, uploadURL, localFilePath string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	f, err := os.Open(localFilePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			c.logger.Debug("failed to close upload file", slog.String("error", err.Error()))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", "audio/mpeg")
	if info, err := f.Stat(); err == nil {
		req.ContentLength = info.Size()
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			c.logger.Debug("failed to close response body", slog.String("error", err.Error()))
		}
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: upload returned %d", ErrUploadFailed, res.StatusCode)
	}

	return nil
}

// unexpectedStatusError marks a response from a reachable provider whose
// status code was not the one the call expected. Callers map it to
// ErrProviderUnavailable or ErrSubmissionRejected depending on the stage.
type unexpectedStatusError struct {
	method  string
	path    string
	code    int
	message string
}

func (e *unexpectedStatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.method, e.path, e.code, e.message)
}

// providerMessage extracts the provider's human-readable message from an
// error body, falling back to the raw body.
func providerMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return string(body)
}
