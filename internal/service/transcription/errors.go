package transcription

import "errors"

// Errors returned by the transcription lifecycle service. Not-found and
// ownership failures surface as the store's ErrJobNotFound and
// ErrRecordingNotFound sentinels.
var (
	// ErrFileMissing indicates the recording's backing file was absent
	// from disk at submission time.
	ErrFileMissing = errors.New("recording file missing from disk")

	// ErrSubmissionFailed indicates the provider handshake failed. No job
	// record exists; the caller may safely retry, producing a brand-new
	// job, since no partial state survives.
	ErrSubmissionFailed = errors.New("transcription submission failed")

	// ErrTransientProvider indicates a status poll failed or timed out.
	// The job's stored state is untouched; the caller should simply
	// retry on its normal polling cadence.
	ErrTransientProvider = errors.New("transient transcription provider error")
)
