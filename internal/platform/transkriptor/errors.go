package transkriptor

import "errors"

// Error taxonomy for the provider handshake and polling calls. These are
// the only error identities callers should branch on; everything else is
// wrapped detail.
var (
	// ErrProviderUnavailable indicates a transport failure, timeout, or
	// malformed response. Always treated as transient by callers.
	ErrProviderUnavailable = errors.New("transcription provider unavailable")

	// ErrUploadFailed indicates the byte upload to the issued destination
	// was rejected. The upload destination is abandoned; the provider has
	// no cleanup API for it.
	ErrUploadFailed = errors.New("file upload to provider failed")

	// ErrSubmissionRejected indicates the provider did not acknowledge
	// job initiation with its expected accepted status.
	ErrSubmissionRejected = errors.New("provider rejected transcription submission")
)
