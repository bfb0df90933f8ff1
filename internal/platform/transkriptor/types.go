package transkriptor

// RemoteStatus is the provider-reported state of a transcription job,
// collapsed to the three states this application cares about.
type RemoteStatus string

const (
	RemoteStatusProcessing RemoteStatus = "processing"
	RemoteStatusCompleted  RemoteStatus = "completed"
	RemoteStatusError      RemoteStatus = "error"
)

// RemoteState is the result of a status poll. Transcription is set only
// for RemoteStatusCompleted; Detail only for RemoteStatusError.
type RemoteState struct {
	Status        RemoteStatus
	Transcription string
	Detail        string
}

// uploadURLRequest is the body of the get_upload_url call.
type uploadURLRequest struct {
	FileName string `json:"file_name"`
}

// uploadURLResponse carries the issued upload destination and the
// public-readable reference used to initiate the job.
type uploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
}

// initiateRequest is the body of the initiate_transcription call.
type initiateRequest struct {
	URL      string `json:"url"`
	Language string `json:"language"`
	Service  string `json:"service"`
}

// initiateResponse is the provider's acknowledgement of a submission.
type initiateResponse struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

// fileDetailResponse is the body of the get_file_detail polling call.
type fileDetailResponse struct {
	Status        string `json:"status"`
	Transcription string `json:"transcription"`
	Message       string `json:"message"`
}
