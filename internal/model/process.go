package model

import "time"

// ProcessRequest carries the non-file fields of a document upload
type ProcessRequest struct {
	TargetLang string `json:"targetLang" validate:"required,min=2,max=8"`
	Summarize  bool   `json:"summarize"`
}

// ProcessStartResponse is returned when a job has been accepted
type ProcessStartResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// JobResponse is the externally visible view of a job record
type JobResponse struct {
	ID             string     `json:"id"`
	Status         JobStatus  `json:"status"`
	SourceFilename string     `json:"sourceFilename"`
	TargetLang     string     `json:"targetLang"`
	Summarize      bool       `json:"summarize"`
	AudioFilename  *string    `json:"audioFilename,omitempty"`
	AudioURL       *string    `json:"audioUrl,omitempty"`
	ResultText     *string    `json:"resultText,omitempty"`
	TimestampsJSON *string    `json:"timestampsJson,omitempty"`
	Error          *string    `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// NewJobResponse maps a job record to its API representation
func NewJobResponse(job *Job) *JobResponse {
	return &JobResponse{
		ID:             job.ID,
		Status:         job.Status,
		SourceFilename: job.SourceFilename,
		TargetLang:     job.TargetLang,
		Summarize:      job.Summarize,
		AudioFilename:  job.AudioFilename,
		AudioURL:       job.AudioURL,
		ResultText:     job.ResultText,
		TimestampsJSON: job.TimestampsJSON,
		Error:          job.Error,
		CreatedAt:      job.CreatedAt,
		StartedAt:      job.StartedAt,
		CompletedAt:    job.CompletedAt,
	}
}

// ExtractedText is the outcome of the text acquisition stage
type ExtractedText struct {
	Text       string
	Provenance Provenance
	Pages      []PageResult
}

// PageResult is the per-page outcome of OCR extraction. Failed pages are
// skipped rather than failing the whole stage.
type PageResult struct {
	Page int
	Text string
	Err  string
}
