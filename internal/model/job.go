package model

import "time"

// Job represents one document-to-audio conversion request and its lifecycle
// record. Created at submission, mutated only by the processing worker.
type Job struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
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

// ProcessJobPayload contains the data for a document processing job
type ProcessJobPayload struct {
	DocumentPath   string `json:"documentPath"`
	SourceFilename string `json:"sourceFilename"`
	TargetLang     string `json:"targetLang"`
	Summarize      bool   `json:"summarize"`
	UserID         string `json:"userId"`
}
