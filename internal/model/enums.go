package model

// Job status
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailure JobStatus = "FAILURE"
)

// Terminal reports whether the status can no longer change
func (s JobStatus) Terminal() bool {
	return s == JobStatusSuccess || s == JobStatusFailure
}

// Provenance tags where extracted text came from
type Provenance string

const (
	ProvenanceEmbedded Provenance = "embedded"
	ProvenanceOCR      Provenance = "ocr"
)
