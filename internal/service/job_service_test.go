package service

import (
	"encoding/json"
	"testing"

	"github.com/polyvox/api/internal/model"
)

func TestNewProcessTaskPayloadDecodesDirectly(t *testing.T) {
	payload := &model.ProcessJobPayload{
		DocumentPath:   "/data/uploads/report.pdf",
		SourceFilename: "report.pdf",
		TargetLang:     "es",
		Summarize:      true,
		UserID:         "user-1",
	}

	task, err := newProcessTask("job-123", payload)
	if err != nil {
		t.Fatalf("newProcessTask: %v", err)
	}
	if task.Type() != TaskTypeProcess {
		t.Errorf("expected task type %q, got %q", TaskTypeProcess, task.Type())
	}

	// decode the wire bytes the way the worker does
	var envelope struct {
		JobID   string          `json:"jobId"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(task.Payload(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.JobID != "job-123" {
		t.Errorf("expected jobId %q, got %q", "job-123", envelope.JobID)
	}
	if len(envelope.Payload) == 0 || envelope.Payload[0] != '{' {
		t.Fatalf("inner payload must be a JSON object, got %s", envelope.Payload)
	}

	var decoded model.ProcessJobPayload
	if err := json.Unmarshal(envelope.Payload, &decoded); err != nil {
		t.Fatalf("unmarshal inner payload: %v", err)
	}
	if decoded != *payload {
		t.Errorf("payload round trip mismatch: got %+v, want %+v", decoded, *payload)
	}
}
