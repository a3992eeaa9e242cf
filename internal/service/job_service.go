package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/polyvox/api/internal/client"
	"github.com/polyvox/api/internal/model"
	"github.com/polyvox/api/internal/store"
)

const TaskTypeProcess = "document:process"

// Enqueuer submits tasks to the background queue. *asynq.Client satisfies it.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// JobService handles document processing job management
type JobService struct {
	store    store.JobStore
	enqueuer Enqueuer
	storage  client.StorageClient
	audioDir string
}

func NewJobService(jobStore store.JobStore, enqueuer Enqueuer, storage client.StorageClient, audioDir string) *JobService {
	return &JobService{
		store:    jobStore,
		enqueuer: enqueuer,
		storage:  storage,
		audioDir: audioDir,
	}
}

// StartProcess records a new job and queues it for processing
func (s *JobService) StartProcess(ctx context.Context, userID, documentPath, sourceFilename, targetLang string, summarize bool) (*model.ProcessStartResponse, error) {
	jobID := uuid.New().String()
	now := time.Now()

	job := &model.Job{
		ID:             jobID,
		UserID:         userID,
		Status:         model.JobStatusPending,
		SourceFilename: sourceFilename,
		TargetLang:     targetLang,
		Summarize:      summarize,
		CreatedAt:      now,
	}

	if err := s.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	payload := &model.ProcessJobPayload{
		DocumentPath:   documentPath,
		SourceFilename: sourceFilename,
		TargetLang:     targetLang,
		Summarize:      summarize,
		UserID:         userID,
	}

	task, err := newProcessTask(jobID, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	// a failed job stays failed; the pipeline is not safe to replay blindly
	_, err = s.enqueuer.Enqueue(task,
		asynq.Queue("process"),
		asynq.MaxRetry(0),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return &model.ProcessStartResponse{
		JobID:     jobID,
		Status:    model.JobStatusPending,
		CreatedAt: now,
	}, nil
}

// GetJob returns a job owned by userID
func (s *JobService) GetJob(ctx context.Context, userID, jobID string) (*model.Job, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, ErrForbidden
	}
	return job, nil
}

// ListJobs returns all jobs owned by userID, newest first
func (s *JobService) ListJobs(ctx context.Context, userID string) ([]*model.Job, error) {
	return s.store.ListByUser(ctx, userID)
}

// DeleteJob removes a job record and its audio artifacts
func (s *JobService) DeleteJob(ctx context.Context, userID, jobID string) error {
	job, err := s.GetJob(ctx, userID, jobID)
	if err != nil {
		return err
	}

	if job.AudioFilename != nil {
		path := filepath.Join(s.audioDir, *job.AudioFilename)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove audio file %s: %v", path, err)
		}
		if s.storage != nil && job.AudioURL != nil {
			key := fmt.Sprintf("audio/%s/%s", job.ID, *job.AudioFilename)
			if err := s.storage.Delete(ctx, key); err != nil {
				log.Printf("Failed to remove mirrored audio %s: %v", key, err)
			}
		}
	}

	return s.store.Delete(ctx, job)
}

// MarkRunning transitions a job to RUNNING (called by worker)
func (s *JobService) MarkRunning(ctx context.Context, jobID string) error {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return err
	}

	if job.Status == model.JobStatusPending {
		job.Status = model.JobStatusRunning
		now := time.Now()
		job.StartedAt = &now
	}

	return s.store.Update(ctx, job)
}

// JobCompletion carries the artifacts of a finished job. It is also the
// payload broadcast to WebSocket subscribers on completion.
type JobCompletion struct {
	AudioFilename  string  `json:"audioFilename"`
	AudioURL       *string `json:"audioUrl,omitempty"`
	ResultText     string  `json:"resultText"`
	TimestampsJSON *string `json:"timestampsJson,omitempty"`
}

// CompleteJob marks a job as succeeded (called by worker)
func (s *JobService) CompleteJob(ctx context.Context, jobID string, result *JobCompletion) error {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return err
	}

	job.Status = model.JobStatusSuccess
	job.AudioFilename = &result.AudioFilename
	job.AudioURL = result.AudioURL
	job.ResultText = &result.ResultText
	job.TimestampsJSON = result.TimestampsJSON
	now := time.Now()
	job.CompletedAt = &now

	return s.store.Update(ctx, job)
}

// FailJob marks a job as failed (called by worker)
func (s *JobService) FailJob(ctx context.Context, jobID string, errMsg string) error {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return err
	}

	job.Status = model.JobStatusFailure
	job.Error = &errMsg
	job.ResultText = &errMsg
	now := time.Now()
	job.CompletedAt = &now

	return s.store.Update(ctx, job)
}

// processTaskEnvelope is the wire shape of a queued process task. Payload is
// raw JSON so the worker can decode it directly into model.ProcessJobPayload.
type processTaskEnvelope struct {
	JobID   string          `json:"jobId"`
	Payload json.RawMessage `json:"payload"`
}

func newProcessTask(jobID string, payload *model.ProcessJobPayload) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(processTaskEnvelope{
		JobID:   jobID,
		Payload: payloadBytes,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeProcess, data), nil
}
