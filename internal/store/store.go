package store

import (
	"context"
	"errors"

	"github.com/polyvox/api/internal/model"
)

// ErrNotFound is returned when a job record does not exist
var ErrNotFound = errors.New("job not found")

// JobStore defines persistence for job records
type JobStore interface {
	Create(ctx context.Context, job *model.Job) error
	Get(ctx context.Context, jobID string) (*model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	ListByUser(ctx context.Context, userID string) ([]*model.Job, error)
	Delete(ctx context.Context, job *model.Job) error
}
