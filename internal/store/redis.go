package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/polyvox/api/internal/model"
)

// RedisStore persists job records in Redis. Each job lives at job:<id> as a
// JSON blob, and user:<id>:jobs holds the set of job IDs per owner. Jobs are
// the system of record, so no TTL is applied.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func jobKey(jobID string) string {
	return fmt.Sprintf("job:%s", jobID)
}

func userJobsKey(userID string) string {
	return fmt.Sprintf("user:%s:jobs", userID)
}

func (s *RedisStore) Create(ctx context.Context, job *model.Job) error {
	if err := s.save(ctx, job); err != nil {
		return err
	}
	if job.UserID != "" {
		if err := s.client.SAdd(ctx, userJobsKey(job.UserID), job.ID).Err(); err != nil {
			return fmt.Errorf("failed to index job for user: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.client.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read job: %w", err)
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

func (s *RedisStore) Update(ctx context.Context, job *model.Job) error {
	return s.save(ctx, job)
}

func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]*model.Job, error) {
	ids, err := s.client.SMembers(ctx, userJobsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user jobs: %w", err)
	}

	jobs := make([]*model.Job, 0, len(ids))
	for _, id := range ids {
		job, err := s.Get(ctx, id)
		if err != nil {
			if err == ErrNotFound {
				// stale index entry
				s.client.SRem(ctx, userJobsKey(userID), id)
				continue
			}
			return nil, err
		}
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	return jobs, nil
}

func (s *RedisStore) Delete(ctx context.Context, job *model.Job) error {
	if err := s.client.Del(ctx, jobKey(job.ID)).Err(); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if job.UserID != "" {
		if err := s.client.SRem(ctx, userJobsKey(job.UserID), job.ID).Err(); err != nil {
			return fmt.Errorf("failed to unindex job: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) save(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return s.client.Set(ctx, jobKey(job.ID), data, 0).Err()
}
