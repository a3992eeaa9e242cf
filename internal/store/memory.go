package store

import (
	"context"
	"sort"
	"sync"

	"github.com/polyvox/api/internal/model"
)

// MemoryStore is an in-memory JobStore used when Redis is unavailable and in
// tests. Jobs are copied on the way in and out so callers cannot mutate
// shared state.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]model.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]model.Job)}
}

func (s *MemoryStore) Create(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, jobID string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := job
	return &copied, nil
}

func (s *MemoryStore) Update(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var jobs []*model.Job
	for _, job := range s.jobs {
		if job.UserID == userID {
			copied := job
			jobs = append(jobs, &copied)
		}
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	return jobs, nil
}

func (s *MemoryStore) Delete(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	delete(s.jobs, job.ID)
	return nil
}
