package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kiranshivaraju/labelcheck/pkg/models"
)

// MemoryStore implements Store with a map guarded by a RWMutex. Records are
// copied on the way in and out so a stored job can only change through
// ReplaceJob.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.ValidationJob
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*models.ValidationJob)}
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) CreateJob(_ context.Context, job *models.ValidationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return ErrDuplicateKey
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (*models.ValidationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

// ListJobs returns every job ordered by creation time, then id.
func (s *MemoryStore) ListJobs(_ context.Context) ([]*models.ValidationJob, error) {
	s.mu.RLock()
	jobs := make([]*models.ValidationJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
		}
		return jobs[i].ID < jobs[j].ID
	})
	return jobs, nil
}

func (s *MemoryStore) ReplaceJob(_ context.Context, job *models.ValidationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.jobs[job.ID]
	if !ok {
		return ErrNotFound
	}
	if !validTransition(current.Status, job.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, job.Status)
	}

	next := job.Clone()
	next.CreatedAt = current.CreatedAt
	next.Claim = current.Claim
	s.jobs[job.ID] = next
	return nil
}

var _ Store = (*MemoryStore)(nil)
