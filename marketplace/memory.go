package marketplace

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used when the API runs without
// a database (dev mode) and by the HTTP-level tests.
type MemoryRepository struct {
	mu   sync.Mutex
	jobs map[string]Job
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{jobs: make(map[string]Job)}
}

func (m *MemoryRepository) CreateJob(_ context.Context, params CreateJobParams) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	job := Job{
		ID:            uuid.NewString(),
		Title:         params.Title,
		Description:   params.Description,
		EstimatedTime: params.EstimatedTime,
		ClientID:      params.ClientID,
		FreelancerID:  params.FreelancerID,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.jobs[job.ID] = job
	return job, nil
}

func (m *MemoryRepository) GetJob(_ context.Context, jobID string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return job, nil
}

// Transition holds the lock across read, mutate, and write so concurrent
// lifecycle changes on one job serialize the same way the SQL repository's
// row lock makes them.
func (m *MemoryRepository) Transition(_ context.Context, jobID string, mutate func(*Job) error) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	if err := mutate(&job); err != nil {
		return Job{}, err
	}
	job.UpdatedAt = time.Now().UTC()
	m.jobs[jobID] = job
	return job, nil
}

func (m *MemoryRepository) DeleteJob(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	if job.Paid {
		return ErrJobPaid
	}
	delete(m.jobs, jobID)
	return nil
}

func (m *MemoryRepository) ListByClient(_ context.Context, clientID string) ([]Job, error) {
	return m.filter(func(j Job) bool { return j.ClientID == clientID }), nil
}

func (m *MemoryRepository) ListByFreelancer(_ context.Context, freelancerID string) ([]Job, error) {
	return m.filter(func(j Job) bool { return j.FreelancerID == freelancerID }), nil
}

func (m *MemoryRepository) ListAll(_ context.Context) ([]Job, error) {
	return m.filter(func(Job) bool { return true }), nil
}

func (m *MemoryRepository) filter(keep func(Job) bool) []Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := []Job{}
	for _, job := range m.jobs {
		if keep(job) {
			list = append(list, job)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}
