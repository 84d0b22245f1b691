// Package jobs mirrors the server-owned job lifecycle on the client: a
// cached list refreshed by polling and patched optimistically after
// successful mutations. The server is the sole authority; the cache only
// tracks its responses.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gigflow/client"
	"gigflow/client/session"
)

// ErrInvalidPrice signals price input that is not a non-negative integer.
// Checked locally; no request is made.
var ErrInvalidPrice = errors.New("jobs: price must be a non-negative integer")

// ParsePrice validates and parses user-entered price text. Zero is a valid
// price.
func ParsePrice(input string) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, ErrInvalidPrice
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, ErrInvalidPrice
	}
	return n, nil
}

// API is the slice of the platform client the model needs.
type API interface {
	CreateJob(ctx context.Context, req client.CreateJobRequest) (client.Job, error)
	ClientJobs(ctx context.Context) ([]client.Job, error)
	FreelancerJobs(ctx context.Context, freelancerID string) ([]client.Job, error)
	SetPrice(ctx context.Context, jobID string, price int) (client.Job, error)
	AcceptJob(ctx context.Context, jobID string) (client.Job, error)
	IgnoreJob(ctx context.Context, jobID string) (client.Job, error)
	CompleteJob(ctx context.Context, jobID string) (client.Job, error)
	PayJob(ctx context.Context, jobID string) (client.Job, error)
	DeleteJob(ctx context.Context, jobID string) error
	ReportFraud(ctx context.Context, as session.Role, reportedUserID, description string) error
}

// Model holds one role's job list. Mutations bump a sequence number so poll
// responses that started before a mutation can be recognized as stale and
// discarded.
type Model struct {
	api        API
	role       session.Role
	identityID string

	mu   sync.Mutex
	jobs []client.Job
	seq  uint64
}

// NewModel creates a job model bound to one role and identity.
func NewModel(api API, role session.Role, identityID string) *Model {
	return &Model{api: api, role: role, identityID: identityID}
}

// Jobs returns a copy of the cached list.
func (m *Model) Jobs() []client.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]client.Job, len(m.jobs))
	copy(out, m.jobs)
	return out
}

// BeginPoll snapshots the mutation sequence before a poll fetch starts.
func (m *Model) BeginPoll() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq
}

// ApplyPoll replaces the cached list with a poll response, unless a local
// mutation landed after the fetch began. Stale responses are discarded and
// reported false; the next tick re-converges.
func (m *Model) ApplyPoll(list []client.Job, startSeq uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seq != startSeq {
		return false
	}
	m.jobs = list
	return true
}

// FetchRemote retrieves the role's full job list from the server.
func (m *Model) FetchRemote(ctx context.Context) ([]client.Job, error) {
	switch m.role {
	case session.RoleClient:
		return m.api.ClientJobs(ctx)
	case session.RoleFreelancer:
		return m.api.FreelancerJobs(ctx, m.identityID)
	default:
		return nil, fmt.Errorf("jobs: role %s has no job list", m.role)
	}
}

// Refresh fetches and applies the list in one step, outside the poller.
func (m *Model) Refresh(ctx context.Context) error {
	seq := m.BeginPoll()
	list, err := m.FetchRemote(ctx)
	if err != nil {
		return err
	}
	m.ApplyPoll(list, seq)
	return nil
}

// Create posts a new job and appends it to the cache.
func (m *Model) Create(ctx context.Context, req client.CreateJobRequest) (client.Job, error) {
	job, err := m.api.CreateJob(ctx, req)
	if err != nil {
		return client.Job{}, err
	}
	m.mu.Lock()
	m.jobs = append(m.jobs, job)
	m.seq++
	m.mu.Unlock()
	return job, nil
}

// SetPrice validates the entered price locally, then quotes it. Invalid
// input never reaches the server.
func (m *Model) SetPrice(ctx context.Context, jobID, priceInput string) (client.Job, error) {
	price, err := ParsePrice(priceInput)
	if err != nil {
		return client.Job{}, err
	}
	job, err := m.api.SetPrice(ctx, jobID, price)
	if err != nil {
		return client.Job{}, err
	}
	m.patch(job)
	return job, nil
}

// Pay marks a job paid.
func (m *Model) Pay(ctx context.Context, jobID string) (client.Job, error) {
	return m.transition(ctx, jobID, m.api.PayJob)
}

// Accept starts an assigned job.
func (m *Model) Accept(ctx context.Context, jobID string) (client.Job, error) {
	return m.transition(ctx, jobID, m.api.AcceptJob)
}

// Ignore releases the freelancer from a job. The job leaves the freelancer's
// cached list since it no longer carries their assignment.
func (m *Model) Ignore(ctx context.Context, jobID string) (client.Job, error) {
	job, err := m.api.IgnoreJob(ctx, jobID)
	if err != nil {
		return client.Job{}, err
	}
	if m.role == session.RoleFreelancer {
		m.remove(jobID)
	} else {
		m.patch(job)
	}
	return job, nil
}

// Complete finishes an active job.
func (m *Model) Complete(ctx context.Context, jobID string) (client.Job, error) {
	return m.transition(ctx, jobID, m.api.CompleteJob)
}

// Delete removes an unpaid job and drops it from the cache.
func (m *Model) Delete(ctx context.Context, jobID string) error {
	if err := m.api.DeleteJob(ctx, jobID); err != nil {
		return err
	}
	m.remove(jobID)
	return nil
}

// ReportFraud files a report against the counterpart on a job. No job state
// changes.
func (m *Model) ReportFraud(ctx context.Context, reportedUserID, description string) error {
	return m.api.ReportFraud(ctx, m.role, reportedUserID, description)
}

func (m *Model) transition(ctx context.Context, jobID string, fn func(context.Context, string) (client.Job, error)) (client.Job, error) {
	job, err := fn(ctx, jobID)
	if err != nil {
		return client.Job{}, err
	}
	m.patch(job)
	return job, nil
}

// patch replaces one cached job after a successful mutation.
func (m *Model) patch(job client.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	for i := range m.jobs {
		if m.jobs[i].ID == job.ID {
			m.jobs[i] = job
			return
		}
	}
	m.jobs = append(m.jobs, job)
}

func (m *Model) remove(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	for i := range m.jobs {
		if m.jobs[i].ID == jobID {
			m.jobs = append(m.jobs[:i], m.jobs[i+1:]...)
			return
		}
	}
}
