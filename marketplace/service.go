package marketplace

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingFields signals a job posting without title, description,
	// estimate, or target freelancer.
	ErrMissingFields = errors.New("marketplace: title, description, estimate, and freelancer are required")
	// ErrInvalidPrice signals a negative quote.
	ErrInvalidPrice = errors.New("marketplace: price must be a non-negative integer")
	// ErrPriceAlreadySet signals a second quote on an already-priced job.
	ErrPriceAlreadySet = errors.New("marketplace: price already set")
	// ErrNoPrice signals payment attempted before the freelancer quoted.
	ErrNoPrice = errors.New("marketplace: job has no price yet")
	// ErrAlreadyPaid signals a duplicate payment.
	ErrAlreadyPaid = errors.New("marketplace: job already paid")
	// ErrJobPaid signals deletion of a paid job.
	ErrJobPaid = errors.New("marketplace: paid jobs cannot be deleted")
	// ErrJobCompleted signals a transition on a completed job.
	ErrJobCompleted = errors.New("marketplace: job already completed")
	// ErrJobNotActive signals completion of a job that was never accepted or paid.
	ErrJobNotActive = errors.New("marketplace: job is not active")
	// ErrNotPending signals a quote on a job that already left PENDING.
	ErrNotPending = errors.New("marketplace: job is not pending")
	// ErrForbidden signals a transition attempted by the wrong party.
	ErrForbidden = errors.New("marketplace: caller may not modify this job")
)

// EarningsRecorder is notified when a paid job completes so freelancer
// lifetime earnings stay current. Wired to the users service.
type EarningsRecorder interface {
	AddEarnings(ctx context.Context, userID string, amount float64) error
}

// Service enforces the job lifecycle. The server is the sole authority on
// transitions; clients mirror its responses.
type Service struct {
	repo     Repository
	earnings EarningsRecorder
}

// NewService creates the marketplace service. earnings may be nil.
func NewService(repo Repository, earnings EarningsRecorder) *Service {
	return &Service{repo: repo, earnings: earnings}
}

// Post creates a PENDING, unpriced, unpaid job targeting a freelancer.
func (s *Service) Post(ctx context.Context, clientID string, params CreateParams) (Job, error) {
	if params.Title == "" || params.Description == "" || params.EstimatedTime == "" || params.FreelancerID == "" {
		return Job{}, ErrMissingFields
	}
	return s.repo.CreateJob(ctx, CreateJobParams{
		Title:         params.Title,
		Description:   params.Description,
		EstimatedTime: params.EstimatedTime,
		ClientID:      clientID,
		FreelancerID:  params.FreelancerID,
	})
}

// SetPrice records the assigned freelancer's quote. Only valid while the job
// is PENDING and unpriced.
func (s *Service) SetPrice(ctx context.Context, freelancerID, jobID string, price int) (Job, error) {
	if price < 0 {
		return Job{}, ErrInvalidPrice
	}
	return s.transition(ctx, jobID, func(job *Job) error {
		if job.FreelancerID != freelancerID {
			return ErrForbidden
		}
		if job.Status != StatusPending {
			return ErrNotPending
		}
		if job.Price != nil {
			return ErrPriceAlreadySet
		}
		job.Price = &price
		return nil
	})
}

// Pay marks a priced job as paid and activates it.
func (s *Service) Pay(ctx context.Context, clientID, jobID string) (Job, error) {
	return s.transition(ctx, jobID, func(job *Job) error {
		if job.ClientID != clientID {
			return ErrForbidden
		}
		if job.Price == nil {
			return ErrNoPrice
		}
		if job.Paid {
			return ErrAlreadyPaid
		}
		if job.Status == StatusCompleted {
			return ErrJobCompleted
		}
		job.Paid = true
		job.Status = StatusActive
		return nil
	})
}

// Accept lets the assigned freelancer start the job, independent of payment.
func (s *Service) Accept(ctx context.Context, freelancerID, jobID string) (Job, error) {
	return s.transition(ctx, jobID, func(job *Job) error {
		if job.FreelancerID != freelancerID {
			return ErrForbidden
		}
		if job.Status == StatusCompleted {
			return ErrJobCompleted
		}
		job.Status = StatusActive
		return nil
	})
}

// Ignore releases the freelancer from the job: assignment cleared, status
// back to PENDING so the client can re-assign. A previously quoted price is
// preserved.
func (s *Service) Ignore(ctx context.Context, freelancerID, jobID string) (Job, error) {
	return s.transition(ctx, jobID, func(job *Job) error {
		if job.FreelancerID != freelancerID {
			return ErrForbidden
		}
		if job.Status == StatusCompleted {
			return ErrJobCompleted
		}
		if job.Paid {
			// A paid job cannot fall back to PENDING without breaking the
			// paid-implies-not-pending invariant.
			return ErrAlreadyPaid
		}
		job.FreelancerID = ""
		job.Status = StatusPending
		return nil
	})
}

// Complete finishes an active job and credits the freelancer when it was
// paid.
func (s *Service) Complete(ctx context.Context, freelancerID, jobID string) (Job, error) {
	updated, err := s.transition(ctx, jobID, func(job *Job) error {
		if job.FreelancerID != freelancerID {
			return ErrForbidden
		}
		if job.Status != StatusActive {
			return ErrJobNotActive
		}
		job.Status = StatusCompleted
		return nil
	})
	if err != nil {
		return Job{}, err
	}
	if updated.Paid && updated.Price != nil && s.earnings != nil {
		if err := s.earnings.AddEarnings(ctx, freelancerID, float64(*updated.Price)); err != nil {
			return Job{}, fmt.Errorf("marketplace: record earnings: %w", err)
		}
	}
	return updated, nil
}

// Delete removes an unpaid job from the client's list. The paid check lives
// in the repository's conditional delete so a concurrent payment cannot be
// erased along with the row.
func (s *Service) Delete(ctx context.Context, clientID, jobID string) error {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.ClientID != clientID {
		return ErrForbidden
	}
	return s.repo.DeleteJob(ctx, jobID)
}

// JobsForClient lists every job the client posted.
func (s *Service) JobsForClient(ctx context.Context, clientID string) ([]Job, error) {
	return s.repo.ListByClient(ctx, clientID)
}

// JobsForFreelancer lists every job assigned to the freelancer.
func (s *Service) JobsForFreelancer(ctx context.Context, freelancerID string) ([]Job, error) {
	return s.repo.ListByFreelancer(ctx, freelancerID)
}

// Get retrieves one job.
func (s *Service) Get(ctx context.Context, jobID string) (Job, error) {
	return s.repo.GetJob(ctx, jobID)
}

// transition runs mutate under the repository's exclusive hold on the job
// and refuses to commit a paid PENDING row.
func (s *Service) transition(ctx context.Context, jobID string, mutate func(*Job) error) (Job, error) {
	return s.repo.Transition(ctx, jobID, func(job *Job) error {
		if err := mutate(job); err != nil {
			return err
		}
		if job.Paid && job.Status == StatusPending {
			return fmt.Errorf("marketplace: invariant violation: paid job %s would be PENDING", job.ID)
		}
		return nil
	})
}
