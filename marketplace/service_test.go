package marketplace

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeEarnings struct {
	credits map[string]float64
}

func (f *fakeEarnings) AddEarnings(_ context.Context, userID string, amount float64) error {
	if f.credits == nil {
		f.credits = make(map[string]float64)
	}
	f.credits[userID] += amount
	return nil
}

func newTestService() (*Service, *fakeEarnings) {
	earnings := &fakeEarnings{}
	return NewService(NewMemoryRepository(), earnings), earnings
}

func postJob(t *testing.T, svc *Service) Job {
	t.Helper()
	job, err := svc.Post(context.Background(), "client-1", CreateParams{
		Title:         "Landing page",
		Description:   "Build a landing page",
		EstimatedTime: "3 days",
		FreelancerID:  "freelancer-1",
	})
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	return job
}

func TestPostValidation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Post(context.Background(), "client-1", CreateParams{Title: "x"})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestPostInitialState(t *testing.T) {
	svc, _ := newTestService()
	job := postJob(t, svc)

	if job.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", job.Status)
	}
	if job.Price != nil {
		t.Errorf("expected nil price, got %d", *job.Price)
	}
	if job.Paid {
		t.Error("new job must not be paid")
	}
}

func TestSetPrice(t *testing.T) {
	svc, _ := newTestService()
	job := postJob(t, svc)
	ctx := context.Background()

	if _, err := svc.SetPrice(ctx, "freelancer-1", job.ID, -5); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice for negative price, got %v", err)
	}
	if _, err := svc.SetPrice(ctx, "someone-else", job.ID, 100); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for wrong freelancer, got %v", err)
	}

	priced, err := svc.SetPrice(ctx, "freelancer-1", job.ID, 0)
	if err != nil {
		t.Fatalf("SetPrice(0) failed: %v", err)
	}
	if priced.Price == nil || *priced.Price != 0 {
		t.Fatalf("expected price 0, got %v", priced.Price)
	}

	if _, err := svc.SetPrice(ctx, "freelancer-1", job.ID, 50); !errors.Is(err, ErrPriceAlreadySet) {
		t.Fatalf("expected ErrPriceAlreadySet on second quote, got %v", err)
	}
}

func TestPayRequiresPrice(t *testing.T) {
	svc, _ := newTestService()
	job := postJob(t, svc)
	ctx := context.Background()

	if _, err := svc.Pay(ctx, "client-1", job.ID); !errors.Is(err, ErrNoPrice) {
		t.Fatalf("expected ErrNoPrice before quote, got %v", err)
	}

	if _, err := svc.SetPrice(ctx, "freelancer-1", job.ID, 500); err != nil {
		t.Fatalf("SetPrice failed: %v", err)
	}

	paid, err := svc.Pay(ctx, "client-1", job.ID)
	if err != nil {
		t.Fatalf("Pay failed: %v", err)
	}
	if !paid.Paid {
		t.Error("job should be marked paid")
	}
	if paid.Status != StatusActive {
		t.Errorf("paid job should be ACTIVE, got %s", paid.Status)
	}

	if _, err := svc.Pay(ctx, "client-1", job.ID); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid on double payment, got %v", err)
	}
}

func TestPayCompletedJobRejected(t *testing.T) {
	svc, _ := newTestService()
	job := postJob(t, svc)
	ctx := context.Background()

	if _, err := svc.SetPrice(ctx, "freelancer-1", job.ID, 100); err != nil {
		t.Fatalf("SetPrice failed: %v", err)
	}
	if _, err := svc.Accept(ctx, "freelancer-1", job.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if _, err := svc.Complete(ctx, "freelancer-1", job.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if _, err := svc.Pay(ctx, "client-1", job.ID); !errors.Is(err, ErrJobCompleted) {
		t.Fatalf("expected ErrJobCompleted, got %v", err)
	}
	got, err := svc.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("completed job must stay completed, got %s", got.Status)
	}
}

func TestPayWrongClient(t *testing.T) {
	svc, _ := newTestService()
	job := postJob(t, svc)
	ctx := context.Background()

	if _, err := svc.SetPrice(ctx, "freelancer-1", job.ID, 100); err != nil {
		t.Fatalf("SetPrice failed: %v", err)
	}
	if _, err := svc.Pay(ctx, "client-2", job.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAcceptWithoutPayment(t *testing.T) {
	svc, _ := newTestService()
	job := postJob(t, svc)

	active, err := svc.Accept(context.Background(), "freelancer-1", job.ID)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if active.Status != StatusActive {
		t.Errorf("expected ACTIVE, got %s", active.Status)
	}
	if active.Paid {
		t.Error("accept must not mark the job paid")
	}
}

func TestIgnoreClearsAssignmentKeepsPrice(t *testing.T) {
	svc, _ := newTestService()
	job := postJob(t, svc)
	ctx := context.Background()

	if _, err := svc.SetPrice(ctx, "freelancer-1", job.ID, 250); err != nil {
		t.Fatalf("SetPrice failed: %v", err)
	}
	if _, err := svc.Accept(ctx, "freelancer-1", job.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	released, err := svc.Ignore(ctx, "freelancer-1", job.ID)
	if err != nil {
		t.Fatalf("Ignore failed: %v", err)
	}
	if released.FreelancerID != "" {
		t.Errorf("expected cleared freelancer, got %q", released.FreelancerID)
	}
	if released.Status != StatusPending {
		t.Errorf("expected PENDING after ignore, got %s", released.Status)
	}
	if released.Price == nil || *released.Price != 250 {
		t.Errorf("ignore must preserve the quoted price, got %v", released.Price)
	}
}

func TestIgnorePaidJobRejected(t *testing.T) {
	svc, _ := newTestService()
	job := postJob(t, svc)
	ctx := context.Background()

	if _, err := svc.SetPrice(ctx, "freelancer-1", job.ID, 100); err != nil {
		t.Fatalf("SetPrice failed: %v", err)
	}
	if _, err := svc.Pay(ctx, "client-1", job.ID); err != nil {
		t.Fatalf("Pay failed: %v", err)
	}
	if _, err := svc.Ignore(ctx, "freelancer-1", job.ID); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestCompleteCreditsEarnings(t *testing.T) {
	svc, earnings := newTestService()
	job := postJob(t, svc)
	ctx := context.Background()

	if _, err := svc.Complete(ctx, "freelancer-1", job.ID); !errors.Is(err, ErrJobNotActive) {
		t.Fatalf("expected ErrJobNotActive before accept, got %v", err)
	}

	if _, err := svc.SetPrice(ctx, "freelancer-1", job.ID, 750); err != nil {
		t.Fatalf("SetPrice failed: %v", err)
	}
	if _, err := svc.Pay(ctx, "client-1", job.ID); err != nil {
		t.Fatalf("Pay failed: %v", err)
	}

	done, err := svc.Complete(ctx, "freelancer-1", job.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", done.Status)
	}
	if got := earnings.credits["freelancer-1"]; got != 750 {
		t.Errorf("expected 750 credited, got %v", got)
	}
}

func TestCompleteUnpaidCreditsNothing(t *testing.T) {
	svc, earnings := newTestService()
	job := postJob(t, svc)
	ctx := context.Background()

	if _, err := svc.Accept(ctx, "freelancer-1", job.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if _, err := svc.Complete(ctx, "freelancer-1", job.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if len(earnings.credits) != 0 {
		t.Errorf("unpaid completion must not credit earnings, got %v", earnings.credits)
	}
}

func TestDeletePaidJobRejected(t *testing.T) {
	svc, _ := newTestService()
	job := postJob(t, svc)
	ctx := context.Background()

	if _, err := svc.SetPrice(ctx, "freelancer-1", job.ID, 10); err != nil {
		t.Fatalf("SetPrice failed: %v", err)
	}
	if _, err := svc.Pay(ctx, "client-1", job.ID); err != nil {
		t.Fatalf("Pay failed: %v", err)
	}

	if err := svc.Delete(ctx, "client-1", job.ID); !errors.Is(err, ErrJobPaid) {
		t.Fatalf("expected ErrJobPaid, got %v", err)
	}
}

func TestDeleteUnpaidJob(t *testing.T) {
	svc, _ := newTestService()
	job := postJob(t, svc)
	ctx := context.Background()

	if err := svc.Delete(ctx, "client-2", job.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for wrong client, got %v", err)
	}
	if err := svc.Delete(ctx, "client-1", job.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound after delete, got %v", err)
	}
}

// A payment that succeeded must survive a release racing it: the final row
// is paid and off PENDING no matter which call wins the job first.
func TestConcurrentPayAndIgnoreNeverLosesPayment(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for round := 0; round < 200; round++ {
		job := postJob(t, svc)
		if _, err := svc.SetPrice(ctx, "freelancer-1", job.ID, 100); err != nil {
			t.Fatalf("SetPrice failed: %v", err)
		}

		var wg sync.WaitGroup
		var payErr, ignoreErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, payErr = svc.Pay(ctx, "client-1", job.ID)
		}()
		go func() {
			defer wg.Done()
			_, ignoreErr = svc.Ignore(ctx, "freelancer-1", job.ID)
		}()
		wg.Wait()

		final, err := svc.Get(ctx, job.ID)
		if err != nil {
			t.Fatalf("round %d: Get failed: %v", round, err)
		}
		if payErr == nil {
			if !final.Paid {
				t.Fatalf("round %d: payment succeeded but job is unpaid (status=%s)", round, final.Status)
			}
			if final.Status == StatusPending {
				t.Fatalf("round %d: payment succeeded but job is PENDING", round)
			}
		}
		if ignoreErr != nil && !errors.Is(ignoreErr, ErrAlreadyPaid) {
			t.Fatalf("round %d: unexpected ignore error: %v", round, ignoreErr)
		}
	}
}

// Paid jobs never show as PENDING, whatever sequence of transitions runs.
func TestPaidNeverPending(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	type step struct {
		name string
		run  func(jobID string) error
	}
	steps := []step{
		{"accept", func(id string) error { _, err := svc.Accept(ctx, "freelancer-1", id); return err }},
		{"ignore", func(id string) error { _, err := svc.Ignore(ctx, "freelancer-1", id); return err }},
		{"pay", func(id string) error { _, err := svc.Pay(ctx, "client-1", id); return err }},
		{"complete", func(id string) error { _, err := svc.Complete(ctx, "freelancer-1", id); return err }},
	}

	// Exercise every ordered pair of transitions after pricing and check the
	// invariant after each step, errors allowed.
	for _, first := range steps {
		for _, second := range steps {
			job := postJob(t, svc)
			if _, err := svc.SetPrice(ctx, "freelancer-1", job.ID, 100); err != nil {
				t.Fatalf("SetPrice failed: %v", err)
			}
			for _, s := range []step{first, second} {
				_ = s.run(job.ID)
				current, err := svc.Get(ctx, job.ID)
				if err != nil {
					t.Fatalf("Get after %s failed: %v", s.name, err)
				}
				if current.Paid && current.Status == StatusPending {
					t.Fatalf("after %s/%s: paid job is PENDING", first.name, second.name)
				}
			}
		}
	}
}
