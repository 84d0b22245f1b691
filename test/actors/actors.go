package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"gigflow/client"
	"gigflow/client/jobs"
	"gigflow/client/session"
)

// Hirer drives the client side through the SDK: posts jobs targeting the
// freelancer, pays quotes as they appear and deletes the occasional unpaid
// job to exercise cleanup. Every acknowledged payment is remembered, and a
// remembered job later listed as unpaid fails the run: payments are never
// rolled back by a competing transition.
func Hirer(ctx context.Context, api *client.Client, freelancerID string, stop <-chan struct{}) error {
	paidJobs := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		if rand.Intn(3) == 0 {
			_, err := api.CreateJob(ctx, client.CreateJobRequest{
				Title:         fmt.Sprintf("stress job %d", rand.Int63()),
				Description:   "generated load",
				EstimatedTime: "2 days",
				FreelancerID:  freelancerID,
			})
			if err != nil && !tolerable(err) {
				return fmt.Errorf("hirer create: %w", err)
			}
		}

		list, err := api.ClientJobs(ctx)
		if err != nil {
			if tolerable(err) {
				continue
			}
			return fmt.Errorf("hirer list: %w", err)
		}
		for _, j := range list {
			if paidJobs[j.ID] && !j.Paid {
				return fmt.Errorf("hirer: payment for job %s reverted (status=%s)", j.ID, j.Status)
			}
			switch {
			case j.Price != nil && !j.Paid && j.Status != client.JobCompleted:
				if _, err := api.PayJob(ctx, j.ID); err == nil {
					paidJobs[j.ID] = true
				} else if !tolerable(err) {
					return fmt.Errorf("hirer pay: %w", err)
				}
			case j.Price == nil && !j.Paid && rand.Intn(20) == 0:
				if err := api.DeleteJob(ctx, j.ID); err != nil && !tolerable(err) {
					return fmt.Errorf("hirer delete: %w", err)
				}
			}
		}

		time.Sleep(time.Duration(10+rand.Intn(30)) * time.Millisecond)
	}
}

// Worker drives the freelancer side: quotes pending jobs, accepts or ignores
// them, and completes active work. Only one Worker runs per freelancer
// identity so earnings accrue from a single writer.
func Worker(ctx context.Context, api *client.Client, freelancerID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		list, err := api.FreelancerJobs(ctx, freelancerID)
		if err != nil {
			if tolerable(err) {
				continue
			}
			return fmt.Errorf("worker list: %w", err)
		}
		for _, j := range list {
			switch {
			case j.Status == client.JobPending && j.Price == nil:
				if _, err := api.SetPrice(ctx, j.ID, 50+rand.Intn(450)); err != nil && !tolerable(err) {
					return fmt.Errorf("worker quote: %w", err)
				}
			case j.Status == client.JobPending && !j.Paid && rand.Intn(10) == 0:
				if _, err := api.IgnoreJob(ctx, j.ID); err != nil && !tolerable(err) {
					return fmt.Errorf("worker ignore: %w", err)
				}
			case j.Status == client.JobPending:
				if _, err := api.AcceptJob(ctx, j.ID); err != nil && !tolerable(err) {
					return fmt.Errorf("worker accept: %w", err)
				}
			case j.Status == client.JobActive && (j.Paid || rand.Intn(5) == 0):
				if _, err := api.CompleteJob(ctx, j.ID); err != nil && !tolerable(err) {
					return fmt.Errorf("worker complete: %w", err)
				}
			}
		}

		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}

// Watcher hammers the polling path of the job model to surface stale
// responses being applied over fresher local state.
func Watcher(ctx context.Context, model *jobs.Model, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		start := model.BeginPoll()
		list, err := model.FetchRemote(ctx)
		if err != nil {
			if tolerable(err) {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return fmt.Errorf("watcher fetch: %w", err)
		}
		model.ApplyPoll(list, start)

		for _, j := range model.Jobs() {
			if j.Paid && j.Status == client.JobPending {
				return fmt.Errorf("watcher: paid job %s observed PENDING", j.ID)
			}
		}

		time.Sleep(time.Duration(10+rand.Intn(40)) * time.Millisecond)
	}
}

// Auditor loops the admin overview and occasionally files fraud reports on
// behalf of the client to keep the report tables moving.
func Auditor(ctx context.Context, admin, reporter *client.Client, reportedID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		if _, err := admin.AdminOverview(ctx); err != nil && !tolerable(err) {
			return fmt.Errorf("auditor overview: %w", err)
		}
		if rand.Intn(10) == 0 {
			err := reporter.ReportFraud(ctx, session.RoleClient, reportedID, "stress report")
			if err != nil && !tolerable(err) {
				return fmt.Errorf("auditor report: %w", err)
			}
		}

		time.Sleep(time.Duration(100+rand.Intn(200)) * time.Millisecond)
	}
}

// tolerable reports whether an error is expected under contention or chaos:
// conflicting transitions answer 4xx and a killed database backend answers
// 5xx. Transport errors and expired sessions fail the actor.
func tolerable(err error) bool {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode != http.StatusUnauthorized
}
