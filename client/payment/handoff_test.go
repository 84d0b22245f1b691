package payment

import (
	"context"
	"errors"
	"testing"

	"gigflow/client"
	"gigflow/client/jobs"
	"gigflow/client/session"
)

// payAPI stubs the job API; only PayJob matters here.
type payAPI struct {
	payCalls int
	payErr   error
}

func (a *payAPI) PayJob(_ context.Context, jobID string) (client.Job, error) {
	a.payCalls++
	if a.payErr != nil {
		return client.Job{}, a.payErr
	}
	price := 50
	return client.Job{ID: jobID, Price: &price, Paid: true, Status: client.JobActive}, nil
}

func (a *payAPI) CreateJob(context.Context, client.CreateJobRequest) (client.Job, error) {
	return client.Job{}, nil
}

func (a *payAPI) ClientJobs(context.Context) ([]client.Job, error) { return nil, nil }

func (a *payAPI) FreelancerJobs(context.Context, string) ([]client.Job, error) { return nil, nil }

func (a *payAPI) SetPrice(context.Context, string, int) (client.Job, error) {
	return client.Job{}, nil
}

func (a *payAPI) AcceptJob(context.Context, string) (client.Job, error) { return client.Job{}, nil }

func (a *payAPI) IgnoreJob(context.Context, string) (client.Job, error) { return client.Job{}, nil }

func (a *payAPI) CompleteJob(context.Context, string) (client.Job, error) { return client.Job{}, nil }

func (a *payAPI) DeleteJob(context.Context, string) error { return nil }

func (a *payAPI) ReportFraud(context.Context, session.Role, string, string) error { return nil }

// fakeGateway records the checkout it was opened with.
type fakeGateway struct {
	outcome  Outcome
	err      error
	checkout Checkout
	opens    int
}

func (g *fakeGateway) Open(_ context.Context, checkout Checkout) (Outcome, error) {
	g.opens++
	g.checkout = checkout
	if g.err != nil {
		return OutcomeDismissed, g.err
	}
	return g.outcome, nil
}

func pricedJob(price int) client.Job {
	return client.Job{ID: "job-1", Price: &price, Status: client.JobPending}
}

func newHandoff(gateway Gateway, api *payAPI) *Handoff {
	loader := func(context.Context) (Gateway, error) { return gateway, nil }
	return NewHandoff(loader, jobs.NewModel(api, session.RoleClient, "client-1"))
}

func TestUnpricedJobRejected(t *testing.T) {
	gateway := &fakeGateway{outcome: OutcomeSuccess}
	api := &payAPI{}
	h := newHandoff(gateway, api)

	_, err := h.Initiate(context.Background(), client.Job{ID: "job-1"})
	if !errors.Is(err, ErrUnpriced) {
		t.Fatalf("expected ErrUnpriced, got %v", err)
	}
	if gateway.opens != 0 || api.payCalls != 0 {
		t.Fatal("unpriced job must not reach the gateway or the server")
	}
}

func TestPaidJobRejected(t *testing.T) {
	gateway := &fakeGateway{outcome: OutcomeSuccess}
	api := &payAPI{}
	h := newHandoff(gateway, api)

	job := pricedJob(50)
	job.Paid = true
	job.Status = client.JobActive

	if _, err := h.Initiate(context.Background(), job); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
	if gateway.opens != 0 {
		t.Fatal("paid job must not reach the gateway")
	}
}

func TestLoadFailureBlocksButIsRetryable(t *testing.T) {
	api := &payAPI{}
	gateway := &fakeGateway{outcome: OutcomeSuccess}

	loads := 0
	fail := true
	loader := func(context.Context) (Gateway, error) {
		loads++
		if fail {
			return nil, errors.New("script blocked")
		}
		return gateway, nil
	}
	h := NewHandoff(loader, jobs.NewModel(api, session.RoleClient, "client-1"))

	if _, err := h.Initiate(context.Background(), pricedJob(50)); !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	if api.payCalls != 0 {
		t.Fatal("blocked initiation must not pay")
	}

	// The failure is not sticky: the next initiation loads again.
	fail = false
	outcome, err := h.Initiate(context.Background(), pricedJob(50))
	if err != nil {
		t.Fatalf("retry after load failure: %v", err)
	}
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %v", outcome)
	}
	if loads != 2 {
		t.Fatalf("expected 2 load attempts, got %d", loads)
	}

	// A loaded gateway is reused, not reloaded.
	if _, err := h.Initiate(context.Background(), pricedJob(20)); err != nil {
		t.Fatalf("third initiation: %v", err)
	}
	if loads != 2 {
		t.Fatalf("gateway should be cached after a successful load, loads=%d", loads)
	}
}

func TestSuccessPaysJobWithCheckoutDetails(t *testing.T) {
	gateway := &fakeGateway{outcome: OutcomeSuccess}
	api := &payAPI{}
	h := newHandoff(gateway, api)

	outcome, err := h.Initiate(context.Background(), pricedJob(50))
	if err != nil {
		t.Fatalf("Initiate failed: %v", err)
	}
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %v", outcome)
	}
	if api.payCalls != 1 {
		t.Fatalf("expected 1 pay call, got %d", api.payCalls)
	}

	if gateway.checkout.AmountSubunits != 5000 {
		t.Errorf("expected 5000 subunits for price 50, got %d", gateway.checkout.AmountSubunits)
	}
	if gateway.checkout.Currency != Currency {
		t.Errorf("unexpected currency %q", gateway.checkout.Currency)
	}
	if gateway.checkout.Notes["jobId"] != "job-1" {
		t.Errorf("job id missing from checkout notes: %v", gateway.checkout.Notes)
	}
	if gateway.checkout.ReceiptID == "" {
		t.Error("receipt id should be set")
	}
}

func TestDismissalAndFailureDoNotPay(t *testing.T) {
	for _, outcome := range []Outcome{OutcomeDismissed, OutcomeFailed} {
		gateway := &fakeGateway{outcome: outcome}
		api := &payAPI{}
		h := newHandoff(gateway, api)

		got, err := h.Initiate(context.Background(), pricedJob(50))
		if err != nil {
			t.Fatalf("Initiate failed: %v", err)
		}
		if got != outcome {
			t.Fatalf("expected %v, got %v", outcome, got)
		}
		if api.payCalls != 0 {
			t.Fatal("non-success outcome must not trigger pay")
		}
	}
}
