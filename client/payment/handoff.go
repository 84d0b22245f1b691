// Package payment bridges priced-unpaid jobs to an external checkout
// gateway and feeds the outcome back into the job lifecycle.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"gigflow/client"
	"gigflow/client/jobs"
)

// Currency is the platform's settlement currency.
const Currency = "INR"

var (
	// ErrGatewayUnavailable signals that the checkout gateway could not be
	// loaded. Retryable; the next initiation attempts the load again.
	ErrGatewayUnavailable = errors.New("payment: checkout gateway unavailable")
	// ErrUnpriced signals payment initiation on a job without a quote.
	ErrUnpriced = errors.New("payment: job has no price")
	// ErrAlreadyPaid signals payment initiation on an already paid job.
	ErrAlreadyPaid = errors.New("payment: job already paid")
)

// Outcome is the checkout widget's verdict.
type Outcome int

const (
	// OutcomeDismissed means the user closed the widget without paying.
	OutcomeDismissed Outcome = iota
	// OutcomeSuccess means the payment went through.
	OutcomeSuccess
	// OutcomeFailed means the payment was attempted and declined.
	OutcomeFailed
)

// Checkout describes one payment to the gateway. Amount is in integer
// currency subunits; the job id travels as correlation metadata.
type Checkout struct {
	AmountSubunits int
	Currency       string
	ReceiptID      string
	Notes          map[string]string
}

// Gateway is the external checkout capability. Open blocks until the user
// finishes or dismisses the widget.
type Gateway interface {
	Open(ctx context.Context, checkout Checkout) (Outcome, error)
}

// Loader produces a Gateway, the analogue of injecting the checkout script.
type Loader func(ctx context.Context) (Gateway, error)

// Handoff initiates payments for priced jobs. The gateway loads lazily on
// first use; a load failure blocks that initiation but is retried on the
// next one.
type Handoff struct {
	loader Loader
	model  *jobs.Model

	mu      sync.Mutex
	gateway Gateway
}

// NewHandoff creates a payment handoff over a job model.
func NewHandoff(loader Loader, model *jobs.Model) *Handoff {
	return &Handoff{loader: loader, model: model}
}

// Initiate opens the checkout widget for a priced, unpaid job. On success
// the job lifecycle's pay transition runs; on failure or dismissal nothing
// changes and the job stays eligible for retry.
func (h *Handoff) Initiate(ctx context.Context, job client.Job) (Outcome, error) {
	if job.Price == nil {
		return OutcomeDismissed, ErrUnpriced
	}
	if job.Paid {
		return OutcomeDismissed, ErrAlreadyPaid
	}

	gateway, err := h.ensureGateway(ctx)
	if err != nil {
		return OutcomeDismissed, err
	}

	checkout := Checkout{
		AmountSubunits: *job.Price * 100,
		Currency:       Currency,
		ReceiptID:      uuid.NewString(),
		Notes:          map[string]string{"jobId": job.ID},
	}

	outcome, err := gateway.Open(ctx, checkout)
	if err != nil {
		return OutcomeDismissed, fmt.Errorf("payment: open checkout: %w", err)
	}
	if outcome != OutcomeSuccess {
		return outcome, nil
	}

	if _, err := h.model.Pay(ctx, job.ID); err != nil {
		return outcome, fmt.Errorf("payment: record payment: %w", err)
	}
	return OutcomeSuccess, nil
}

// ensureGateway loads the gateway once and reuses it. Failures are not
// cached; a later call loads again.
func (h *Handoff) ensureGateway(ctx context.Context) (Gateway, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gateway != nil {
		return h.gateway, nil
	}
	gateway, err := h.loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	h.gateway = gateway
	return gateway, nil
}
