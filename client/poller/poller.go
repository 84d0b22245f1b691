// Package poller keeps a dashboard's job list fresh: an initial fetch, then
// fixed-interval refreshes for as long as the view is mounted.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gigflow/client"
	"gigflow/client/jobs"
	"gigflow/client/session"
)

const (
	// DefaultClientInterval is the client dashboard refresh interval.
	DefaultClientInterval = 5 * time.Second
	// DefaultFreelancerInterval is the freelancer dashboard refresh interval.
	DefaultFreelancerInterval = 30 * time.Second
)

// ErrSessionRequired signals a poller started without a usable session.
var ErrSessionRequired = errors.New("poller: no session for role")

// IntervalFor returns the default refresh interval for a role.
func IntervalFor(role session.Role) time.Duration {
	if role == session.RoleFreelancer {
		return DefaultFreelancerInterval
	}
	return DefaultClientInterval
}

// Config wires a poller to one dashboard.
type Config struct {
	Sessions session.Store
	Model    *jobs.Model
	Role     session.Role
	// Interval defaults to the role's standard interval when zero.
	Interval time.Duration
	// OnAuthExpired runs after a fetch is rejected as unauthenticated and
	// the session slot has been cleared. The loop stops afterwards.
	OnAuthExpired func()
	// OnError receives transient fetch failures; the loop continues.
	OnError func(error)
	Logger  *slog.Logger
}

// Poller drives one dashboard's polling loop.
type Poller struct {
	cfg Config
}

// New validates the wiring and returns a poller.
func New(cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = IntervalFor(cfg.Role)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Poller{cfg: cfg}
}

// Run polls until ctx is cancelled or the session expires. It refuses to
// start without a session token (and, for freelancers, an identity id),
// returning ErrSessionRequired.
//
// Fetches run synchronously inside the loop, so a slow response cannot
// overlap the next one; ticks that fire mid-fetch are dropped. A sequence
// snapshot around each fetch discards responses that raced a local
// mutation.
func (p *Poller) Run(ctx context.Context) error {
	sess, ok := p.cfg.Sessions.Get(p.cfg.Role)
	if !ok || sess.Token == "" {
		return ErrSessionRequired
	}
	if p.cfg.Role == session.RoleFreelancer && sess.IdentityID == "" {
		return ErrSessionRequired
	}

	log := p.cfg.Logger.With("role", string(p.cfg.Role))
	log.Info("poller started", "interval", p.cfg.Interval)

	if stop := p.fetch(ctx, log); stop {
		return nil
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("poller stopped")
			return ctx.Err()
		case <-ticker.C:
			if stop := p.fetch(ctx, log); stop {
				return nil
			}
		}
	}
}

// fetch runs one poll cycle. Reports true when the loop should stop.
func (p *Poller) fetch(ctx context.Context, log *slog.Logger) bool {
	seq := p.cfg.Model.BeginPoll()
	list, err := p.cfg.Model.FetchRemote(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// A cancellation-induced failure is not an error condition; the
			// response is simply discarded.
			return false
		}
		if client.IsAuthError(err) {
			log.Warn("session expired, stopping poller")
			_ = p.cfg.Sessions.Clear(p.cfg.Role)
			if p.cfg.OnAuthExpired != nil {
				p.cfg.OnAuthExpired()
			}
			return true
		}
		log.Warn("poll fetch failed", "error", err)
		if p.cfg.OnError != nil {
			p.cfg.OnError(err)
		}
		return false
	}

	if !p.cfg.Model.ApplyPoll(list, seq) {
		log.Debug("discarded stale poll response")
	}
	return false
}
