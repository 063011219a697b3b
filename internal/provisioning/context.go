package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/metrics"
	"github.com/imamik/kbstack/internal/platform/aoss"
	"github.com/imamik/kbstack/internal/platform/bedrock"
	"github.com/imamik/kbstack/internal/platform/iam"
	"github.com/imamik/kbstack/internal/platform/s3"
	"github.com/imamik/kbstack/internal/util/poll"
)

// Clients bundles the service clients one run talks to.
type Clients struct {
	Storage        s3.ObjectStore
	Identity       iam.IdentityManager
	Collections    aoss.CollectionManager
	Indexes        aoss.IndexManager
	KnowledgeBases bedrock.KnowledgeBaseManager
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config   *config.Config
	Clients  Clients
	State    *State
	Ledger   *Ledger
	Observer Observer
	Timeouts *config.Timeouts

	// Sleep is used by settle steps.
	Sleep SleepFunc
}

// NewContext creates a new provisioning context.
func NewContext(ctx context.Context, cfg *config.Config, clients Clients, state *State) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Clients:  clients,
		State:    state,
		Ledger:   NewLedger(),
		Observer: NewConsoleObserver(),
		Timeouts: config.LoadTimeouts(),
		Sleep:    Sleep,
	}
}

// Sleep waits for d, returning early with ctx.Err() if ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Record appends a created resource to the ledger and reports it.
func (c *Context) Record(phase string, r Resource) {
	c.Ledger.Record(r)
	id := r.ID
	if id == "" {
		id = r.Name
	}
	LogResourceCreated(c.Observer, phase, r.Kind, r.Name, id)
}

// Settle waits for eventually consistent changes to propagate.
// The wait is never shorter than minimum.
func (c *Context) Settle(phase, reason string, d, minimum time.Duration) error {
	if d < minimum {
		d = minimum
	}
	LogSettle(c.Observer, phase, reason, d)
	sleep := c.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	if err := sleep(c, d); err != nil {
		return fmt.Errorf("interrupted while waiting for %s: %w", reason, err)
	}
	return nil
}

// Wait polls check until the resource is ready, failed or the ceiling elapses.
// Every attempt is reported to the observer and counted in metrics.
func (c *Context) Wait(phase, resource string, interval, ceiling time.Duration, check poll.CheckFunc) (*poll.Result, error) {
	jitter := 0.0
	if c.Timeouts != nil {
		jitter = c.Timeouts.PollJitter
	}
	result, err := poll.Until(c, check,
		poll.WithResource(resource),
		poll.WithInterval(interval),
		poll.WithTimeout(ceiling),
		poll.WithJitter(jitter),
		poll.WithObserver(func(attempt int, s poll.Status) {
			metrics.RecordPollAttempt(phase)
			if s.State == poll.Pending {
				LogPolling(c.Observer, phase, resource, s.Raw, attempt)
			}
		}),
	)
	if result != nil {
		metrics.RecordPollOutcome(phase, string(result.Outcome))
	}
	return result, err
}
