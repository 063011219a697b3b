package provisioning

import (
	"context"
	"testing"
	"time"

	"github.com/imamik/kbstack/internal/config"
	"github.com/imamik/kbstack/internal/util/naming"
)

// phaseFunc adapts a function into a Phase for testing.
type phaseFunc struct {
	name     string
	requires []Key
	provides []Key
	fn       func(*Context) error
}

func (p *phaseFunc) Name() string                 { return p.name }
func (p *phaseFunc) Requires() []Key              { return p.requires }
func (p *phaseFunc) Provides() []Key              { return p.provides }
func (p *phaseFunc) Provision(ctx *Context) error { return p.fn(ctx) }

func testTimeouts() *config.Timeouts {
	return &config.Timeouts{
		CollectionPoll:    time.Millisecond,
		Collection:        50 * time.Millisecond,
		KnowledgeBasePoll: time.Millisecond,
		KnowledgeBase:     50 * time.Millisecond,
		IngestionPoll:     time.Millisecond,
		Ingestion:         50 * time.Millisecond,
		PolicySettle:      config.MinPolicySettle,
		IndexSettle:       config.MinIndexSettle,
		Delete:            time.Second,
		RetryMaxAttempts:  1,
		RetryInitialDelay: time.Millisecond,
	}
}

func newTestContext(t *testing.T) (*Context, *RecordingObserver, *[]time.Duration) {
	t.Helper()
	obs := NewRecordingObserver()
	var slept []time.Duration
	ctx := &Context{
		Context:  context.Background(),
		Config:   config.Default(),
		State:    NewState("us-east-1", "123456789012", "arn:aws:iam::123456789012:user/test", naming.New("kb", "abc123")),
		Ledger:   NewLedger(),
		Observer: obs,
		Timeouts: testTimeouts(),
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}
	return ctx, obs, &slept
}
