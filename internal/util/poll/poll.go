package poll

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// State is the normalized state of a polled resource.
type State int

const (
	// Pending means the resource has not reached a terminal state.
	Pending State = iota
	// Ready means the resource reached its ready state.
	Ready
	// Failed means the resource reached a terminal failure state.
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is one observation of a remote resource.
type Status struct {
	State  State
	Raw    string // status as reported by the remote API, e.g. "CREATING"
	Detail string // failure reasons, if the API exposes them
}

// CheckFunc reads the current status of a resource. A non-nil error is a
// request error and ends the wait immediately.
type CheckFunc func(ctx context.Context) (Status, error)

// Outcome is the terminal result of a wait.
type Outcome string

const (
	OutcomeReady    Outcome = "ready"
	OutcomeFailed   Outcome = "failed"
	OutcomeTimedOut Outcome = "timed_out"
	OutcomeError    Outcome = "error"
)

// Result describes how a wait ended.
type Result struct {
	Outcome Outcome
	Last    Status
	Polls   int
	Elapsed time.Duration
}

var (
	// ErrFailed is matched by errors from resources that reported a failure state.
	ErrFailed = errors.New("resource reported a failed state")
	// ErrTimeout is matched by errors from waits that exceeded their ceiling.
	ErrTimeout = errors.New("timed out waiting for resource")
)

// FailedError is returned when the resource reports a terminal failure.
type FailedError struct {
	Resource string
	Status   Status
}

func (e *FailedError) Error() string {
	msg := fmt.Sprintf("%s reached status %s", e.Resource, e.Status.Raw)
	if e.Status.Detail != "" {
		msg += ": " + e.Status.Detail
	}
	return msg
}

func (e *FailedError) Unwrap() error { return ErrFailed }

// TimeoutError is returned when the ceiling elapses before a terminal state.
type TimeoutError struct {
	Resource string
	Timeout  time.Duration
	Last     Status
	Polls    int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s not ready after %v (%d polls, last status %q)", e.Resource, e.Timeout, e.Polls, e.Last.Raw)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// Config holds poll configuration.
type Config struct {
	Resource string
	Interval time.Duration
	Timeout  time.Duration
	Jitter   float64
	OnPoll   func(attempt int, s Status)
}

// Option is a functional option for poll configuration.
type Option func(*Config)

// WithResource names the resource in errors and callbacks.
func WithResource(name string) Option {
	return func(c *Config) { c.Resource = name }
}

// WithInterval sets the delay between checks.
func WithInterval(d time.Duration) Option {
	return func(c *Config) { c.Interval = d }
}

// WithTimeout sets the ceiling for the whole wait.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithJitter spreads each interval by up to ±fraction of its length.
func WithJitter(fraction float64) Option {
	return func(c *Config) { c.Jitter = fraction }
}

// WithObserver registers a callback invoked after every check.
func WithObserver(fn func(attempt int, s Status)) Option {
	return func(c *Config) { c.OnPoll = fn }
}

// Until checks the resource immediately and then once per interval until it
// is Ready, Failed, the ceiling elapses or ctx is done.
func Until(ctx context.Context, check CheckFunc, opts ...Option) (*Result, error) {
	cfg := &Config{
		Resource: "resource",
		Interval: 5 * time.Second,
		Timeout:  10 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	start := time.Now()
	deadline := start.Add(cfg.Timeout)
	result := &Result{}

	// A check that hangs must not outlive the ceiling.
	cctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for {
		status, err := check(cctx)
		result.Polls++
		result.Elapsed = time.Since(start)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				result.Outcome = OutcomeTimedOut
				return result, &TimeoutError{Resource: cfg.Resource, Timeout: cfg.Timeout, Last: result.Last, Polls: result.Polls}
			}
			result.Outcome = OutcomeError
			return result, fmt.Errorf("failed to check %s: %w", cfg.Resource, err)
		}
		result.Last = status

		if cfg.OnPoll != nil {
			cfg.OnPoll(result.Polls, status)
		}

		switch status.State {
		case Ready:
			result.Outcome = OutcomeReady
			return result, nil
		case Failed:
			result.Outcome = OutcomeFailed
			return result, &FailedError{Resource: cfg.Resource, Status: status}
		}

		wait := cfg.nextDelay()
		if time.Now().Add(wait).After(deadline) {
			result.Outcome = OutcomeTimedOut
			return result, &TimeoutError{Resource: cfg.Resource, Timeout: cfg.Timeout, Last: status, Polls: result.Polls}
		}

		select {
		case <-ctx.Done():
			result.Outcome = OutcomeError
			return result, fmt.Errorf("context cancelled after %d polls of %s: %w", result.Polls, cfg.Resource, ctx.Err())
		case <-time.After(wait):
		}
	}
}

// maxJitter keeps every delay positive.
const maxJitter = 0.99

func (c *Config) nextDelay() time.Duration {
	if c.Jitter <= 0 {
		return c.Interval
	}
	spread := float64(c.Interval) * min(c.Jitter, maxJitter)
	return c.Interval + time.Duration((rand.Float64()*2-1)*spread)
}
