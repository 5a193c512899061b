package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// Condition is evaluated on every poll. An error counts as "not yet" and is
// kept as the cause if the wait times out.
type Condition func(ctx context.Context) (bool, error)

// WaitSpec bounds a single wait.
type WaitSpec struct {
	Timeout  time.Duration
	Interval time.Duration
	// MinDelay is slept before the first poll, for UI that may or may not
	// appear shortly after an action.
	MinDelay time.Duration
}

// WaitOption overrides a WaitSpec field for one call.
type WaitOption func(*WaitSpec)

func WithTimeout(d time.Duration) WaitOption  { return func(s *WaitSpec) { s.Timeout = d } }
func WithInterval(d time.Duration) WaitOption { return func(s *WaitSpec) { s.Interval = d } }
func WithMinDelay(d time.Duration) WaitOption { return func(s *WaitSpec) { s.MinDelay = d } }

func (s WaitSpec) apply(opts []WaitOption) WaitSpec {
	for _, o := range opts {
		o(&s)
	}
	if s.Interval <= 0 {
		s.Interval = DefaultPollInterval
	}
	if s.Timeout < 0 {
		s.Timeout = 0
	}
	return s
}

// Waiter polls conditions with session-wide defaults.
type Waiter struct {
	defaults WaitSpec
	metrics  *Metrics
}

// NewWaiter creates a waiter. Zero fields in defaults fall back to the
// package defaults.
func NewWaiter(defaults WaitSpec, m *Metrics) *Waiter {
	if defaults.Timeout == 0 {
		defaults.Timeout = DefaultWaitTimeout
	}
	if defaults.Interval == 0 {
		defaults.Interval = DefaultPollInterval
	}
	return &Waiter{defaults: defaults, metrics: m}
}

// Defaults returns the waiter's default spec.
func (w *Waiter) Defaults() WaitSpec { return w.defaults }

// WaitUntil polls cond until it holds or the timeout elapses. The last poll
// happens at the deadline, so a condition that becomes true just before it
// is still observed.
func (w *Waiter) WaitUntil(ctx context.Context, cond Condition, opts ...WaitOption) error {
	spec := w.defaults.apply(opts)
	start := time.Now()
	err := poll(ctx, cond, spec)
	w.metrics.observeWait(err, time.Since(start))
	return err
}

// WaitUntil polls cond with the package defaults.
func WaitUntil(ctx context.Context, cond Condition, opts ...WaitOption) error {
	spec := WaitSpec{Timeout: DefaultWaitTimeout, Interval: DefaultPollInterval}.apply(opts)
	return poll(ctx, cond, spec)
}

func poll(ctx context.Context, cond Condition, spec WaitSpec) error {
	if spec.MinDelay > 0 {
		if err := sleep(ctx, spec.MinDelay); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(spec.Timeout)
	polls := 0
	var last error
	for {
		polls++
		ok, err := cond(ctx)
		if ok {
			return nil
		}
		if err != nil {
			last = err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return newError(ErrTimedOut, "wait", "", "",
				timeoutCause(spec.Timeout, polls, last))
		}
		step := spec.Interval
		if step > remaining {
			step = remaining
		}
		if err := sleep(ctx, step); err != nil {
			return err
		}
	}
}

func timeoutCause(timeout time.Duration, polls int, last error) error {
	if last != nil {
		return fmt.Errorf("condition not met after %s (%d polls): %w", timeout, polls, last)
	}
	return fmt.Errorf("condition not met after %s (%d polls)", timeout, polls)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryPolicy bounds a self-healing retry loop.
type RetryPolicy struct {
	MaxAttempts  int
	Backoff      time.Duration
	InitialDelay time.Duration
}

// Attempt returns true when it succeeded, false to try again.
type Attempt func(ctx context.Context, n int) (bool, error)

// Retry runs fn up to MaxAttempts times, sleeping Backoff between attempts.
// An error from fn aborts immediately. Running out of attempts returns
// ErrRetriesExhausted and leaves the decision to the caller.
func Retry(ctx context.Context, p RetryPolicy, fn Attempt) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Backoff <= 0 {
		p.Backoff = time.Millisecond
	}
	if p.InitialDelay > 0 {
		if err := sleep(ctx, p.InitialDelay); err != nil {
			return err
		}
	}

	errNotYet := errors.New("not yet")
	n := 0
	b := retry.WithMaxRetries(uint64(p.MaxAttempts-1), retry.NewConstant(p.Backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		n++
		ok, err := fn(ctx, n)
		if err != nil {
			return err
		}
		if !ok {
			return retry.RetryableError(errNotYet)
		}
		return nil
	})
	if errors.Is(err, errNotYet) {
		return newError(ErrRetriesExhausted, "retry", "", "",
			fmt.Errorf("gave up after %d attempts", n))
	}
	return err
}
