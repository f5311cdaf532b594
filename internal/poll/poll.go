// Package poll provides a poll-until-ready loop with timeout for waiting on
// the session's asynchronous recompute/redraw and on OS clipboard population.
// Fixed sleeps are replaced by a readiness check retried on an interval, so
// timing stays deterministic in tests via an injected sleeper.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when the condition never became ready in time.
var ErrTimeout = errors.New("poll: timed out")

// Condition reports whether the awaited state has been reached. Returning a
// non-nil error aborts the poll immediately.
type Condition func() (ready bool, err error)

// Config controls one poll loop.
type Config struct {
	// Interval between condition checks.
	Interval time.Duration

	// Timeout bounds the whole loop. Zero means a single check.
	Timeout time.Duration

	// Sleep is called between checks; nil means time.Sleep. Tests inject
	// a recording sleeper to keep polls instantaneous.
	Sleep func(time.Duration)
}

// Until checks cond every Interval until it reports ready, an error occurs,
// ctx is cancelled, or Timeout elapses. The first check happens immediately.
func Until(ctx context.Context, cfg Config, cond Condition) error {
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	deadline := time.Now().Add(cfg.Timeout)
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ready, err := cond()
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		if cfg.Timeout <= 0 || !time.Now().Add(cfg.Interval).Before(deadline) {
			return fmt.Errorf("%w after %d attempts", ErrTimeout, attempt+1)
		}
		sleep(cfg.Interval)
	}
}

// Attempts runs cond at most n times with the given delay between tries.
// Used where the bound is a retry count rather than a wall-clock deadline
// (the clipboard population path).
func Attempts(ctx context.Context, n int, delay time.Duration, sleep func(time.Duration), cond Condition) error {
	if sleep == nil {
		sleep = time.Sleep
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ready, err := cond()
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		if i < n-1 {
			sleep(delay)
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrTimeout, n)
}
