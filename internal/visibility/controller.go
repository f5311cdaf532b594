// Package visibility transactionally mutates the session's per-ray
// visibility for one band and guarantees restoration of full visibility at
// run end, whatever the outcome.
package visibility

import (
	"context"
	"log/slog"
	"time"

	"raybands/internal/logging"
	"raybands/internal/poll"
	"raybands/internal/session"
)

// State of the controller across one analysis run.
type State int

const (
	Idle State = iota
	UpdatesSuspended
	BandApplied
	RestoredVisible // terminal
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case UpdatesSuspended:
		return "updates-suspended"
	case BandApplied:
		return "band-applied"
	case RestoredVisible:
		return "restored-visible"
	}
	return "unknown"
}

// Controller drives the session's visibility state. Per-ray set calls are
// best-effort: a non-zero status is logged and counted, never fatal. The
// suspend/resume pair exists because toggling rays one at a time with live
// redraw is orders of magnitude slower than batching.
type Controller struct {
	log   *slog.Logger
	state State

	settleInterval time.Duration
	settleTimeout  time.Duration
	sleep          func(time.Duration)

	// SetFailures counts best-effort set calls that returned non-zero
	// since the controller was created.
	SetFailures int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithSettle overrides the post-recompute settle poll cadence and bound.
func WithSettle(interval, timeout time.Duration) Option {
	return func(c *Controller) {
		c.settleInterval = interval
		c.settleTimeout = timeout
	}
}

// WithSleeper injects the sleep function used by the settle poll.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(c *Controller) { c.sleep = sleep }
}

// New returns an idle Controller.
func New(opts ...Option) *Controller {
	c := &Controller{
		log:            logging.Discard(),
		settleInterval: 100 * time.Millisecond,
		settleTimeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the controller's current state.
func (c *Controller) State() State { return c.state }

func (c *Controller) setVisible(h session.Handle, index int, visible bool) {
	st := h.Set(session.KeyRayPaths, session.PropVisibleAt, session.Bool(visible), index)
	if !st.OK() {
		c.SetFailures++
		c.log.Warn("set visibility failed", "index", index, "visible", visible, "status", st.String())
	}
}

// ApplyBand performs the batch mutation for one band: suspend automatic
// recomputation, hide every ray in universe, show every member, resume,
// force one recompute, then wait for the session's asynchronous render
// pipeline to settle. The settle wait is a synchronization point, not a
// courtesy: captures taken before it see a stale view.
func (c *Controller) ApplyBand(ctx context.Context, h session.Handle, universe, members []int) error {
	if st := h.Set(session.KeyRayPaths, session.PropAutoUpdate, session.Bool(false)); !st.OK() {
		c.SetFailures++
		c.log.Warn("suspend updates failed", "status", st.String())
	}
	c.state = UpdatesSuspended

	for _, idx := range universe {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.setVisible(h, idx, false)
	}
	for _, idx := range members {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.setVisible(h, idx, true)
	}
	c.state = BandApplied

	c.resumeAndRecompute(h)
	return c.settle(ctx, h)
}

// RestoreAll unconditionally makes every ray in universe visible again,
// resumes updates, and forces a recompute. Idempotent; the orchestrator
// defers it so the mutation made by ApplyBand is always undone — on
// success, cancellation, and every failure class alike.
func (c *Controller) RestoreAll(h session.Handle, universe []int) {
	for _, idx := range universe {
		c.setVisible(h, idx, true)
	}
	c.resumeAndRecompute(h)
	c.state = RestoredVisible
}

func (c *Controller) resumeAndRecompute(h session.Handle) {
	if st := h.Set(session.KeyRayPaths, session.PropAutoUpdate, session.Bool(true)); !st.OK() {
		c.SetFailures++
		c.log.Warn("resume updates failed", "status", st.String())
	}
	if st := h.Command(session.CmdRecompute); !st.OK() {
		c.SetFailures++
		c.log.Warn("recompute failed", "status", st.String())
	}
}

// settle polls the session's view-ready flag until the render pipeline has
// caught up with the recompute. Sessions predating the readiness property
// report it as unknown; that is treated as ready after one interval.
func (c *Controller) settle(ctx context.Context, h session.Handle) error {
	supported := true
	err := poll.Until(ctx, poll.Config{Interval: c.settleInterval, Timeout: c.settleTimeout, Sleep: c.sleep}, func() (bool, error) {
		v, st := h.Get(session.KeyRayPaths, session.PropViewReady)
		if !st.OK() {
			supported = false
			return true, nil
		}
		ready, ok := v.Bool()
		return ok && ready, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("view never settled", "error", err)
		return nil
	}
	if !supported {
		// Fall back to one fixed pause for sessions without ViewReady.
		sleep := c.sleep
		if sleep == nil {
			sleep = time.Sleep
		}
		sleep(c.settleInterval)
	}
	return nil
}
