// Package capture grabs a rendered view of the session through the OS
// clipboard. The platform image buffer populates asynchronously after the
// copy command, so the grab is retried a small fixed number of times with
// short delays before failing.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"raybands/internal/logging"
	"raybands/internal/poll"
	"raybands/internal/session"
)

// Typed capture failures.
var (
	ErrNoImage           = errors.New("capture: no image available")
	ErrUnsupportedFormat = errors.New("capture: clipboard format unsupported")
)

// Grabber reads the current platform clipboard image. Implementations are
// OS-specific and live outside this package; tests use fakes. A grabber
// returns ErrNoImage while the buffer is still populating.
type Grabber interface {
	Grab() (image.Image, error)
}

// GrabberFunc adapts a function to the Grabber interface.
type GrabberFunc func() (image.Image, error)

func (f GrabberFunc) Grab() (image.Image, error) { return f() }

// Adapter triggers the session's copy-view command and polls the grabber
// until the clipboard holds the image.
type Adapter struct {
	grabber  Grabber
	log      *slog.Logger
	attempts int
	delay    time.Duration
	sleep    func(time.Duration)
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// WithRetry overrides the clipboard retry bound and delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(a *Adapter) {
		a.attempts = attempts
		a.delay = delay
	}
}

// WithSleeper injects the sleep function used between retries.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(a *Adapter) { a.sleep = sleep }
}

// New returns an Adapter reading images from g.
func New(g Grabber, opts ...Option) *Adapter {
	a := &Adapter{
		grabber:  g,
		log:      logging.Discard(),
		attempts: 5,
		delay:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Capture commands the session to copy the current view to the clipboard,
// then polls the grabber until an image with queryable dimensions appears.
// ErrUnsupportedFormat aborts immediately; ErrNoImage keeps polling until
// the retry bound.
func (a *Adapter) Capture(ctx context.Context, h session.Handle) (image.Image, error) {
	if st := h.Command(session.CmdCopyView); !st.OK() {
		return nil, st.Err("command", session.CmdCopyView)
	}

	var img image.Image
	err := poll.Attempts(ctx, a.attempts, a.delay, a.sleep, func() (bool, error) {
		got, err := a.grabber.Grab()
		switch {
		case errors.Is(err, ErrNoImage):
			a.log.Debug("clipboard not populated yet")
			return false, nil
		case err != nil:
			return false, err
		}
		// Dimensions may not be queryable immediately after the copy.
		if got == nil || got.Bounds().Empty() {
			return false, nil
		}
		img = got
		return true, nil
	})
	if err != nil {
		if errors.Is(err, poll.ErrTimeout) {
			return nil, fmt.Errorf("%w: %v", ErrNoImage, err)
		}
		return nil, err
	}
	return img, nil
}
