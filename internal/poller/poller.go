// Package poller waits for an asynchronous Systems Manager status to reach
// Success.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dbsmedya/getversions/internal/config"
	"github.com/dbsmedya/getversions/internal/logger"
)

// ErrPollTimeout is returned when the deadline or attempt limit runs out
// before Success is observed.
var ErrPollTimeout = errors.New("poll timeout exceeded")

// DefaultInterval is used when no positive interval is configured.
const DefaultInterval = 2 * time.Second

// StatusFunc reads the current status. It only observes state.
type StatusFunc func(ctx context.Context) (Status, error)

// Options bounds a wait. Zero Timeout and MaxAttempts mean unbounded.
type Options struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

// Poller polls a StatusFunc until it reports Success.
type Poller struct {
	interval    time.Duration
	timeout     time.Duration
	maxAttempts int
	logger      *logger.Logger
}

// New creates a Poller. A nil logger gets the default logger.
func New(opts Options, log *logger.Logger) *Poller {
	if log == nil {
		log = logger.NewDefault()
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Poller{
		interval:    interval,
		timeout:     opts.Timeout,
		maxAttempts: opts.MaxAttempts,
		logger:      log,
	}
}

// FromConfig creates a Poller from the polling section of the config.
func FromConfig(cfg config.PollingConfig, log *logger.Logger) *Poller {
	return New(Options{
		Interval:    cfg.Interval(),
		Timeout:     cfg.Timeout(),
		MaxAttempts: cfg.MaxAttempts,
	}, log)
}

// Interval returns the configured poll interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// WaitForSuccess calls status until it returns StatusSuccess, sleeping the
// poll interval between calls. Each non-success observation is logged
// once. Errors from status are returned as-is. ErrPollTimeout is returned
// when the deadline or attempt limit is exhausted, and the context error
// when ctx is cancelled by the caller.
func (p *Poller) WaitForSuccess(ctx context.Context, status StatusFunc) error {
	waitCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	last := StatusPending
	for attempt := 1; ; attempt++ {
		if err := waitCtx.Err(); err != nil {
			return p.stopped(ctx, err, last, attempt-1)
		}

		st, err := status(waitCtx)
		if err != nil {
			if waitCtx.Err() != nil && ctx.Err() == nil {
				return p.stopped(ctx, waitCtx.Err(), last, attempt)
			}
			return err
		}
		last = st

		if st == StatusSuccess {
			p.logger.Debugw("Status reached Success", "attempts", attempt)
			return nil
		}

		if st.Terminal() {
			p.logger.Warnw("Waiting for successful status", "status", st, "attempt", attempt)
		} else {
			p.logger.Infow("Waiting for successful status", "status", st, "attempt", attempt)
		}

		if p.maxAttempts > 0 && attempt >= p.maxAttempts {
			return fmt.Errorf("%w: status %s after %d attempts", ErrPollTimeout, st, attempt)
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			return p.stopped(ctx, waitCtx.Err(), last, attempt)
		case <-timer.C:
		}
	}
}

// stopped maps a done context onto the error returned to the caller. Our
// own deadline becomes ErrPollTimeout; caller cancellation passes through.
func (p *Poller) stopped(parent context.Context, err error, last Status, attempts int) error {
	if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: status %s after %s (%d attempts)", ErrPollTimeout, last, p.timeout, attempts)
	}
	return fmt.Errorf("wait for success cancelled: %w", err)
}
