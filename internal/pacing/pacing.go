// internal/pacing/pacing.go
//
// Inter-turn delay control. Timed pacing counts down in one-second steps
// and reports each second to the host; manual pacing emits a single
// awaiting tick and blocks until the host advances. Both behaviors return
// promptly on cancellation using channel selects rather than polling.

package pacing

import (
	"context"
	"time"

	"github.com/mirokim/Onion-ring/internal/session"
)

// ManualSentinel is reported through Host.PacingTick when the controller is
// waiting on a manual advance instead of a countdown second.
const ManualSentinel = -1

// Host is the slice of the engine observer the controller talks to.
type Host interface {
	// PacingTick reports seconds remaining, or ManualSentinel while waiting
	// for a manual advance.
	PacingTick(seconds int)
	// AwaitAdvance blocks until the host signals the next turn may start.
	AwaitAdvance(ctx context.Context) error
}

// HoldFunc blocks while the session is paused, returning the context error
// if cancellation arrives first. The engine supplies its pause gate here so
// a timed countdown suspends mid-count when the host pauses.
type HoldFunc func(ctx context.Context) error

// Controller applies pacing between turns. The zero value uses real
// one-second steps; tests shrink Interval.
type Controller struct {
	// Interval is the length of one countdown step. Zero means one second.
	Interval time.Duration
}

// Wait applies the configured pacing with default one-second steps.
func Wait(ctx context.Context, cfg session.Pacing, host Host, hold HoldFunc) bool {
	return Controller{}.Wait(ctx, cfg, host, hold)
}

// Wait applies the configured pacing between two turns. It returns false
// when the run should stop: cancellation during the countdown or while
// awaiting a manual advance.
func (c Controller) Wait(ctx context.Context, cfg session.Pacing, host Host, hold HoldFunc) bool {
	if cfg.Mode == session.PacingManual {
		return c.waitManual(ctx, host)
	}
	return c.waitTimed(ctx, cfg.DelaySeconds, host, hold)
}

func (c Controller) waitManual(ctx context.Context, host Host) bool {
	host.PacingTick(ManualSentinel)
	if err := host.AwaitAdvance(ctx); err != nil {
		return false
	}
	return ctx.Err() == nil
}

func (c Controller) waitTimed(ctx context.Context, seconds int, host Host, hold HoldFunc) bool {
	if ctx.Err() != nil {
		return false
	}
	if seconds <= 0 {
		return true
	}
	step := c.Interval
	if step <= 0 {
		step = time.Second
	}
	ticker := time.NewTicker(step)
	defer ticker.Stop()
	for remaining := seconds; remaining > 0; remaining-- {
		host.PacingTick(remaining)
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
		if hold != nil {
			// An externally triggered pause suspends the countdown; the
			// remaining seconds resume where they left off.
			if err := hold(ctx); err != nil {
				return false
			}
		}
	}
	return true
}
