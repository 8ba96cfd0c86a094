package pacing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mirokim/Onion-ring/internal/session"
)

type recordingHost struct {
	mu      sync.Mutex
	ticks   []int
	advance chan struct{}
}

func newRecordingHost() *recordingHost {
	return &recordingHost{advance: make(chan struct{}, 1)}
}

func (h *recordingHost) PacingTick(seconds int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticks = append(h.ticks, seconds)
}

func (h *recordingHost) AwaitAdvance(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.advance:
		return nil
	}
}

func (h *recordingHost) recorded() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]int, len(h.ticks))
	copy(out, h.ticks)
	return out
}

func TestTimedCountdownEmitsDescendingTicks(t *testing.T) {
	host := newRecordingHost()
	ctl := Controller{Interval: time.Millisecond}
	cfg := session.Pacing{Mode: session.PacingTimed, DelaySeconds: 3}
	if !ctl.Wait(context.Background(), cfg, host, nil) {
		t.Fatalf("expected countdown to finish")
	}
	ticks := host.recorded()
	if len(ticks) != 3 || ticks[0] != 3 || ticks[1] != 2 || ticks[2] != 1 {
		t.Fatalf("unexpected ticks: %v", ticks)
	}
}

func TestTimedZeroDelaySkipsTicks(t *testing.T) {
	host := newRecordingHost()
	cfg := session.Pacing{Mode: session.PacingTimed}
	if !Wait(context.Background(), cfg, host, nil) {
		t.Fatalf("zero delay should continue immediately")
	}
	if len(host.recorded()) != 0 {
		t.Fatalf("zero delay should emit no ticks")
	}
}

func TestCancelMidCountdownStopsTicks(t *testing.T) {
	host := newRecordingHost()
	ctx, cancel := context.WithCancel(context.Background())
	ctl := Controller{Interval: 50 * time.Millisecond}
	cfg := session.Pacing{Mode: session.PacingTimed, DelaySeconds: 30}
	done := make(chan bool, 1)
	go func() {
		done <- ctl.Wait(ctx, cfg, host, nil)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	if <-done {
		t.Fatalf("cancelled countdown should report false")
	}
	before := len(host.recorded())
	time.Sleep(120 * time.Millisecond)
	if after := len(host.recorded()); after != before {
		t.Fatalf("ticks continued after cancellation: %d -> %d", before, after)
	}
}

func TestTimedCountdownHonorsHold(t *testing.T) {
	host := newRecordingHost()
	ctl := Controller{Interval: time.Millisecond}
	cfg := session.Pacing{Mode: session.PacingTimed, DelaySeconds: 2}
	var holds int
	hold := func(ctx context.Context) error {
		holds++
		return nil
	}
	if !ctl.Wait(context.Background(), cfg, host, hold) {
		t.Fatalf("expected countdown to finish")
	}
	if holds != 2 {
		t.Fatalf("hold should run once per elapsed second, got %d", holds)
	}
}

func TestTimedCountdownStopsWhenHoldCancelled(t *testing.T) {
	host := newRecordingHost()
	ctl := Controller{Interval: time.Millisecond}
	cfg := session.Pacing{Mode: session.PacingTimed, DelaySeconds: 5}
	hold := func(ctx context.Context) error {
		return errors.New("cancelled while paused")
	}
	if ctl.Wait(context.Background(), cfg, host, hold) {
		t.Fatalf("hold failure should stop the countdown")
	}
	if len(host.recorded()) != 1 {
		t.Fatalf("expected a single tick before the hold stopped things, got %v", host.recorded())
	}
}

func TestManualEmitsSentinelAndWaits(t *testing.T) {
	host := newRecordingHost()
	cfg := session.Pacing{Mode: session.PacingManual}
	done := make(chan bool, 1)
	go func() {
		done <- Wait(context.Background(), cfg, host, nil)
	}()
	host.advance <- struct{}{}
	if !<-done {
		t.Fatalf("manual advance should continue the run")
	}
	ticks := host.recorded()
	if len(ticks) != 1 || ticks[0] != ManualSentinel {
		t.Fatalf("expected one sentinel tick, got %v", ticks)
	}
}

func TestManualCancelledWhileWaiting(t *testing.T) {
	host := newRecordingHost()
	ctx, cancel := context.WithCancel(context.Background())
	cfg := session.Pacing{Mode: session.PacingManual}
	done := make(chan bool, 1)
	go func() {
		done <- Wait(ctx, cfg, host, nil)
	}()
	cancel()
	if <-done {
		t.Fatalf("cancellation while awaiting advance should report false")
	}
}
