// Package engine drives one session from start to finish: it decides who
// speaks each turn, what context they see, how fast the exchange proceeds,
// and how the run recovers from partial failure. Turns are strictly
// sequential; the host controls pause, resume, and cancellation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mirokim/Onion-ring/internal/failure"
	"github.com/mirokim/Onion-ring/internal/logging"
	"github.com/mirokim/Onion-ring/internal/pacing"
	"github.com/mirokim/Onion-ring/internal/provider"
	"github.com/mirokim/Onion-ring/internal/session"
	"github.com/mirokim/Onion-ring/internal/window"
)

// ErrStopped reports that a run ended through cancellation rather than
// natural completion or an internal fault.
var ErrStopped = errors.New("engine: run stopped")

// Observer is implemented by the host. It owns the message log; the engine
// reports everything it does here and reads history back through Messages
// instead of caching it.
type Observer interface {
	// StateChanged reports every session state transition.
	StateChanged(state session.State)
	// TurnAdvanced reports the cursor moving to a new round/turn slot.
	TurnAdvanced(round, turn int)
	// ActiveParticipant reports whose call is in flight; "" clears it.
	ActiveParticipant(id string)
	// MessageCreated hands a finished message to the host log. Ownership
	// transfers immediately; the engine keeps no copy.
	MessageCreated(msg session.Message)
	// PacingTick reports countdown seconds, or pacing.ManualSentinel while
	// awaiting a manual advance.
	PacingTick(seconds int)
	// AwaitAdvance blocks until the host allows the next turn (manual pacing).
	AwaitAdvance(ctx context.Context) error
	// Messages returns the host-owned log, oldest first. It must include
	// every message the host has accepted, moderator injections included.
	Messages() []session.Message
}

// Archiver persists a finished or stopped session. The engine calls it
// exactly once, after reaching completed or on an explicit stop.
type Archiver interface {
	Save(cfg session.Config, msgs []session.Message) error
}

// Option customizes an engine instance.
type Option func(*Engine)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger attaches the run log.
func WithLogger(log *logging.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithArchiver attaches the persistence collaborator.
func WithArchiver(archiver Archiver) Option {
	return func(e *Engine) {
		e.archiver = archiver
	}
}

// WithFailureThreshold overrides the consecutive-failure pause threshold.
func WithFailureThreshold(threshold int) Option {
	return func(e *Engine) {
		e.monitor = failure.NewMonitor(threshold)
	}
}

// WithWindowSize overrides the context window applied to regular turns.
func WithWindowSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.windowSize = size
		}
	}
}

// WithPacingInterval shortens the countdown step (tests only).
func WithPacingInterval(interval time.Duration) Option {
	return func(e *Engine) {
		e.pacer = pacing.Controller{Interval: interval}
	}
}

// Engine is the session orchestrator. Build one per run with New; a run is
// one-shot, started with Run and controlled with Pause/Resume plus the
// context handed to Run.
type Engine struct {
	cfg      session.Config
	creds    map[string]provider.Credentials
	client   provider.Client
	obs      Observer
	archiver Archiver
	log      *logging.Logger
	clock    func() time.Time
	pacer    pacing.Controller

	windowSize int

	mu      sync.Mutex
	state   session.State
	cursor  session.Cursor
	resume  chan struct{}
	monitor *failure.Monitor
	called  map[string]bool
}

// New validates and freezes the configuration and wires the engine to its
// collaborators. Credentials may be missing for individual participants;
// those participants are skipped at run time, not rejected here.
func New(cfg session.Config, creds map[string]provider.Credentials, client provider.Client, obs Observer, opts ...Option) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("engine: provider client is required")
	}
	if obs == nil {
		return nil, fmt.Errorf("engine: observer is required")
	}
	normalized, err := cfg.Normalized()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:        normalized,
		creds:      creds,
		client:     client,
		obs:        obs,
		clock:      time.Now,
		windowSize: window.DefaultSize,
		state:      session.StateIdle,
		monitor:    failure.NewMonitor(failure.DefaultThreshold),
		called:     map[string]bool{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the frozen session configuration.
func (e *Engine) Config() session.Config {
	return e.cfg.Clone()
}

// State returns the current session state.
func (e *Engine) State() session.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Cursor returns the current round/turn position.
func (e *Engine) Cursor() session.Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Pause suspends the run at the next check point. A no-op unless running.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.state != session.StateRunning {
		e.mu.Unlock()
		return
	}
	e.state = session.StatePaused
	e.resume = make(chan struct{})
	e.mu.Unlock()
	e.obs.StateChanged(session.StatePaused)
	e.log.Info("session %s paused", e.cfg.ID)
}

// Resume releases a paused run and clears the failure counter, so the next
// turn proceeds immediately. A no-op unless paused.
func (e *Engine) Resume() {
	e.mu.Lock()
	if e.state != session.StatePaused {
		e.mu.Unlock()
		return
	}
	e.state = session.StateRunning
	e.monitor.Reset()
	if e.resume != nil {
		close(e.resume)
		e.resume = nil
	}
	e.mu.Unlock()
	e.obs.StateChanged(session.StateRunning)
	e.log.Info("session %s resumed", e.cfg.ID)
}

// hold blocks while the session is paused, waking on resume or
// cancellation. It returns nil as soon as the engine may proceed.
func (e *Engine) hold(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.mu.Lock()
		if e.state != session.StatePaused {
			e.mu.Unlock()
			return nil
		}
		ch := e.resume
		e.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

func (e *Engine) setState(state session.State) {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
	e.obs.StateChanged(state)
}

func (e *Engine) advanceCursor(round, turn int) {
	e.mu.Lock()
	e.cursor = session.Cursor{Round: round, Turn: turn}
	e.mu.Unlock()
	e.obs.TurnAdvanced(round, turn)
}

func (e *Engine) recordOutcome(success bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.monitor.Record(success)
}

// FailureCount exposes the running consecutive-failure count.
func (e *Engine) FailureCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.monitor.Count()
}
