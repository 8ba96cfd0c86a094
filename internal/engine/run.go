package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/mirokim/Onion-ring/internal/pacing"
	"github.com/mirokim/Onion-ring/internal/prompt"
	"github.com/mirokim/Onion-ring/internal/provider"
	"github.com/mirokim/Onion-ring/internal/session"
	"github.com/mirokim/Onion-ring/internal/window"
)

// Run executes the session to a terminal outcome. It blocks until the run
// completes, is cancelled through ctx, or hits an internal fault, and
// returns the state the session ended in. Hosts that want the run off
// their main goroutine start it in their own.
func (e *Engine) Run(ctx context.Context) (session.State, error) {
	e.mu.Lock()
	if e.state != session.StateIdle {
		state := e.state
		e.mu.Unlock()
		return state, fmt.Errorf("engine: session %s already started", e.cfg.ID)
	}
	e.state = session.StateRunning
	e.cursor = session.Cursor{}
	e.mu.Unlock()
	e.obs.StateChanged(session.StateRunning)
	e.log.Info("session %s started: mode=%s participants=%d rounds=%d",
		e.cfg.ID, e.cfg.Mode, len(e.cfg.Participants), e.cfg.EffectiveRounds())

	state, err := e.runLoop(ctx)
	if err == nil || errors.Is(err, ErrStopped) {
		e.archive()
	}
	return state, err
}

func (e *Engine) runLoop(ctx context.Context) (session.State, error) {
	order := e.cfg.TurnOrder()
	rounds := e.cfg.EffectiveRounds()
	judged := e.cfg.Mode == session.ModeAdversarial && e.cfg.Judge != ""

	for round := 1; round <= rounds; round++ {
		for turn, id := range order {
			lastSlot := round == rounds && !judged && turn == len(order)-1
			if err := e.takeTurn(ctx, id, round, turn, false, lastSlot); err != nil {
				return e.finish(err)
			}
		}
		if judged {
			lastSlot := round == rounds
			if err := e.takeTurn(ctx, e.cfg.Judge, round, len(order), true, lastSlot); err != nil {
				return e.finish(err)
			}
		}
	}

	e.setState(session.StateCompleted)
	e.log.Info("session %s completed", e.cfg.ID)
	return session.StateCompleted, nil
}

// finish maps a loop error to the terminal outcome: cancellation leaves the
// state where it was, an internal fault transitions to failed.
func (e *Engine) finish(err error) (session.State, error) {
	if errors.Is(err, ErrStopped) {
		e.log.Info("session %s stopped", e.cfg.ID)
		return e.State(), err
	}
	e.setState(session.StateFailed)
	e.log.Error("session %s failed: %v", e.cfg.ID, err)
	return session.StateFailed, err
}

// takeTurn runs one participant's call-and-response slot, including pacing
// to the next slot. A nil return means the loop should continue.
func (e *Engine) takeTurn(ctx context.Context, id string, round, turn int, judge, lastSlot bool) error {
	if err := e.hold(ctx); err != nil {
		return stopErr(err)
	}
	e.advanceCursor(round, turn)

	creds := e.creds[id]
	if creds.Empty() {
		// Configuration gap: no call, no message, no failure bookkeeping.
		e.log.Warn("session %s: skipping %s (no credentials)", e.cfg.ID, id)
		return nil
	}

	instructions := prompt.For(e.cfg, id).Instructions(e.cfg, id)
	msgs := window.Build(window.Request{
		Log:            e.obs.Messages(),
		Participant:    id,
		Judge:          judge,
		FirstCall:      !e.called[id],
		ArtworkMode:    e.cfg.Mode == session.ModeArtwork,
		ReferenceFiles: e.cfg.ReferenceFiles,
		Size:           e.windowSize,
	})
	e.called[id] = true

	e.obs.ActiveParticipant(id)
	result, callErr := e.client.Complete(ctx, provider.Request{
		Participant:  id,
		Credentials:  creds,
		Instructions: instructions,
		Messages:     msgs,
	})
	e.obs.ActiveParticipant("")
	if ctx.Err() != nil {
		// Cancelled during the call: no message, no further side effects.
		return stopErr(ctx.Err())
	}
	if callErr != nil {
		// The provider contract itself failed; that is an internal fault,
		// not a failed turn.
		return fmt.Errorf("engine: provider fault for %s: %w", id, callErr)
	}

	msg := e.buildMessage(id, round, result)
	e.obs.MessageCreated(msg)
	if msg.Failed() {
		e.log.Warn("session %s: turn failed for %s: %s", e.cfg.ID, id, msg.Err)
	}

	if e.recordOutcome(result.OK()) {
		e.log.Warn("session %s: pausing after consecutive failures", e.cfg.ID)
		e.Pause()
		if err := e.hold(ctx); err != nil {
			return stopErr(err)
		}
	}

	if lastSlot {
		return nil
	}
	if !e.pacer.Wait(ctx, e.cfg.Pacing, e.obs, e.hold) {
		return stopErr(ctx.Err())
	}
	return nil
}

func (e *Engine) buildMessage(id string, round int, result provider.Result) session.Message {
	content := result.Content
	if !result.OK() {
		content = "(no response)"
	}
	msg := session.NewMessage(id, content, round, e.clock())
	if !result.OK() {
		msg.Err = result.Err
	}
	msg.Subtype, msg.Role = prompt.Classify(e.cfg, id)
	return msg
}

func (e *Engine) archive() {
	if e.archiver == nil {
		return
	}
	if err := e.archiver.Save(e.cfg, e.obs.Messages()); err != nil {
		e.log.Error("session %s: archive failed: %v", e.cfg.ID, err)
		return
	}
	e.log.Info("session %s archived", e.cfg.ID)
}

// stopErr tags a cancellation so finish can tell it apart from faults.
func stopErr(cause error) error {
	if cause == nil {
		return ErrStopped
	}
	return fmt.Errorf("%w: %v", ErrStopped, cause)
}

var _ pacing.Host = Observer(nil)
