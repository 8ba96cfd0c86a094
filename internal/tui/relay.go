package tui

import (
	"context"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mirokim/Onion-ring/internal/engine"
	"github.com/mirokim/Onion-ring/internal/session"
)

// Engine events delivered into the bubbletea update loop.
type (
	stateMsg   struct{ state session.State }
	turnMsg    struct{ round, turn int }
	activeMsg  struct{ id string }
	appendMsg  struct{ msg session.Message }
	paceMsg    struct{ seconds int }
	runDoneMsg struct{ err error }
)

var _ engine.Observer = (*Relay)(nil)

// Relay adapts the engine observer callbacks onto a bubbletea program. It
// owns the message log for the run; the engine reads history back through
// Messages and keeps no copy of its own.
type Relay struct {
	mu      sync.Mutex
	msgs    []session.Message
	send    func(tea.Msg)
	advance chan struct{}
}

// NewRelay builds a relay with no program attached yet. Events raised before
// Attach are recorded in the log but not forwarded.
func NewRelay() *Relay {
	return &Relay{advance: make(chan struct{}, 1)}
}

// Attach wires the relay to a running program's Send function.
func (r *Relay) Attach(send func(tea.Msg)) {
	r.mu.Lock()
	r.send = send
	r.mu.Unlock()
}

func (r *Relay) post(msg tea.Msg) {
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (r *Relay) StateChanged(state session.State) {
	r.post(stateMsg{state: state})
}

func (r *Relay) TurnAdvanced(round, turn int) {
	r.post(turnMsg{round: round, turn: turn})
}

func (r *Relay) ActiveParticipant(id string) {
	r.post(activeMsg{id: id})
}

func (r *Relay) MessageCreated(msg session.Message) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	r.post(appendMsg{msg: msg})
}

func (r *Relay) PacingTick(seconds int) {
	r.post(paceMsg{seconds: seconds})
}

// AwaitAdvance blocks until Advance is called or the run is cancelled.
func (r *Relay) AwaitAdvance(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.advance:
		return nil
	}
}

// Advance releases one AwaitAdvance waiter. Safe to call when nobody waits.
func (r *Relay) Advance() {
	select {
	case r.advance <- struct{}{}:
	default:
	}
}

// Messages returns a copy of the log, oldest first.
func (r *Relay) Messages() []session.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

// Inject appends a moderator message to the log. The next participant sees
// it in their context window like any other incoming message.
func (r *Relay) Inject(content string) (session.Message, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return session.Message{}, false
	}
	r.mu.Lock()
	round := 1
	if n := len(r.msgs); n > 0 {
		round = r.msgs[n-1].Round
	}
	msg := session.NewMessage(session.SpeakerModerator, content, round, time.Now())
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	r.post(appendMsg{msg: msg})
	return msg, true
}
