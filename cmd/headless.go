package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mirokim/Onion-ring/internal/engine"
	"github.com/mirokim/Onion-ring/internal/pacing"
	"github.com/mirokim/Onion-ring/internal/session"
)

var _ engine.Observer = (*consoleHost)(nil)

// consoleHost is the headless observer: it prints the transcript as it
// grows and gates manual pacing on Enter. It owns the message log for the
// run, same as the TUI relay.
type consoleHost struct {
	out   io.Writer
	stdin *bufio.Reader

	mu   sync.Mutex
	msgs []session.Message
}

func newConsoleHost(out io.Writer, in io.Reader) *consoleHost {
	return &consoleHost{out: out, stdin: bufio.NewReader(in)}
}

func (h *consoleHost) StateChanged(state session.State) {
	fmt.Fprintf(h.out, "-- %s --\n", state)
}

func (h *consoleHost) TurnAdvanced(round, turn int) {}

func (h *consoleHost) ActiveParticipant(id string) {
	if id != "" {
		fmt.Fprintf(h.out, "%s is thinking…\n", id)
	}
}

func (h *consoleHost) MessageCreated(msg session.Message) {
	h.mu.Lock()
	h.msgs = append(h.msgs, msg)
	h.mu.Unlock()

	label := msg.Speaker
	if msg.Subtype != "" {
		label = fmt.Sprintf("%s (%s)", label, msg.Subtype)
	}
	if msg.Failed() {
		fmt.Fprintf(h.out, "[R%d] %s: call failed: %s\n\n", msg.Round, label, msg.Err)
		return
	}
	fmt.Fprintf(h.out, "[R%d] %s:\n%s\n\n", msg.Round, label, msg.Content)
}

func (h *consoleHost) PacingTick(seconds int) {
	if seconds == pacing.ManualSentinel {
		fmt.Fprint(h.out, "press Enter for the next turn… ")
	}
}

func (h *consoleHost) AwaitAdvance(ctx context.Context) error {
	lineCh := make(chan error, 1)
	go func() {
		_, err := h.stdin.ReadString('\n')
		lineCh <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-lineCh:
		if err != nil && err != io.EOF {
			return err
		}
		return nil
	}
}

func (h *consoleHost) Messages() []session.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]session.Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}
