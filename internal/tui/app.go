// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for Onion Ring.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The engine runs in its own goroutine; the Relay forwards every engine
// event into the update loop, so the model never touches engine internals
// beyond Pause/Resume and the run context.

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mirokim/Onion-ring/internal/engine"
	"github.com/mirokim/Onion-ring/internal/pacing"
	"github.com/mirokim/Onion-ring/internal/session"
)

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	eng    *engine.Engine
	relay  *Relay
	cancel context.CancelFunc

	transcript viewport.Model
	input      textinput.Model
	spin       spinner.Model

	cfg       session.Config
	state     session.State
	round     int
	turn      int
	active    string
	countdown int
	manual    bool
	inputOpen bool
	done      bool
	runErr    error
	statusMsg string
	lines     []string

	width  int
	height int
	ready  bool
}

// NewApp builds the model around an engine and its relay. The cancel
// function tears down the run when the user stops or quits.
func NewApp(eng *engine.Engine, relay *Relay, cancel context.CancelFunc) *App {
	input := textinput.New()
	input.Placeholder = "moderator note…"
	input.CharLimit = 500

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))

	return &App{
		eng:       eng,
		relay:     relay,
		cancel:    cancel,
		input:     input,
		spin:      spin,
		cfg:       eng.Config(),
		state:     session.StateIdle,
		countdown: -1,
		statusMsg: "Session starting…",
	}
}

// Run wires a program around the engine, starts the run in the background,
// and blocks until the user quits. The relay must be the engine's observer.
func Run(ctx context.Context, eng *engine.Engine, relay *Relay) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := NewApp(eng, relay, cancel)
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	relay.Attach(program.Send)

	go func() {
		_, err := eng.Run(ctx)
		program.Send(runDoneMsg{err: err})
	}()

	_, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.spin.Tick
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layoutTranscript()
		return a, nil

	case stateMsg:
		a.state = msg.state
		a.statusMsg = stateNotice(msg.state)
		if msg.state != session.StateRunning {
			a.countdown = -1
			a.manual = false
		}
		return a, nil

	case turnMsg:
		a.round = msg.round
		a.turn = msg.turn
		return a, nil

	case activeMsg:
		a.active = msg.id
		if msg.id != "" {
			a.countdown = -1
			a.manual = false
		}
		return a, nil

	case appendMsg:
		a.lines = append(a.lines, renderTranscriptEntry(msg.msg, a.cfg))
		a.transcript.SetContent(strings.Join(a.lines, "\n"))
		a.transcript.GotoBottom()
		return a, nil

	case paceMsg:
		if msg.seconds == pacing.ManualSentinel {
			a.manual = true
			a.countdown = -1
		} else {
			a.manual = false
			a.countdown = msg.seconds
		}
		return a, nil

	case runDoneMsg:
		a.done = true
		a.active = ""
		a.countdown = -1
		a.manual = false
		if msg.err != nil && !errors.Is(msg.err, engine.ErrStopped) {
			a.runErr = msg.err
			a.statusMsg = fmt.Sprintf("Session failed: %v", msg.err)
		} else if errors.Is(msg.err, engine.ErrStopped) {
			a.statusMsg = "Session stopped · transcript saved"
		} else {
			a.statusMsg = "Session complete · transcript saved"
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.transcript, cmd = a.transcript.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.inputOpen {
		switch msg.String() {
		case "enter":
			if _, ok := a.relay.Inject(a.input.Value()); ok {
				a.statusMsg = "Moderator note added"
			}
			a.input.SetValue("")
			a.input.Blur()
			a.inputOpen = false
			return a, nil
		case "esc":
			a.input.SetValue("")
			a.input.Blur()
			a.inputOpen = false
			return a, nil
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		a.cancel()
		return a, tea.Quit

	case "s":
		if !a.done {
			a.cancel()
			a.statusMsg = "Stopping…"
		}
		return a, nil

	case " ", "p":
		if a.done {
			return a, nil
		}
		switch a.eng.State() {
		case session.StateRunning:
			a.eng.Pause()
		case session.StatePaused:
			a.eng.Resume()
		}
		return a, nil

	case "enter":
		if a.manual {
			a.relay.Advance()
			a.statusMsg = "Advancing…"
		}
		return a, nil

	case "i":
		if !a.done {
			a.inputOpen = true
			a.input.Focus()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.transcript, cmd = a.transcript.Update(msg)
	return a, cmd
}

func (a *App) layoutTranscript() {
	width := max(20, a.width-4)
	height := max(5, a.height-8)
	if !a.ready {
		a.transcript = viewport.New(width, height)
		a.transcript.SetContent(strings.Join(a.lines, "\n"))
		a.ready = true
		return
	}
	a.transcript.Width = width
	a.transcript.Height = height
}

// View renders the current state to a string.
func (a *App) View() string {
	if !a.ready {
		return "Loading session…"
	}
	sections := []string{
		a.renderHeader(),
		transcriptBoxStyle.Width(max(20, a.width-2)).Render(a.transcript.View()),
		a.renderStatusLine(),
	}
	if a.inputOpen {
		sections = append(sections, inputBoxStyle.Render(a.input.View()))
	}
	sections = append(sections, a.renderFooter())
	return strings.Join(sections, "\n")
}

func (a *App) renderHeader() string {
	title := headerStyle.Render("⬡ ONION RING")
	topic := topicStyle.Render(a.cfg.Topic)
	mode := string(a.cfg.Mode)
	if a.cfg.Mode == session.ModeArtwork && a.cfg.Artwork != "" {
		mode += "/" + string(a.cfg.Artwork)
	}
	meta := metaStyle.Render(fmt.Sprintf("%s · %d round(s) · %d participant(s)",
		mode, a.cfg.EffectiveRounds(), len(a.cfg.Participants)))
	return lipgloss.JoinVertical(lipgloss.Left, title, topic, meta)
}

func (a *App) renderStatusLine() string {
	parts := []string{stateLabel(a.state)}
	if a.round > 0 {
		parts = append(parts, fmt.Sprintf("round %d/%d · turn %d", a.round, a.cfg.EffectiveRounds(), a.turn+1))
	}
	switch {
	case a.active != "":
		parts = append(parts, fmt.Sprintf("%s %s is speaking", a.spin.View(), a.active))
	case a.manual:
		parts = append(parts, "press Enter for the next turn")
	case a.countdown >= 0:
		parts = append(parts, fmt.Sprintf("next turn in %ds", a.countdown))
	}
	if a.statusMsg != "" {
		parts = append(parts, a.statusMsg)
	}
	return statusStyle.Render(strings.Join(parts, "  ·  "))
}

func (a *App) renderFooter() string {
	keys := "space pause/resume · enter advance · i moderate · s stop · q quit"
	if a.done {
		keys = "q quit"
	}
	return footerStyle.Render(keys)
}

func stateNotice(state session.State) string {
	switch state {
	case session.StateRunning:
		return ""
	case session.StatePaused:
		return "Paused · press space to resume"
	case session.StateCompleted:
		return "All rounds complete"
	case session.StateFailed:
		return "Session failed"
	default:
		return ""
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
