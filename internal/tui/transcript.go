package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mirokim/Onion-ring/internal/session"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	topicStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EEEEEE"))
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).MarginTop(1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))

	transcriptBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#444444")).
				Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F7B801")).
			Padding(0, 1)

	roundStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	speakerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	judgeStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	moderatorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	bodyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))

	stateStyleRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	stateStylePaused  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	stateStyleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	stateStyleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	stateStyleDefault = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
)

// renderTranscriptEntry formats one message for the transcript pane. Each
// entry carries its round marker inline so scrolling keeps context.
func renderTranscriptEntry(msg session.Message, cfg session.Config) string {
	label := speakerLabel(msg, cfg)
	head := fmt.Sprintf("%s %s", roundStyle.Render(fmt.Sprintf("[R%d]", msg.Round)), label)
	if !msg.CreatedAt.IsZero() {
		head += metaStyle.Render("  " + msg.CreatedAt.Format("15:04:05"))
	}
	body := bodyStyle.Render(msg.Content)
	if msg.Failed() {
		body = errorStyle.Render(fmt.Sprintf("call failed: %s", msg.Err))
	}
	for _, file := range msg.Files {
		body += metaStyle.Render(fmt.Sprintf("\n  ⎘ %s (%s)", file.Name, file.MediaType))
	}
	return head + "\n" + body + "\n"
}

func speakerLabel(msg session.Message, cfg session.Config) string {
	name := msg.Speaker
	if role := cfg.RoleFor(msg.Speaker); role != "" {
		name = fmt.Sprintf("%s (%s)", name, role)
	}
	switch {
	case msg.Speaker == session.SpeakerModerator:
		return moderatorStyle.Render("◆ " + name)
	case msg.Subtype == session.SubtypeJudging:
		return judgeStyle.Render(name + " · verdict")
	case msg.Subtype == session.SubtypeCritique:
		return speakerStyle.Render(name + " · critique")
	case msg.Subtype == session.SubtypeScore:
		return judgeStyle.Render(name + " · score")
	default:
		return speakerStyle.Render(name)
	}
}

func stateLabel(state session.State) string {
	text := strings.ToUpper(string(state))
	switch state {
	case session.StateRunning:
		return stateStyleRunning.Render(text)
	case session.StatePaused:
		return stateStylePaused.Render(text)
	case session.StateCompleted:
		return stateStyleDone.Render(text)
	case session.StateFailed:
		return stateStyleFailed.Render(text)
	default:
		return stateStyleDefault.Render(text)
	}
}
