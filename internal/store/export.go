package store

import (
	"fmt"
	"io"
	"strings"

	"github.com/mirokim/Onion-ring/internal/session"
)

// ExportMarkdown renders a stored session as a readable transcript.
func ExportMarkdown(w io.Writer, cfg session.Config, msgs []session.Message) error {
	title := cfg.Topic
	if strings.TrimSpace(title) == "" {
		title = cfg.ID
	}
	if _, err := fmt.Fprintf(w, "# %s\n\n", title); err != nil {
		return fmt.Errorf("store: export: %w", err)
	}
	fmt.Fprintf(w, "Mode: %s", cfg.Mode)
	if cfg.Mode == session.ModeArtwork {
		fmt.Fprintf(w, " (%s)", cfg.Artwork)
	}
	fmt.Fprintf(w, " — participants: %s\n", strings.Join(cfg.Participants, ", "))

	round := 0
	for _, msg := range msgs {
		if msg.Round != round {
			round = msg.Round
			fmt.Fprintf(w, "\n## Round %d\n", round)
		}
		label := msg.Speaker
		if msg.Role != "" {
			label = fmt.Sprintf("%s (%s)", msg.Speaker, msg.Role)
		}
		if msg.Subtype != session.SubtypeNone {
			label = fmt.Sprintf("%s — %s", label, msg.Subtype)
		}
		fmt.Fprintf(w, "\n**%s** · %s\n\n", label, msg.CreatedAt.Format("2006-01-02 15:04:05"))
		if msg.Failed() {
			fmt.Fprintf(w, "> call failed: %s\n", msg.Err)
			continue
		}
		fmt.Fprintln(w, msg.Content)
		for _, file := range msg.Files {
			fmt.Fprintf(w, "\n*(attachment: %s)*\n", file.Name)
		}
	}
	return nil
}
