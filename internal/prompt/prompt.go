// internal/prompt/prompt.go
//
// Per-mode instruction resolution. Each interaction mode gets its own
// Strategy implementation; the engine selects one per call via For. The
// strategies are pure functions over the immutable session config, so each
// mode is testable on its own.

package prompt

import (
	"fmt"
	"strings"

	"github.com/mirokim/Onion-ring/internal/session"
)

// Strategy resolves the instruction text that frames one participant's call.
type Strategy interface {
	Instructions(cfg session.Config, participant string) string
}

// For selects the strategy for a participant under the configured mode.
// Adversarial mode splits into debater and judge sub-strategies; artwork
// mode splits by its configured sub-variant.
func For(cfg session.Config, participant string) Strategy {
	switch cfg.Mode {
	case session.ModeSequential:
		return sequentialStrategy{}
	case session.ModeDiscussion:
		return discussionStrategy{}
	case session.ModeRoles:
		return rolesStrategy{}
	case session.ModeAdversarial:
		if participant == cfg.Judge {
			return judgeStrategy{}
		}
		return debaterStrategy{}
	case session.ModeArtwork:
		switch cfg.Artwork {
		case session.ArtworkCritique:
			return critiqueStrategy{}
		case session.ArtworkScore:
			return scoreStrategy{}
		default:
			return artworkDiscussionStrategy{}
		}
	default:
		return sequentialStrategy{}
	}
}

// Classify returns the message subtype and role label a participant's turn
// should carry. It applies the same mode rules the strategies use, so a
// judge's output is always tagged as an evaluation and role assignments
// travel with the message.
func Classify(cfg session.Config, participant string) (session.Subtype, string) {
	role := cfg.RoleFor(participant)
	switch cfg.Mode {
	case session.ModeAdversarial:
		if participant == cfg.Judge {
			return session.SubtypeJudging, role
		}
	case session.ModeArtwork:
		switch cfg.Artwork {
		case session.ArtworkCritique:
			return session.SubtypeCritique, role
		case session.ArtworkScore:
			return session.SubtypeScore, role
		}
	}
	return session.SubtypeNone, role
}

// preamble builds the shared framing every strategy starts from: who the
// participant is, what the exchange is about, who else is present, and the
// standing accuracy directives.
func preamble(cfg session.Config, participant string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, one of %d participants in a moderated exchange.\n", participant, len(cfg.Participants))
	if strings.TrimSpace(cfg.Topic) != "" {
		fmt.Fprintf(&b, "Topic: %s\n", cfg.Topic)
	}
	others := make([]string, 0, len(cfg.Participants)-1)
	for _, id := range cfg.Participants {
		if id == participant {
			continue
		}
		if role := cfg.RoleFor(id); role != "" {
			others = append(others, fmt.Sprintf("%s (as %s)", id, role))
		} else {
			others = append(others, id)
		}
	}
	if len(others) > 0 {
		fmt.Fprintf(&b, "The other participants are: %s.\n", strings.Join(others, ", "))
	}
	b.WriteString("Be accurate and honest. Never fabricate quotes, sources, or facts. Respond in plain prose without headers unless asked.\n")
	return b.String()
}

// referenceHints appends topic material hints when the session carries
// reference text or files. The files themselves travel as structured
// content blocks, never inline.
func referenceHints(cfg session.Config) string {
	var b strings.Builder
	if strings.TrimSpace(cfg.ReferenceText) != "" {
		fmt.Fprintf(&b, "\nReference material provided by the moderator:\n%s\n", cfg.ReferenceText)
	}
	if len(cfg.ReferenceFiles) > 0 {
		names := make([]string, len(cfg.ReferenceFiles))
		for i, ref := range cfg.ReferenceFiles {
			names[i] = ref.Name
		}
		fmt.Fprintf(&b, "\nAttached reference files: %s. They are included with your first message.\n", strings.Join(names, ", "))
	}
	return b.String()
}

func roleBlock(cfg session.Config, participant string) string {
	role := cfg.RoleFor(participant)
	if role == "" {
		return ""
	}
	return fmt.Sprintf("\nYou are assigned the role of %s. Stay in character and argue from that perspective for the whole session.\n", role)
}

type sequentialStrategy struct{}

func (sequentialStrategy) Instructions(cfg session.Config, participant string) string {
	return preamble(cfg, participant) +
		"\nParticipants speak in a fixed order, one turn each per round. Build on what was said before your turn and add one substantial new point per turn. Keep each turn under four paragraphs.\n" +
		roleBlock(cfg, participant) +
		referenceHints(cfg)
}

type discussionStrategy struct{}

func (discussionStrategy) Instructions(cfg session.Config, participant string) string {
	return preamble(cfg, participant) +
		"\nThis is an open discussion. Engage directly with the other participants: agree, disagree, ask questions, and change your mind when persuaded. Address others by name when responding to them.\n" +
		roleBlock(cfg, participant) +
		referenceHints(cfg)
}

type rolesStrategy struct{}

func (rolesStrategy) Instructions(cfg session.Config, participant string) string {
	return preamble(cfg, participant) +
		"\nEvery participant argues from an assigned role. Represent your role faithfully even when you personally would argue otherwise, and engage the other roles on their own terms.\n" +
		roleBlock(cfg, participant) +
		referenceHints(cfg)
}

type debaterStrategy struct{}

func (debaterStrategy) Instructions(cfg session.Config, participant string) string {
	var b strings.Builder
	b.WriteString(preamble(cfg, participant))
	b.WriteString("\nThis is a formal adversarial debate. Argue your position as persuasively as you can: rebut the strongest version of your opponents' arguments, concede points only when honesty demands it, and close each turn with your sharpest remaining argument.\n")
	fmt.Fprintf(&b, "The debate is scored each round by %s. Scoring rewards logical rigor, evidence, and direct engagement over rhetoric.\n", cfg.Judge)
	b.WriteString(roleBlock(cfg, participant))
	b.WriteString(referenceHints(cfg))
	return b.String()
}

type judgeStrategy struct{}

func (judgeStrategy) Instructions(cfg session.Config, participant string) string {
	var b strings.Builder
	b.WriteString(preamble(cfg, participant))
	b.WriteString("\nYou are the judge of this debate. You do not argue a side. After each round you receive the full transcript so far and deliver an evaluation:\n")
	b.WriteString("- Summarize each debater's strongest point this round in one sentence.\n")
	b.WriteString("- Score each debater from 1 to 10 for logic, evidence, and engagement.\n")
	b.WriteString("- Name the round winner and say in one sentence what would have changed your mind.\n")
	b.WriteString("Judge only what was argued, not what you believe about the topic.\n")
	b.WriteString(referenceHints(cfg))
	return b.String()
}

type artworkDiscussionStrategy struct{}

func (artworkDiscussionStrategy) Instructions(cfg session.Config, participant string) string {
	return preamble(cfg, participant) +
		"\nThe attached work is the subject of this exchange. Discuss it openly with the other participants: react to the work itself and to each other's readings of it. Ground every claim in something observable in the work.\n" +
		roleBlock(cfg, participant) +
		referenceHints(cfg)
}

type critiqueStrategy struct{}

func (critiqueStrategy) Instructions(cfg session.Config, participant string) string {
	return preamble(cfg, participant) +
		"\nDeliver one self-contained critique of the attached work from your own perspective. Do not respond to the other participants; this is an independent reading. Cover what the work attempts, where it succeeds, and where it falls short, citing specific elements.\n" +
		roleBlock(cfg, participant) +
		referenceHints(cfg)
}

type scoreStrategy struct{}

func (scoreStrategy) Instructions(cfg session.Config, participant string) string {
	return preamble(cfg, participant) +
		"\nScore the attached work against this rubric, one line per criterion, each from 1 to 10 with a one-sentence justification:\n" +
		"- Technique: command of the medium.\n" +
		"- Composition: structure and balance.\n" +
		"- Originality: how much the work risks or invents.\n" +
		"- Impact: what the work leaves the viewer with.\n" +
		"Finish with an overall score and a two-sentence verdict.\n" +
		roleBlock(cfg, participant) +
		referenceHints(cfg)
}
