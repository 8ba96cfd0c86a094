// internal/window/window.go
//
// Builds the bounded, role-tagged slice of message history sent to a
// participant for one call. The engine reads the full log from the host and
// hands it here; nothing in this package retains state between calls.

package window

import (
	"fmt"

	"github.com/mirokim/Onion-ring/internal/session"
)

// DefaultSize is the trailing message window applied to regular turns.
// Judge calls double it so the judge sees enough debate history to score a
// round fairly.
const DefaultSize = 15

// Role tags each windowed message relative to the target participant.
type Role string

const (
	// RoleOwn marks the participant's own prior output.
	RoleOwn Role = "assistant"
	// RoleIncoming marks everything authored by others.
	RoleIncoming Role = "user"
)

// CallMessage is one entry of the context sent with a provider call.
type CallMessage struct {
	Role    Role
	Speaker string
	Content string
	Files   []session.FileRef
}

// Request carries everything Build needs for one call.
type Request struct {
	// Log is the host-owned message history, oldest first.
	Log []session.Message
	// Participant is the target of the call.
	Participant string
	// Judge widens the window for judge evaluations.
	Judge bool
	// FirstCall marks the participant's first call of the session; reference
	// files attach only then, and an empty history is replaced with a
	// synthetic opener instead of an empty context.
	FirstCall bool
	// ArtworkMode switches the synthetic opener to the evaluation phrasing.
	ArtworkMode bool
	// ReferenceFiles are the session's configured attachments.
	ReferenceFiles []session.FileRef
	// Size overrides DefaultSize when > 0 (before judge doubling).
	Size int
}

func (r Request) windowSize() int {
	size := r.Size
	if size <= 0 {
		size = DefaultSize
	}
	if r.Judge {
		size *= 2
	}
	return size
}

// Build assembles the ordered call context for one turn.
func Build(req Request) []CallMessage {
	log := req.Log
	if size := req.windowSize(); len(log) > size {
		log = log[len(log)-size:]
	}

	out := make([]CallMessage, 0, len(log)+1)
	for _, msg := range log {
		out = append(out, tag(msg, req.Participant))
	}

	if req.FirstCall && len(out) == 0 {
		out = append(out, CallMessage{
			Role:    RoleIncoming,
			Speaker: session.SpeakerModerator,
			Content: opener(req.ArtworkMode),
		})
	}
	if req.FirstCall && len(req.ReferenceFiles) > 0 {
		// Reference files ride on the first incoming message as structured
		// blocks; raw bytes never land in prompt text.
		out[0].Files = append(append([]session.FileRef{}, req.ReferenceFiles...), out[0].Files...)
	}
	return out
}

func opener(artwork bool) string {
	if artwork {
		return "The session begins now. Evaluate the attached work."
	}
	return "The session begins now. Open the exchange with your first statement."
}

// tag maps a stored message to its call representation: the participant's
// own messages keep their content as prior output, everything else arrives
// as incoming text prefixed with a speaker label. Judge evaluations carry an
// explicit marker so later turns can tell scoring apart from argument.
func tag(msg session.Message, participant string) CallMessage {
	files := msg.Files
	if msg.Speaker == participant {
		return CallMessage{Role: RoleOwn, Speaker: msg.Speaker, Content: msg.Content, Files: files}
	}
	label := msg.Speaker
	if msg.Subtype == session.SubtypeJudging {
		label += ", judge evaluation"
	}
	return CallMessage{
		Role:    RoleIncoming,
		Speaker: msg.Speaker,
		Content: fmt.Sprintf("[%s] %s", label, msg.Content),
		Files:   files,
	}
}
