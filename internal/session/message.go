package session

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a running session.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Subtype tags messages that are not plain conversational turns.
type Subtype string

const (
	SubtypeNone     Subtype = ""
	SubtypeJudging  Subtype = "judge-evaluation"
	SubtypeCritique Subtype = "critique"
	SubtypeScore    Subtype = "score"
)

// SpeakerModerator marks messages injected by the host between turns
// rather than produced by a participant's call.
const SpeakerModerator = "moderator"

// Message records one turn's outcome. Messages are append-only, ordered by
// creation, and owned by the host's log the moment they are created; the
// engine never keeps them beyond the current call's context window.
type Message struct {
	ID        string    `yaml:"id"`
	Speaker   string    `yaml:"speaker"`
	Content   string    `yaml:"content"`
	Round     int       `yaml:"round"`
	CreatedAt time.Time `yaml:"created_at"`
	Err       string    `yaml:"error,omitempty"`
	Role      string    `yaml:"role,omitempty"`
	Subtype   Subtype   `yaml:"subtype,omitempty"`
	Files     []FileRef `yaml:"files,omitempty"`
}

// Failed reports whether the message records a failed call.
func (m Message) Failed() bool {
	return m.Err != ""
}

// NewMessage builds a message with a fresh identifier.
func NewMessage(speaker, content string, round int, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Content:   content,
		Round:     round,
		CreatedAt: at,
	}
}

/// Cursor tracks the engine's position: the current round and the turn index
// within it. It advances monotonically and resets only at session start.
type Cursor struct {
	Round int
	Turn  int
}
