// internal/session/session.go
//
// Shared data types for a debate session: the immutable configuration,
// pacing settings, and reference files. The engine validates and freezes a
// Config at start; nothing mutates it afterwards.

package session

import (
	"fmt"
	"strings"
)

// Mode selects how participants interact during a session.
type Mode string

const (
	// ModeSequential gives every participant one turn per round in the
	// configured order.
	ModeSequential Mode = "sequential"
	// ModeDiscussion is a free-form exchange on the topic.
	ModeDiscussion Mode = "discussion"
	// ModeRoles assigns each participant a persona to argue from.
	ModeRoles Mode = "roles"
	// ModeAdversarial is a debate scored once per round by a judge.
	ModeAdversarial Mode = "adversarial"
	// ModeArtwork centers the exchange on an attached work instead of a
	// topic; see ArtworkVariant for the sub-modes.
	ModeArtwork Mode = "artwork"
)

// ArtworkVariant selects the behavior of ModeArtwork sessions.
type ArtworkVariant string

const (
	// ArtworkDiscussion is an open multi-round conversation about the work.
	ArtworkDiscussion ArtworkVariant = "discussion"
	// ArtworkCritique has each participant deliver one independent critique.
	ArtworkCritique ArtworkVariant = "critique"
	// ArtworkScore has each participant score the work against a rubric.
	ArtworkScore ArtworkVariant = "score"
)

// PacingMode selects how the engine waits between turns.
type PacingMode string

const (
	// PacingTimed counts down a fixed delay between turns.
	PacingTimed PacingMode = "timed"
	// PacingManual blocks until the host signals advancement.
	PacingManual PacingMode = "manual"
)

// Pacing configures the inter-turn delay policy.
type Pacing struct {
	Mode         PacingMode `yaml:"mode"`
	DelaySeconds int        `yaml:"delay_seconds,omitempty"`
}

// FileKind classifies a reference file for structured transport.
type FileKind string

const (
	FileImage    FileKind = "image"
	FileDocument FileKind = "document"
)

// FileRef is a reference file attached to a session or message. Data is
// carried as raw bytes and only ever transported as a structured content
// block, never inlined into prompt text.
type FileRef struct {
	Name      string `yaml:"name"`
	MediaType string `yaml:"media_type"`
	Data      []byte `yaml:"data,omitempty"`
}

// Kind derives the structured block type from the media type.
func (f FileRef) Kind() FileKind {
	if strings.HasPrefix(f.MediaType, "image/") {
		return FileImage
	}
	return FileDocument
}

// Config describes one session. It is validated and frozen when a run
// starts; the engine only ever reads it.
type Config struct {
	ID             string            `yaml:"id"`
	Topic          string            `yaml:"topic"`
	Mode           Mode              `yaml:"mode"`
	Artwork        ArtworkVariant    `yaml:"artwork,omitempty"`
	Participants   []string          `yaml:"participants"`
	Judge          string            `yaml:"judge,omitempty"`
	Rounds         int               `yaml:"rounds"`
	Roles          map[string]string `yaml:"roles,omitempty"`
	Pacing         Pacing            `yaml:"pacing"`
	ReferenceText  string            `yaml:"reference_text,omitempty"`
	ReferenceFiles []FileRef         `yaml:"reference_files,omitempty"`
}

// Clone returns a deep copy of the configuration.
func (c Config) Clone() Config {
	clone := c
	if len(c.Participants) > 0 {
		clone.Participants = make([]string, len(c.Participants))
		copy(clone.Participants, c.Participants)
	}
	if len(c.Roles) > 0 {
		clone.Roles = make(map[string]string, len(c.Roles))
		for id, role := range c.Roles {
			clone.Roles[id] = role
		}
	}
	if len(c.ReferenceFiles) > 0 {
		clone.ReferenceFiles = make([]FileRef, len(c.ReferenceFiles))
		copy(clone.ReferenceFiles, c.ReferenceFiles)
	}
	return clone
}

// Validate ensures the configuration is self-consistent.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Topic) == "" && c.Mode != ModeArtwork {
		return fmt.Errorf("session: topic is required")
	}
	switch c.Mode {
	case ModeSequential, ModeDiscussion, ModeRoles, ModeAdversarial, ModeArtwork:
	default:
		return fmt.Errorf("session: unknown mode %q", c.Mode)
	}
	if len(c.Participants) == 0 {
		return fmt.Errorf("session: at least one participant is required")
	}
	seen := map[string]struct{}{}
	for idx, id := range c.Participants {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("session: participant[%d] id is empty", idx)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("session: duplicate participant %s", id)
		}
		seen[id] = struct{}{}
	}
	if c.Mode == ModeAdversarial {
		if c.Judge == "" {
			return fmt.Errorf("session: adversarial mode requires a judge")
		}
		if _, ok := seen[c.Judge]; !ok {
			return fmt.Errorf("session: judge %s is not a participant", c.Judge)
		}
		if len(c.Participants) < 2 {
			return fmt.Errorf("session: adversarial mode requires at least one debater besides the judge")
		}
	}
	if c.Mode == ModeArtwork {
		switch c.Artwork {
		case ArtworkDiscussion, ArtworkCritique, ArtworkScore:
		default:
			return fmt.Errorf("session: unknown artwork variant %q", c.Artwork)
		}
		if len(c.ReferenceFiles) == 0 && strings.TrimSpace(c.ReferenceText) == "" {
			return fmt.Errorf("session: artwork mode requires a reference file or reference text")
		}
	}
	if c.Rounds < 1 {
		return fmt.Errorf("session: rounds must be >= 1")
	}
	switch c.Pacing.Mode {
	case PacingTimed, PacingManual:
	default:
		return fmt.Errorf("session: unknown pacing mode %q", c.Pacing.Mode)
	}
	if c.Pacing.Mode == PacingTimed && c.Pacing.DelaySeconds < 0 {
		return fmt.Errorf("session: pacing delay must be >= 0")
	}
	for id := range c.Roles {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("session: role assignment for unknown participant %s", id)
		}
	}
	return nil
}

// Normalized clones the configuration, applies defaults, and validates the
// result. Engines operate on normalized configs only.
func (c Config) Normalized() (Config, error) {
	clone := c.Clone()
	if clone.Pacing.Mode == "" {
		clone.Pacing.Mode = PacingTimed
	}
	if clone.Rounds == 0 {
		clone.Rounds = 1
	}
	if clone.Mode != ModeArtwork {
		clone.Artwork = ""
	}
	if err := clone.Validate(); err != nil {
		return Config{}, err
	}
	return clone, nil
}

// EffectiveRounds returns the round limit after mode adjustments: the
// single-statement artwork variants always run exactly one round.
func (c Config) EffectiveRounds() int {
	if c.Mode == ModeArtwork && (c.Artwork == ArtworkCritique || c.Artwork == ArtworkScore) {
		return 1
	}
	return c.Rounds
}

// TurnOrder returns the participants that take regular turns each round.
// In adversarial mode the judge is excluded; it speaks once per round after
// all debaters instead.
func (c Config) TurnOrder() []string {
	if c.Mode != ModeAdversarial || c.Judge == "" {
		order := make([]string, len(c.Participants))
		copy(order, c.Participants)
		return order
	}
	order := make([]string, 0, len(c.Participants))
	for _, id := range c.Participants {
		if id == c.Judge {
			continue
		}
		order = append(order, id)
	}
	return order
}

// RoleFor returns the assigned role label for a participant, or "" when the
// participant argues as itself.
func (c Config) RoleFor(id string) string {
	if c.Roles == nil {
		return ""
	}
	return c.Roles[id]
}
