package session

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		ID:           "test",
		Topic:        "should tabs beat spaces",
		Mode:         ModeSequential,
		Participants: []string{"claude", "gpt"},
		Rounds:       2,
		Pacing:       Pacing{Mode: PacingTimed, DelaySeconds: 1},
	}
}

func TestNormalizedAppliesDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Pacing.Mode = ""
	cfg.Rounds = 0
	normalized, err := cfg.Normalized()
	if err != nil {
		t.Fatalf("normalized: %v", err)
	}
	if normalized.Pacing.Mode != PacingTimed {
		t.Fatalf("expected timed pacing default, got %s", normalized.Pacing.Mode)
	}
	if normalized.Rounds != 1 {
		t.Fatalf("expected 1 round default, got %d", normalized.Rounds)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := map[string]func(*Config){
		"missing topic":        func(c *Config) { c.Topic = "" },
		"unknown mode":         func(c *Config) { c.Mode = "karaoke" },
		"no participants":      func(c *Config) { c.Participants = nil },
		"duplicate ids":        func(c *Config) { c.Participants = []string{"claude", "claude"} },
		"zero rounds":          func(c *Config) { c.Rounds = -1 },
		"bad pacing":           func(c *Config) { c.Pacing.Mode = "sometimes" },
		"role for unknown id":  func(c *Config) { c.Roles = map[string]string{"ghost": "optimist"} },
		"judge not in roster":  func(c *Config) { c.Mode = ModeAdversarial; c.Judge = "ghost" },
		"adversarial no judge": func(c *Config) { c.Mode = ModeAdversarial },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestArtworkRequiresReference(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = ModeArtwork
	cfg.Artwork = ArtworkCritique
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error without reference material")
	}
	cfg.ReferenceFiles = []FileRef{{Name: "work.png", MediaType: "image/png"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestEffectiveRoundsForcesSingleRoundVariants(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = ModeArtwork
	cfg.ReferenceText = "a short poem"
	cfg.Rounds = 5
	for variant, want := range map[ArtworkVariant]int{
		ArtworkDiscussion: 5,
		ArtworkCritique:   1,
		ArtworkScore:      1,
	} {
		cfg.Artwork = variant
		if got := cfg.EffectiveRounds(); got != want {
			t.Fatalf("%s: expected %d rounds, got %d", variant, want, got)
		}
	}
}

func TestTurnOrderExcludesJudge(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = ModeAdversarial
	cfg.Participants = []string{"claude", "gpt", "gemini"}
	cfg.Judge = "gemini"
	order := cfg.TurnOrder()
	if len(order) != 2 || order[0] != "claude" || order[1] != "gpt" {
		t.Fatalf("unexpected turn order: %v", order)
	}
}

func TestFileRefKind(t *testing.T) {
	if kind := (FileRef{MediaType: "image/png"}).Kind(); kind != FileImage {
		t.Fatalf("expected image kind, got %s", kind)
	}
	if kind := (FileRef{MediaType: "application/pdf"}).Kind(); kind != FileDocument {
		t.Fatalf("expected document kind, got %s", kind)
	}
}

func TestNewMessageAssignsIdentity(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := NewMessage("claude", "hello", 1, at)
	if msg.ID == "" {
		t.Fatalf("expected generated id")
	}
	if msg.Failed() {
		t.Fatalf("fresh message should not be failed")
	}
	if !msg.CreatedAt.Equal(at) {
		t.Fatalf("expected creation time %v, got %v", at, msg.CreatedAt)
	}
}
