package store

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirokim/Onion-ring/internal/session"
)

func sampleSession() (session.Config, []session.Message) {
	cfg := session.Config{
		ID:           "etching-night",
		Topic:        "the etching",
		Mode:         session.ModeArtwork,
		Artwork:      session.ArtworkCritique,
		Participants: []string{"claude", "gpt"},
		Rounds:       1,
		Pacing:       session.Pacing{Mode: session.PacingManual},
		ReferenceFiles: []session.FileRef{
			{Name: "etching.png", MediaType: "image/png", Data: []byte{0x89, 0x50}},
		},
	}
	at := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	msgs := []session.Message{
		{ID: "m1", Speaker: "claude", Content: "a confident line", Round: 1, CreatedAt: at, Subtype: session.SubtypeCritique},
		{ID: "m2", Speaker: "gpt", Content: "", Round: 1, CreatedAt: at.Add(time.Minute), Err: "rate limited", Subtype: session.SubtypeCritique},
	}
	return cfg, msgs
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	cfg, msgs := sampleSession()
	require.NoError(t, s.Save(cfg, msgs))

	gotCfg, gotMsgs, err := s.Load("etching-night")
	require.NoError(t, err)
	assert.Equal(t, cfg.Topic, gotCfg.Topic)
	assert.Equal(t, cfg.Participants, gotCfg.Participants)
	require.Len(t, gotMsgs, 2)
	assert.Equal(t, "a confident line", gotMsgs[0].Content)
	assert.Equal(t, "rate limited", gotMsgs[1].Err)
	require.Len(t, gotCfg.ReferenceFiles, 1)
	assert.Equal(t, []byte{0x89, 0x50}, gotCfg.ReferenceFiles[0].Data, "file bytes restored from files/")
}

func TestSaveReplacesPriorBundle(t *testing.T) {
	s := New(t.TempDir())
	cfg, msgs := sampleSession()
	require.NoError(t, s.Save(cfg, msgs[:1]))
	require.NoError(t, s.Save(cfg, msgs))
	_, gotMsgs, err := s.Load(cfg.ID)
	require.NoError(t, err)
	assert.Len(t, gotMsgs, 2)
}

func TestLoadMissingBundle(t *testing.T) {
	s := New(t.TempDir())
	_, _, err := s.Load("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := New(t.TempDir(), WithClock(func() time.Time { return clock() }))

	cfg, msgs := sampleSession()
	older := cfg.Clone()
	older.ID = "older"
	require.NoError(t, s.Save(older, msgs))

	now = now.Add(time.Hour)
	require.NoError(t, s.Save(cfg, msgs))

	ids, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"etching-night", "older"}, ids)
}

func TestListEmptyRoot(t *testing.T) {
	s := New(t.TempDir() + "/missing")
	ids, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestExportMarkdown(t *testing.T) {
	cfg, msgs := sampleSession()
	var buf bytes.Buffer
	require.NoError(t, ExportMarkdown(&buf, cfg, msgs))
	out := buf.String()
	assert.Contains(t, out, "# the etching")
	assert.Contains(t, out, "## Round 1")
	assert.Contains(t, out, "critique")
	assert.Contains(t, out, "a confident line")
	assert.Contains(t, out, "call failed: rate limited")
}
