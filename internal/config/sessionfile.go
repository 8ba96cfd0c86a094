package config

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mirokim/Onion-ring/internal/provider"
	"github.com/mirokim/Onion-ring/internal/session"
)

// SessionFile models a session definition on disk. Participants carry their
// vendor binding inline; API keys and base URLs are resolved from App.
type SessionFile struct {
	ID           string            `yaml:"id"`
	Topic        string            `yaml:"topic"`
	Mode         string            `yaml:"mode"`
	Artwork      string            `yaml:"artwork,omitempty"`
	Rounds       int               `yaml:"rounds"`
	Judge        string            `yaml:"judge,omitempty"`
	Participants []ParticipantSpec `yaml:"participants"`
	Pacing       *session.Pacing   `yaml:"pacing,omitempty"`
	Reference    ReferenceSpec     `yaml:"reference,omitempty"`
}

// ParticipantSpec is one participant entry in a session file.
type ParticipantSpec struct {
	ID       string `yaml:"id"`
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Role     string `yaml:"role,omitempty"`
}

// ReferenceSpec names shared material handed to every participant.
type ReferenceSpec struct {
	Text  string   `yaml:"text,omitempty"`
	Files []string `yaml:"files,omitempty"`
}

// LoadSession parses a session file and resolves it against the app
// configuration into a session config plus per-participant credentials.
// Referenced files are read from disk relative to the session file.
func (a *App) LoadSession(path string) (session.Config, map[string]provider.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return session.Config{}, nil, fmt.Errorf("config: read session file: %w", err)
	}

	var sf SessionFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return session.Config{}, nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := session.Config{
		ID:            strings.TrimSpace(sf.ID),
		Topic:         strings.TrimSpace(sf.Topic),
		Mode:          session.Mode(strings.TrimSpace(sf.Mode)),
		Artwork:       session.ArtworkVariant(strings.TrimSpace(sf.Artwork)),
		Rounds:        sf.Rounds,
		Judge:         strings.TrimSpace(sf.Judge),
		ReferenceText: sf.Reference.Text,
	}
	if cfg.ID == "" {
		cfg.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if sf.Pacing != nil {
		cfg.Pacing = *sf.Pacing
	} else {
		cfg.Pacing = a.Pacing
	}

	creds := make(map[string]provider.Credentials, len(sf.Participants))
	for i, p := range sf.Participants {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return session.Config{}, nil, fmt.Errorf("config: participants[%d]: id is required", i)
		}
		cfg.Participants = append(cfg.Participants, id)
		if role := strings.TrimSpace(p.Role); role != "" {
			if cfg.Roles == nil {
				cfg.Roles = map[string]string{}
			}
			cfg.Roles[id] = role
		}
		creds[id] = a.credentialsFor(p)
	}

	base := filepath.Dir(path)
	for _, name := range sf.Reference.Files {
		ref, err := loadFileRef(base, name)
		if err != nil {
			return session.Config{}, nil, err
		}
		cfg.ReferenceFiles = append(cfg.ReferenceFiles, ref)
	}

	cfg, err = cfg.Normalized()
	if err != nil {
		return session.Config{}, nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, creds, nil
}

func (a *App) credentialsFor(p ParticipantSpec) provider.Credentials {
	auth := a.Providers[strings.TrimSpace(p.Provider)]
	return provider.Credentials{
		Provider: strings.TrimSpace(p.Provider),
		Model:    strings.TrimSpace(p.Model),
		APIKey:   auth.APIKey,
		BaseURL:  auth.BaseURL,
	}
}

func loadFileRef(base, name string) (session.FileRef, error) {
	candidate := strings.TrimSpace(name)
	if candidate == "" {
		return session.FileRef{}, fmt.Errorf("config: reference file name is empty")
	}
	full := candidate
	if !filepath.IsAbs(full) {
		full = filepath.Join(base, candidate)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return session.FileRef{}, fmt.Errorf("config: read reference file: %w", err)
	}
	media := mime.TypeByExtension(filepath.Ext(full))
	if media == "" {
		media = "application/octet-stream"
	}
	if idx := strings.IndexByte(media, ';'); idx >= 0 {
		media = media[:idx]
	}
	return session.FileRef{
		Name:      filepath.Base(full),
		MediaType: media,
		Data:      data,
	}, nil
}
