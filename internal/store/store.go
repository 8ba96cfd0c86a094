// internal/store/store.go
//
// Bundle persistence for finished or stopped sessions. Each session becomes
// a directory under the store root: session.yaml (the frozen config),
// transcript.yaml (every message), and files/ for reference attachments.
// Writes go through a temp directory and a rename so a crash never leaves
// a half-written bundle behind.

package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mirokim/Onion-ring/internal/session"
)

// ErrNotFound reports that no bundle exists for a session id.
var ErrNotFound = errors.New("store: session not found")

// Store manages session bundles rooted at one directory.
type Store struct {
	root string
	now  func() time.Time
}

// Option customizes a Store during construction.
type Option func(*Store)

// WithClock overrides the clock used for bundle metadata.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// New builds a store rooted at dir.
func New(root string, opts ...Option) *Store {
	s := &Store{root: root, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type bundleMeta struct {
	SessionID string    `yaml:"session_id"`
	SavedAt   time.Time `yaml:"saved_at"`
	Messages  int       `yaml:"messages"`
}

type transcript struct {
	Messages []session.Message `yaml:"messages"`
}

// Save writes the session bundle atomically, replacing any prior bundle for
// the same id.
func (s *Store) Save(cfg session.Config, msgs []session.Message) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("store: session id is required")
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("store: ensure root: %w", err)
	}
	tmp, err := os.MkdirTemp(s.root, "."+cfg.ID+"-")
	if err != nil {
		return fmt.Errorf("store: create staging dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := writeYAML(filepath.Join(tmp, "session.yaml"), stripFileData(cfg)); err != nil {
		return err
	}
	if err := writeYAML(filepath.Join(tmp, "transcript.yaml"), transcript{Messages: msgs}); err != nil {
		return err
	}
	meta := bundleMeta{SessionID: cfg.ID, SavedAt: s.now().UTC(), Messages: len(msgs)}
	if err := writeYAML(filepath.Join(tmp, "bundle.yaml"), meta); err != nil {
		return err
	}
	if len(cfg.ReferenceFiles) > 0 {
		filesDir := filepath.Join(tmp, "files")
		if err := os.MkdirAll(filesDir, 0o755); err != nil {
			return fmt.Errorf("store: ensure files dir: %w", err)
		}
		for _, ref := range cfg.ReferenceFiles {
			name := filepath.Base(ref.Name)
			if err := os.WriteFile(filepath.Join(filesDir, name), ref.Data, 0o644); err != nil {
				return fmt.Errorf("store: write %s: %w", name, err)
			}
		}
	}

	final := s.bundleDir(cfg.ID)
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("store: clear prior bundle: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("store: publish bundle: %w", err)
	}
	return nil
}

// Load reads a bundle back. Reference file bytes are restored from files/.
func (s *Store) Load(id string) (session.Config, []session.Message, error) {
	dir := s.bundleDir(id)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return session.Config{}, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return session.Config{}, nil, fmt.Errorf("store: stat bundle: %w", err)
	}
	var cfg session.Config
	if err := readYAML(filepath.Join(dir, "session.yaml"), &cfg); err != nil {
		return session.Config{}, nil, err
	}
	var trans transcript
	if err := readYAML(filepath.Join(dir, "transcript.yaml"), &trans); err != nil {
		return session.Config{}, nil, err
	}
	for i, ref := range cfg.ReferenceFiles {
		data, err := os.ReadFile(filepath.Join(dir, "files", filepath.Base(ref.Name)))
		if err == nil {
			cfg.ReferenceFiles[i].Data = data
		}
	}
	return cfg, trans.Messages, nil
}

// List returns the stored session ids, newest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read root: %w", err)
	}
	type stamped struct {
		id string
		at time.Time
	}
	var found []stamped
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		var meta bundleMeta
		if err := readYAML(filepath.Join(s.root, entry.Name(), "bundle.yaml"), &meta); err != nil {
			continue
		}
		found = append(found, stamped{id: meta.SessionID, at: meta.SavedAt})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].at.After(found[j].at) })
	ids := make([]string, len(found))
	for i, item := range found {
		ids[i] = item.id
	}
	return ids, nil
}

func (s *Store) bundleDir(id string) string {
	return filepath.Join(s.root, filepath.Base(id))
}

// stripFileData drops raw reference bytes from the config written to yaml;
// the bytes live in files/ instead.
func stripFileData(cfg session.Config) session.Config {
	clone := cfg.Clone()
	for i := range clone.ReferenceFiles {
		clone.ReferenceFiles[i].Data = nil
	}
	return clone
}

func writeYAML(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("store: read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("store: decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
