// internal/config/config.go
//
// This package handles application configuration and the ~/.onionring
// directory structure. Provider keys live in config.yaml (or the
// ONIONRING_* environment); session definitions are standalone YAML
// files loaded per run.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mirokim/Onion-ring/internal/provider"
	"github.com/mirokim/Onion-ring/internal/session"
)

const (
	// AppDir is the name of the directory we create under the user's home.
	AppDir = ".onionring"

	configName = "config"
	configType = "yaml"

	envPrefix = "ONIONRING"
)

const defaultConfigYAML = `# onionring configuration
version: 1

# Provider credentials. Keys can also come from the environment:
#   ONIONRING_PROVIDERS_ANTHROPIC_API_KEY, ONIONRING_PROVIDERS_OPENAI_API_KEY
providers:
  anthropic:
    api_key: ""
  openai:
    api_key: ""
  ollama:
    base_url: "http://localhost:11434"

# Default pacing applied when a session file leaves pacing unset.
pacing:
  mode: timed
  delay_seconds: 5
`

// ProviderAuth holds the per-vendor pieces of a credential set. Model names
// come from the session file; keys and endpoints come from here.
type ProviderAuth struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// App is the runtime configuration for onionring.
type App struct {
	// Home is the ~/.onionring directory.
	Home string

	Providers map[string]ProviderAuth
	Pacing    session.Pacing
}

// Load reads config.yaml from ~/.onionring, seeding a commented default on
// first run. A nil viper instance gets a fresh one; tests inject their own.
func Load(v *viper.Viper) (*App, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("config: resolve home directory: %w", err)
	}
	return LoadAt(v, filepath.Join(homeDir, AppDir))
}

// LoadAt is Load with an explicit home directory.
func LoadAt(v *viper.Viper, home string) (*App, error) {
	if v == nil {
		v = viper.New()
	}

	if err := ensureHome(home); err != nil {
		return nil, err
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(home)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("pacing.mode", string(session.PacingTimed))
	v.SetDefault("pacing.delay_seconds", 5)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	app := &App{
		Home:      home,
		Providers: map[string]ProviderAuth{},
		Pacing: session.Pacing{
			Mode:         session.PacingMode(v.GetString("pacing.mode")),
			DelaySeconds: v.GetInt("pacing.delay_seconds"),
		},
	}
	if err := v.UnmarshalKey("providers", &app.Providers); err != nil {
		return nil, fmt.Errorf("config: parse providers: %w", err)
	}

	// Environment overrides bind per key; viper's UnmarshalKey does not
	// see AutomaticEnv values, so pick up the common ones explicitly.
	for _, name := range []string{provider.ProviderAnthropic, provider.ProviderOpenAI, provider.ProviderOllama} {
		auth := app.Providers[name]
		if key := v.GetString("providers." + name + ".api_key"); key != "" {
			auth.APIKey = key
		}
		if base := v.GetString("providers." + name + ".base_url"); base != "" {
			auth.BaseURL = base
		}
		app.Providers[name] = auth
	}

	return app, nil
}

// LogsDir returns the directory run logs are written under.
func (a *App) LogsDir() string {
	return filepath.Join(a.Home, "logs")
}

// StoreDir returns the directory saved session bundles live in.
func (a *App) StoreDir() string {
	return filepath.Join(a.Home, "sessions")
}

func ensureHome(home string) error {
	dirs := []string{
		home,
		filepath.Join(home, "logs"),
		filepath.Join(home, "sessions"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: ensure %s: %w", dir, err)
		}
	}
	return ensureDefaultConfig(filepath.Join(home, configName+"."+configType))
}

func ensureDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
