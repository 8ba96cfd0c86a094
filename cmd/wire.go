package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mirokim/Onion-ring/internal/config"
	"github.com/mirokim/Onion-ring/internal/logging"
	"github.com/mirokim/Onion-ring/internal/provider"
	"github.com/mirokim/Onion-ring/internal/store"
)

type app struct {
	cfg        *config.App
	log        *logging.Logger
	store      *store.Store
	httpClient *http.Client
}

func wireApp() (*app, error) {
	home := os.Getenv("ONIONRING_HOME")
	if home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		home = filepath.Join(homeDir, config.AppDir)
	}

	cfg, err := config.LoadAt(viper.New(), home)
	if err != nil {
		return nil, fmt.Errorf("wire configuration: %w", err)
	}

	log, err := logging.New(cfg.Home)
	if err != nil {
		return nil, fmt.Errorf("wire run log: %w", err)
	}

	return &app{
		cfg:        cfg,
		log:        log,
		store:      store.New(cfg.StoreDir()),
		httpClient: http.DefaultClient,
	}, nil
}

func (a *app) client() provider.Client {
	return &provider.Router{HTTPClient: a.httpClient}
}
