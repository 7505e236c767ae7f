package cmd

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/ziadkadry99/riskpanes/internal/audit"
	"github.com/ziadkadry99/riskpanes/internal/config"
	"github.com/ziadkadry99/riskpanes/internal/content"
	"github.com/ziadkadry99/riskpanes/internal/db"
	"github.com/ziadkadry99/riskpanes/internal/fetch"
	"github.com/ziadkadry99/riskpanes/internal/pages"
	"github.com/ziadkadry99/riskpanes/internal/pane"
	"github.com/ziadkadry99/riskpanes/internal/panes"
	"github.com/ziadkadry99/riskpanes/internal/storage"
	"github.com/ziadkadry99/riskpanes/web"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `riskpanes init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// workspace is everything a command needs to build pages.
type workspace struct {
	cfg      *config.Config
	database *db.DB
	audit    *audit.Store
	slots    *storage.Store
	fetcher  fetch.Fetcher
	data     fs.FS // nil when data is fetched from a remote base URL
	pages    *pages.Builder
}

// openWorkspace loads the config and wires storage, data, content and the
// pane registry. Callers must Close the workspace.
func openWorkspace() (*workspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	fetcher, data, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	contentFS := web.Content()
	if cfg.ContentDir != "" {
		contentFS = os.DirFS(cfg.ContentDir)
	}
	lib, err := content.Load(contentFS)
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	reg := pane.NewRegistry()
	slots := storage.NewStore(database)
	deps := panes.Deps{Fetcher: fetcher, Slots: slots, Content: lib}
	if err := panes.RegisterAll(reg, deps); err != nil {
		database.Close()
		return nil, fmt.Errorf("registering panes: %w", err)
	}

	trail := audit.NewStore(database)
	return &workspace{
		cfg:      cfg,
		database: database,
		audit:    trail,
		slots:    slots,
		fetcher:  fetcher,
		data:     data,
		pages: &pages.Builder{
			Registry:   reg,
			Shells:     web.Shells(),
			StorageKey: cfg.StorageKey,
			Recorder:   trail,
		},
	}, nil
}

// dataSource picks the fetcher for the configured data source.
func dataSource(cfg *config.Config) (fetch.Fetcher, fs.FS, error) {
	switch cfg.DataSource() {
	case "url":
		f, err := fetch.NewHTTPFetcher(cfg.DataBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return f, nil, nil
	case "dir":
		if _, err := os.Stat(cfg.DataDir); err != nil {
			return nil, nil, fmt.Errorf("data directory: %w", err)
		}
		f := fetch.NewDirFetcher(cfg.DataDir)
		return f, f.FS, nil
	default:
		return fetch.FSFetcher{FS: web.Data()}, web.Data(), nil
	}
}

func (w *workspace) Close() error {
	return w.database.Close()
}
