// Package cli holds the command actions behind the reportdex CLI.
package cli

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"reportdex/internal/api"
	"reportdex/models"
	"reportdex/pkg/db"
	"reportdex/pkg/index"
	"reportdex/pkg/report"
	"reportdex/pkg/watch"
)

// loadConfig merges the optional config file with CLI flag overrides.
func loadConfig(c *cli.Context) (models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("dir") {
		cfg.ReportsDir = c.String("dir")
	}
	if c.IsSet("db") {
		cfg.DatabasePath = c.String("db")
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("addr") {
		cfg.ListenAddr = c.String("addr")
	}
	if c.IsSet("watch") {
		cfg.Watch = c.Bool("watch")
	}
	if c.IsSet("refresh-interval") {
		cfg.RefreshIntervalSec = c.Int("refresh-interval")
	}
	return cfg, nil
}

// openBackend constructs the configured backend. The returned cleanup
// closes whatever the backend holds open.
func openBackend(cfg models.Config) (report.Backend, func(), error) {
	switch cfg.Backend {
	case "sqlite":
		store, err := db.Open(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "memory", "":
		ix, err := index.New(cfg.ReportsDir,
			index.WithRefreshInterval(time.Duration(cfg.RefreshIntervalSec)*time.Second))
		if err != nil {
			return nil, nil, err
		}
		return ix, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

// ServeAction runs the HTTP API over the configured backend.
func ServeAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	backend, cleanup, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to open backend: %w", err)
	}
	defer cleanup()

	if ix, ok := backend.(*index.Index); ok && cfg.Watch {
		w, err := watch.New(cfg.ReportsDir, func() { ix.ForceRefresh() })
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Close()
		log.Printf("watching %s for report changes", cfg.ReportsDir)
	}

	svc := report.NewService(backend)
	count, err := svc.Count()
	if err != nil {
		return fmt.Errorf("failed to read report count: %w", err)
	}
	log.Printf("serving %d reports on %s (backend=%s)", count, cfg.ListenAddr, cfg.Backend)

	return http.ListenAndServe(cfg.ListenAddr, api.NewServer(svc))
}

// RebuildAction forces one full index rebuild and reports the count.
func RebuildAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ix, err := index.New(cfg.ReportsDir)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	n := ix.ForceRefresh()
	fmt.Printf("indexed %d reports from %s\n", n, cfg.ReportsDir)
	return nil
}

// ImportAction loads a report directory into the SQLite table.
func ImportAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	n, err := store.ImportDir(cfg.ReportsDir)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d reports into %s\n", n, cfg.DatabasePath)
	return nil
}

// StatsAction prints the report count for the configured backend.
func StatsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	backend, cleanup, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to open backend: %w", err)
	}
	defer cleanup()

	count, err := backend.Count()
	if err != nil {
		return err
	}
	fmt.Printf("%d reports (backend=%s)\n", count, cfg.Backend)
	return nil
}
