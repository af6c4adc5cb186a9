package main

import (
	"errors"
	"path/filepath"

	"seace-engine/internal/classify"
	"seace-engine/internal/config"
	"seace-engine/internal/logger"
	"seace-engine/internal/render"
	"seace-engine/internal/scrape/seace"
	"seace-engine/internal/store"
)

const dbFile = "seace.db"

// engine holds what serve and crawl share: one browser launcher and the
// SEACE scraper built on it.
type engine struct {
	cfg      config.Config
	log      logger.Logger
	launcher *render.Launcher
	scraper  *seace.Scraper
}

func newEngine(cfg config.Config, log logger.Logger) (*engine, error) {
	tx, err := classify.NewTaxonomy(cfg.Taxonomy)
	if err != nil {
		return nil, err
	}
	launcher := render.NewLauncher(render.LaunchOptions{
		Headless:       cfg.Browser.Headless,
		ExecutablePath: cfg.Browser.ExecutablePath,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		Args:           cfg.Browser.Args,
		InstallDriver:  cfg.Browser.InstallDriver,
	}, log)
	sc, err := seace.New(cfg, tx, launcher, log)
	if err != nil {
		return nil, err
	}
	return &engine{cfg: cfg, log: log, launcher: launcher, scraper: sc}, nil
}

func (e *engine) Close() {
	if err := e.launcher.Close(); err != nil {
		e.log.Warn("close browser", logger.Err(err))
	}
}

// openStore opens and migrates the run history. ErrLocked is returned as is
// so callers can decide to run without history.
func openStore(cfg config.Config) (*store.DB, error) {
	db, err := store.Open(filepath.Join(cfg.App.DataDir, dbFile))
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(db.Pool); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func isLocked(err error) bool { return errors.Is(err, store.ErrLocked) }
