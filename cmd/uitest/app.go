package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/hairizuan-noorazman/ui-bdd/config"
	"github.com/hairizuan-noorazman/ui-bdd/database"
	"github.com/hairizuan-noorazman/ui-bdd/driver"
	"github.com/hairizuan-noorazman/ui-bdd/driver/cdpdriver"
	"github.com/hairizuan-noorazman/ui-bdd/driver/pwdriver"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/hairizuan-noorazman/ui-bdd/report"
	"github.com/hairizuan-noorazman/ui-bdd/runhistory"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

// app holds what every subcommand needs.
type app struct {
	cfg    config.Config
	log    logger.Logger
	fs     afero.Fs
	closer []func() error
}

// loadApp reads the config file and builds the configured logger.
func loadApp() (*app, error) {
	bootstrap := logger.NewLogrusLogger("info")
	cfg, err := config.Load(flagConfig, bootstrap)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newApp(cfg), nil
}

func newApp(cfg config.Config) *app {
	log := logger.NewLogrusLoggerWithOptions(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	return &app{cfg: cfg, log: log, fs: afero.NewOsFs()}
}

// Close runs the registered cleanups in reverse order.
func (a *app) Close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		if err := a.closer[i](); err != nil {
			a.log.Warn(context.Background(), "cleanup failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (a *app) reports() *report.Manager {
	return report.NewManager(a.fs, a.cfg.ReportPath, a.cfg.ReportRetentionCount, a.log)
}

// launcher returns the configured browser backend.
func (a *app) launcher() (driver.Launcher, error) {
	switch strings.ToLower(a.cfg.Driver.Backend) {
	case "playwright", "":
		l := pwdriver.NewLauncher(a.log)
		a.closer = append(a.closer, l.Close)
		return l, nil
	case "chromedp":
		return cdpdriver.NewLauncher(a.log), nil
	default:
		return nil, fmt.Errorf("unsupported driver backend: %s", a.cfg.Driver.Backend)
	}
}

// openHistory connects to the history database. With migrate set the
// schema is brought up to date first.
func (a *app) openHistory(migrate bool) (*gorm.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:       a.cfg.History.Driver,
		DSN:          a.cfg.History.DSN,
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	a.closer = append(a.closer, sqlDB.Close)

	if migrate {
		if err := database.RunMigrations(sqlDB, a.cfg.History.Driver); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// historyStores opens the history stores, or returns nils when history is
// disabled.
func (a *app) historyStores(migrate bool) (runhistory.Store, runhistory.AssetStore, error) {
	if !a.cfg.History.Enabled {
		return nil, nil, nil
	}
	db, err := a.openHistory(migrate)
	if err != nil {
		return nil, nil, err
	}
	return runhistory.NewSQLStore(db, a.log), runhistory.NewSQLAssetStore(db, a.log), nil
}
