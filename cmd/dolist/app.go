package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nick-dorsch/dolist/internal/config"
	"github.com/nick-dorsch/dolist/internal/db"
	"github.com/nick-dorsch/dolist/internal/filestore"
	"github.com/nick-dorsch/dolist/internal/logger"
	"github.com/nick-dorsch/dolist/internal/notify"
	"github.com/nick-dorsch/dolist/internal/tasks"
	"github.com/nick-dorsch/dolist/internal/watch"
	"github.com/nick-dorsch/dolist/pkg/models"
)

// backend is what both storage adapters offer beyond tasks.Persister.
type backend interface {
	tasks.Persister
	ExportSnapshot(ctx context.Context, path string) error
	ImportSnapshot(ctx context.Context, path string) ([]models.Task, error)
	Close() error
}

// app is the wiring shared by every command: config, logger, storage and
// the task store on top of it.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	snapshots backend
	store     *tasks.Store
	watcher   *watch.Watcher
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// applyFlags layers the global command-line flags over cfg.
func applyFlags(cfg *config.Config) {
	if storageKind != "" {
		cfg.Storage.Backend = storageKind
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if dataFile != "" {
		cfg.Storage.DataFile = dataFile
	}
	if snapshotPath != "" {
		cfg.Storage.SnapshotPath = snapshotPath
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
}

func openApp(extra ...notify.Notifier) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openAppWith(cfg, extra...)
}

func openAppWith(cfg *config.Config, extra ...notify.Notifier) (*app, error) {
	log := logger.New(cfg.Logging)

	b, err := openBackend(cfg, log)
	if err != nil {
		return nil, err
	}

	notifiers := notify.Multi{notify.Log{Logger: log}}
	notifiers = append(notifiers, extra...)
	store := tasks.NewStore(b,
		tasks.WithLogger(log),
		tasks.WithNotifier(notifiers))

	// A failed load leaves an empty, usable list; the store logs why.
	_ = store.Load(context.Background())

	return &app{cfg: cfg, logger: log, snapshots: b, store: store}, nil
}

func openBackend(cfg *config.Config, log *slog.Logger) (backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendJSON:
		fs, err := filestore.New(cfg.Storage.DataFile)
		if err != nil {
			return nil, err
		}
		log.Debug("using json storage", "path", fs.Path())
		return fs, nil

	default:
		database, err := db.Open(cfg.Storage.DBPath)
		if err != nil {
			return nil, err
		}
		if err := database.Init(context.Background()); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if path := cfg.Storage.SnapshotPath; path != "" {
			database.EnableAutoSnapshot(path, log)
		}
		log.Debug("using sqlite storage", "path", cfg.Storage.DBPath)
		return database, nil
	}
}

// importSnapshot replaces the stored tasks with a snapshot file and
// refreshes the in-memory list.
func (a *app) importSnapshot(ctx context.Context, path string) error {
	if _, err := a.snapshots.ImportSnapshot(ctx, path); err != nil {
		return err
	}
	if err := a.store.Reload(ctx); err != nil {
		return fmt.Errorf("failed to reload tasks: %w", err)
	}
	return nil
}

// watch reloads the store when another process changes the data file. A
// watcher that cannot start is logged and otherwise ignored.
func (a *app) watch() {
	if !a.cfg.Storage.Watch || a.cfg.Storage.StoragePath() == ":memory:" {
		return
	}
	w, err := watch.New(a.cfg.Storage.StoragePath(), a.store, watch.WithLogger(a.logger))
	if err == nil {
		err = w.Start()
	}
	if err != nil {
		a.logger.Warn("not watching for external changes", "error", err)
		if w != nil {
			w.Close()
		}
		return
	}
	a.watcher = w
}

func (a *app) Close() error {
	if a.watcher != nil {
		a.watcher.Close()
	}
	return a.snapshots.Close()
}
