package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/myenglish-lookup/internal/adapter/postgres"
	"github.com/heartmarshall/myenglish-lookup/internal/adapter/postgres/wordstore"
	"github.com/heartmarshall/myenglish-lookup/internal/adapter/provider/freedict"
	"github.com/heartmarshall/myenglish-lookup/internal/adapter/sqlite"
	"github.com/heartmarshall/myenglish-lookup/internal/config"
	"github.com/heartmarshall/myenglish-lookup/internal/domain"
	"github.com/heartmarshall/myenglish-lookup/internal/observe"
	"github.com/heartmarshall/myenglish-lookup/internal/service/lookup"
	"github.com/heartmarshall/myenglish-lookup/internal/service/narration"
	"github.com/heartmarshall/myenglish-lookup/internal/service/search"
	"github.com/heartmarshall/myenglish-lookup/internal/service/speech"
)

// Platform supplies the device capabilities. Narration may be nil, which
// disables read-aloud.
type Platform struct {
	Speech     speech.Engine
	Permission speech.PermissionGate
	Narration  narration.Engine
}

type wordCache interface {
	FindByInfix(ctx context.Context, fragment string) ([]domain.WordRecord, error)
	ReplaceAll(ctx context.Context, records []domain.WordRecord) error
	AllByRecency(ctx context.Context) ([]domain.WordRecord, error)
}

// App holds the wired components.
type App struct {
	Controller *lookup.Controller
	Pipeline   *search.Pipeline

	log       *slog.Logger
	closeFunc []func() error
}

// New opens the word cache, migrating it when configured, and wires the
// search pipeline, speech session and narration behind a Controller.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, platform Platform) (*App, error) {
	if platform.Speech == nil || platform.Permission == nil {
		return nil, errors.New("app: speech engine and permission gate are required")
	}

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("store", cfg.Store.Driver),
		slog.String("log_level", cfg.Log.Level),
	)

	a := &App{log: logger}

	cache, err := a.openCache(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	metrics := observe.DefaultMetrics()

	dict := freedict.NewProvider(cfg.Dictionary, metrics, logger)
	a.Pipeline = search.NewPipeline(logger, cache, dict, metrics, cfg.Search)
	feed := search.NewFeed(logger, a.Pipeline)

	session := speech.NewSession(logger, platform.Speech, platform.Permission, metrics, cfg.Speech)
	if platform.Narration == nil {
		logger.Warn("text-to-speech unavailable, narration disabled")
	}
	narrator := narration.NewSequencer(logger, platform.Narration, metrics)

	a.Controller = lookup.NewController(logger, feed, session, narrator)
	a.closeFunc = append(a.closeFunc, a.Controller.Close)

	return a, nil
}

func (a *App) openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (wordCache, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closeFunc = append(a.closeFunc, func() error { pool.Close(); return nil })

		if cfg.Store.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, logger); err != nil {
				return nil, fmt.Errorf("migrate database: %w", err)
			}
		}
		return wordstore.New(pool, postgres.NewTxManager(pool)), nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		a.closeFunc = append(a.closeFunc, db.Close)

		if cfg.Store.AutoMigrate {
			if err := sqlite.Migrate(ctx, db, logger); err != nil {
				return nil, fmt.Errorf("migrate sqlite: %w", err)
			}
		}
		return sqlite.NewWordStore(db), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// Close releases components in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closeFunc) - 1; i >= 0; i-- {
		errs = append(errs, a.closeFunc[i]())
	}
	a.closeFunc = nil
	return errors.Join(errs...)
}
