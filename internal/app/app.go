// Package app wires configuration into the scan service graph shared by the
// CLI and the daemon.
package app

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/pricetag-ocr/internal/analysis"
	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
	"github.com/joseph-ayodele/pricetag-ocr/internal/extract"
	"github.com/joseph-ayodele/pricetag-ocr/internal/ocr"
	"github.com/joseph-ayodele/pricetag-ocr/internal/repository"
	"github.com/joseph-ayodele/pricetag-ocr/internal/service"
	"github.com/joseph-ayodele/pricetag-ocr/internal/settings"
)

type App struct {
	Config  *common.Config
	DB      *repository.DB
	Scans   repository.ScanRepository
	Prefs   *settings.Preferences
	Engine  ocr.Engine
	Service *service.OCRService

	redis  *redis.Client
	logger *slog.Logger
}

// New opens the database, runs migrations and builds the OCR service.
// A configured REDIS_URL moves settings from the database into redis.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return nil, common.NewAppError("DB_OPEN", "open database", err)
	}
	a := &App{Config: cfg, DB: db, logger: logger}

	if err := db.Migrate(ctx); err != nil {
		a.Close()
		return nil, common.NewAppError("DB_MIGRATE", "migrate database", err)
	}
	a.Scans = repository.NewScanRepository(db, logger)

	var store settings.Store
	if cfg.Redis.URL != "" {
		rc, err := settings.DialRedis(ctx, cfg.Redis.URL)
		if err != nil {
			a.Close()
			return nil, common.NewAppError("REDIS_DIAL", "connect settings store", err)
		}
		a.redis = rc
		store = settings.NewRedisStore(rc)
		logger.Info("app.settings.redis")
	} else {
		store = settings.NewSQLStore(repository.NewSettingsRepository(db, logger))
	}
	a.Prefs = settings.NewPreferences(store, logger)

	engine, err := ocr.New(ocr.ConfigFromApp(cfg.OCR), logger)
	if err != nil {
		a.Close()
		return nil, common.NewAppError("CONFIG_ERROR", "build ocr engine", err)
	}
	a.Engine = engine
	if err := engine.Available(); err != nil {
		// remote mode still works without a local engine
		logger.Warn("app.ocr.unavailable", "engine", engine.Name(), "error", err)
	}

	client := analysis.NewClient(analysis.Config{
		BaseURL:        cfg.Analysis.BaseURL,
		APIKey:         cfg.Analysis.APIKey,
		Timeout:        cfg.Analysis.Timeout,
		ValidateSchema: cfg.Analysis.ValidateSchema,
	}, nil, logger)

	a.Service = service.NewOCRService(a.Prefs, extract.NewOCRAdapter(engine, logger), client, a.Scans, logger)
	return a, nil
}

// Close releases redis and database connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("app.redis.close_failed", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.logger.Warn("app.db.close_failed", "error", err)
		}
	}
}
