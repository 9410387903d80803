package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/repository"
	"github.com/campushq/campus-admin-api/internal/service"
	"github.com/campushq/campus-admin-api/pkg/cache"
	"github.com/campushq/campus-admin-api/pkg/config"
	"github.com/campushq/campus-admin-api/pkg/database"
	"github.com/campushq/campus-admin-api/pkg/export"
	"github.com/campushq/campus-admin-api/pkg/storage"
)

func buildDatabase(cfg *config.Config, logr *zap.Logger) (*sqlx.DB, error) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, err
	}
	logr.Sugar().Infow("postgres connected", "host", cfg.Database.Host, "db", cfg.Database.Name)
	return db, nil
}

// buildCache returns a nil-safe cache service; when redis is unreachable the
// API degrades to uncached reads instead of failing startup.
func buildCache(cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) *service.CacheService {
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		return service.NewCacheService(nil, metrics, cfg.Analysis.CacheTTL, logr, false)
	}
	repo := repository.NewCacheRepository(client, logr)
	return service.NewCacheService(repo, metrics, cfg.Analysis.CacheTTL, logr, true)
}

func buildNarrative(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService) *service.NarrativeService {
	if !cfg.Narrative.Enabled || cfg.Narrative.APIKey == "" {
		logr.Info("narrative generation disabled, using deterministic summaries")
		return service.NewNarrativeService(nil, cfg.Narrative, logr, metrics)
	}
	client := service.NewNarrativeClient(cfg.Narrative)
	return service.NewNarrativeService(client, cfg.Narrative, logr, metrics)
}

// buildSheetAppender returns nil when the audit spreadsheet is disabled or
// misconfigured; the pipeline treats a nil appender as a no-op.
func buildSheetAppender(ctx context.Context, cfg *config.Config, logr *zap.Logger) export.RowAppender {
	if !cfg.Sheets.Enabled {
		return nil
	}
	appender, err := export.NewSheetAppender(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.Range)
	if err != nil {
		logr.Sugar().Warnw("sheets audit disabled", "error", err)
		return nil
	}
	return appender
}

func buildExports(ctx context.Context, cfg *config.Config, analysis *service.AnalysisService, evaluations *service.EvaluationService, logr *zap.Logger) (*service.ExportService, error) {
	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	svc := service.NewExportService(analysis, evaluations, store, signer, logr)
	svc.StartCleanup(ctx, cfg.Exports.CleanupInterval, cfg.Exports.SignedURLTTL)
	return svc, nil
}
