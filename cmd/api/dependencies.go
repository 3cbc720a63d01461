// Package api wires the HTTP server: configuration, stores, services, handlers and the
// background jobs.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	importhandler "github.com/FACorreiaa/extrato-ledger/internal/domain/import/handler"
	importservice "github.com/FACorreiaa/extrato-ledger/internal/domain/import/service"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/insights"
	insightshandler "github.com/FACorreiaa/extrato-ledger/internal/domain/insights/handler"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/ledger"
	ledgerhandler "github.com/FACorreiaa/extrato-ledger/internal/domain/ledger/handler"

	"github.com/FACorreiaa/extrato-ledger/pkg/config"
	"github.com/FACorreiaa/extrato-ledger/pkg/cron"
	"github.com/FACorreiaa/extrato-ledger/pkg/metrics"
	"github.com/FACorreiaa/extrato-ledger/pkg/storage"
)

const (
	reindexJobName    = "search-reindex"
	reindexJobTimeout = 2 * time.Minute
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Stores
	Store       ledger.Store
	Pool        *pgxpool.Pool
	SQLite      *ledger.SQLiteStore
	SearchIndex *ledger.SearchIndex
	FileStorage storage.Storage

	// Services
	Engine          *categorization.Engine
	ImportService   *importservice.ImportService
	LedgerService   *ledger.LedgerService
	InsightsService *insights.Service
	Scheduler       *cron.Scheduler

	// Handlers
	ImportHandler   *importhandler.ImportHandler
	LedgerHandler   *ledgerhandler.LedgerHandler
	InsightsHandler *insightshandler.InsightsHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	// Initialize the transaction store
	if err := deps.initStore(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	// Initialize services
	if err := deps.initServices(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Initialize handlers
	deps.initHandlers()

	// Initialize background jobs
	if err := deps.initScheduler(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init scheduler: %w", err)
	}

	logger.Info("all dependencies initialized successfully", slog.String("store", cfg.Store.Backend))

	return deps, nil
}

// initStore opens the configured backend and runs its migrations
func (d *Dependencies) initStore(ctx context.Context) error {
	switch d.Config.Store.Backend {
	case config.StoreMemory:
		d.Store = ledger.NewMemoryStore()

	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, d.Config.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		d.Pool = pool
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}
		if d.Config.Store.MigrateOnStart {
			if err := ledger.MigratePostgres(ctx, pool, d.Logger); err != nil {
				return err
			}
		}
		d.Store = ledger.NewPostgresStore(pool)

	case config.StoreSQLite:
		store, err := ledger.OpenSQLite(ctx, d.Config.Store.SQLitePath, d.Logger)
		if err != nil {
			return err
		}
		d.SQLite = store
		d.Store = store

	default:
		return fmt.Errorf("unknown store backend %q", d.Config.Store.Backend)
	}

	d.Logger.Info("transaction store ready", slog.String("backend", d.Config.Store.Backend))
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices(ctx context.Context) error {
	d.Engine = categorization.NewDefaultEngine()

	// Search index over descriptions and categories
	if d.Config.Search.Enabled {
		index, err := ledger.NewSearchIndex()
		if err != nil {
			return fmt.Errorf("failed to create search index: %w", err)
		}
		d.SearchIndex = index
	}

	d.ImportService = importservice.NewImportService(d.Engine, d.Metrics, d.Logger)
	d.LedgerService = ledger.NewLedgerService(
		d.Store,
		d.SearchIndex,
		newCategorizationAdapter(d.Engine, d.Metrics),
		d.Metrics,
		d.Logger,
	)
	d.InsightsService = insights.NewService(d.LedgerService, d.Logger)

	// Persistent backends may already hold transactions
	if err := d.LedgerService.Reindex(ctx); err != nil {
		return err
	}

	// Optional archive of uploaded statements
	if d.Config.Storage.ArchiveUploads {
		fileStorage, err := storage.NewLocalStorage(d.Config.Storage.BasePath)
		if err != nil {
			return fmt.Errorf("failed to init file storage: %w", err)
		}
		d.FileStorage = fileStorage
	}

	d.Logger.Info("services initialized",
		slog.Bool("search", d.SearchIndex != nil),
		slog.Bool("archive", d.FileStorage != nil),
	)
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.ImportHandler = importhandler.NewImportHandler(
		d.ImportService,
		d.LedgerService,
		d.FileStorage,
		d.Config.Server.MaxUploadBytes,
		d.Logger,
	)
	d.LedgerHandler = ledgerhandler.NewLedgerHandler(d.LedgerService, d.Config.Search.DefaultLimit, d.Logger)
	d.InsightsHandler = insightshandler.NewInsightsHandler(d.InsightsService, d.Logger)

	d.Logger.Info("handlers initialized")
}

// initScheduler registers the periodic search index rebuild
func (d *Dependencies) initScheduler() error {
	d.Scheduler = cron.NewScheduler(d.Logger, reindexJobTimeout)
	if d.SearchIndex == nil || d.Config.Search.ReindexSpec == "" {
		return nil
	}
	return d.Scheduler.AddJob(d.Config.Search.ReindexSpec, reindexJobName, d.LedgerService.Reindex)
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	var errs []error
	if d.SearchIndex != nil {
		errs = append(errs, d.SearchIndex.Close())
	}
	if d.SQLite != nil {
		errs = append(errs, d.SQLite.Close())
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
	if err := errors.Join(errs...); err != nil {
		d.Logger.Warn("cleanup finished with errors", slog.Any("error", err))
		return
	}
	d.Logger.Info("cleanup completed")
}
