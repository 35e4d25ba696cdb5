package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/repository"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/service"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/synthetic"

	"github.com/FACorreiaa/finance-intelligence/pkg/cache"
	"github.com/FACorreiaa/finance-intelligence/pkg/config"
	"github.com/FACorreiaa/finance-intelligence/pkg/cron"
	"github.com/FACorreiaa/finance-intelligence/pkg/db"
	"github.com/FACorreiaa/finance-intelligence/pkg/observability"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Infrastructure
	Metrics       *observability.Metrics
	Templates     *synthetic.TemplateIndex
	AnalysisCache *cache.TTL[string, *service.Analysis]
	Scheduler     *cron.Scheduler

	// Repositories
	Repo *repository.PostgresRepository

	// Services
	Service *service.Service

	metricsServer *http.Server
}

// InitDependencies initializes all application dependencies. The database is only
// opened when withDB is set, so offline commands never need Postgres.
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger, withDB bool) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if withDB {
		if err := deps.initDatabase(ctx); err != nil {
			deps.Cleanup()
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
		deps.initRepositories()
	}

	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initBackground(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init background jobs: %w", err)
	}

	logger.Debug("all dependencies initialized successfully", "database", withDB)
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase(ctx context.Context) error {
	database, err := db.New(ctx, db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        int32(d.Config.Database.MaxConns),
		MinConns:        int32(d.Config.Database.MinConns),
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if d.Config.Database.RunMigrations {
		if err := d.DB.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	d.Logger.Info("database connected", "migrations", d.Config.Database.RunMigrations)
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	d.Repo = repository.NewPostgresRepository(d.DB.Pool, d.Config.Intelligence.Currency)
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	intel := d.Config.Intelligence

	templates, err := synthetic.NewTemplateIndex()
	if err != nil {
		return err
	}
	d.Templates = templates

	d.Metrics = observability.NewMetrics()
	d.AnalysisCache = cache.NewTTL[string, *service.Analysis](intel.CacheTTL, cache.WithMaxEntries(intel.CacheMaxEntries))

	d.Service = service.NewService(service.Config{
		ConfidenceThreshold: intel.ConfidenceThreshold,
		SampleSize:          intel.SampleSize,
		TopCategories:       intel.TopCategories,
		HistoryLimit:        intel.HistoryLimit,
		MaxSynthetic:        intel.MaxSyntheticCount,
		Currency:            intel.Currency,
	}, d.Templates, d.Logger).
		WithCache(d.AnalysisCache).
		WithMetrics(d.Metrics).
		WithTracer(observability.Tracer(nil, d.Config.Observability.ServiceName))

	// Persistence is only wired when a database is available
	if d.Repo != nil {
		d.Service.WithStore(d.Repo).WithHistory(d.Repo).WithMappings(d.Repo)
	}
	return nil
}

// initBackground starts the cache sweeper and, when enabled, the metrics endpoint
func (d *Dependencies) initBackground() error {
	d.Scheduler = cron.NewScheduler(d.Logger)
	err := d.Scheduler.AddJob("analysis-cache-sweep", d.Config.Intelligence.CacheSweepSchedule, func() {
		if n := d.AnalysisCache.Sweep(); n > 0 {
			d.Logger.Debug("expired analyses evicted", "count", n)
		}
	})
	if err != nil {
		return err
	}
	d.Scheduler.Start()

	if d.Config.Observability.MetricsEnabled {
		d.startMetricsServer()
	}
	return nil
}

func (d *Dependencies) startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", d.Metrics.Handler())

	addr := fmt.Sprintf("localhost:%d", d.Config.Observability.MetricsPort)
	d.metricsServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		d.Logger.Info("metrics server started", "addr", addr)
		if err := d.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.Logger.Error("metrics server error", "error", err)
		}
	}()
}

// Cleanup releases resources in reverse order of initialization
func (d *Dependencies) Cleanup() {
	if d.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.metricsServer.Shutdown(ctx); err != nil {
			d.Logger.Warn("metrics server shutdown failed", "error", err)
		}
	}
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.Templates != nil {
		if err := d.Templates.Close(); err != nil {
			d.Logger.Warn("failed to close template index", "error", err)
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
