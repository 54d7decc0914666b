package app

import (
	"context"
	"fmt"

	"github.com/yungbote/titleforge-backend/internal/catalog"
	"github.com/yungbote/titleforge-backend/internal/data/db"
	"github.com/yungbote/titleforge-backend/internal/http"
	"github.com/yungbote/titleforge-backend/internal/observability"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Catalog  *catalog.Catalog
	Store    *db.Service
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics
	Server   *http.Server

	otelShutdown func(context.Context) error
}

func NewLogger(cfg Config) (*logger.Logger, error) {
	log, err := logger.NewWithOptions(logger.Options{
		Mode:             cfg.LogMode,
		RedactionEnabled: cfg.LogRedactionEnabled,
		HashSalt:         cfg.LogHashSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenStore connects and migrates the event store. It returns nil without
// error when no database is configured.
func OpenStore(log *logger.Logger, cfg Config) (*db.Service, error) {
	dbCfg := cfg.DB()
	if !dbCfg.Configured() {
		return nil, nil
	}
	store, err := db.NewService(log, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load formula catalog: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     cfg.OtelHeaders,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})
	metrics := observability.Init(log, observability.MetricsConfig{
		Enabled:         cfg.MetricsEnabled,
		Addr:            cfg.MetricsAddr,
		ScrapeInterval:  cfg.MetricsScrapeInterval,
		CostInputPer1K:  cfg.LLMCostInputPer1K,
		CostOutputPer1K: cfg.LLMCostOutputPer1K,
	})

	store, err := OpenStore(log, cfg)
	if err != nil {
		return nil, err
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	var reposet Repos
	if store != nil {
		reposet = wireRepos(store.DB(), log)
	} else {
		reposet = wireRepos(nil, log)
	}
	serviceset := wireServices(log, cfg, cat, reposet, clients)
	handlerset := wireHandlers(log, serviceset, cat, store)
	middleware := wireMiddleware(log, serviceset)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Catalog:      cat,
		Store:        store,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		Server:       wireServer(log, cfg, metrics, handlerset, middleware),
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background workers and collectors bound to ctx.
func (a *App) Start(ctx context.Context) {
	a.Services.Telemetry.Start(ctx)
	a.Metrics.StartServer(ctx, a.Log)
	a.Metrics.StartSLOEvaluator(ctx, a.Log, a.Cfg.SLO())
	if a.Store != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.Store.DB())
	}
	if a.Clients.UsageBus != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.UsageBus.Client())
	}
}

func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr())
	return a.Server.Run(ctx, a.Cfg.HTTPAddr())
}

// Close drains telemetry before releasing the store it writes to.
func (a *App) Close() {
	if a == nil {
		return
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.TelemetryDrain)
	defer cancel()
	if a.Services.Telemetry != nil {
		if err := a.Services.Telemetry.Close(drainCtx); err != nil {
			a.Log.Warn("telemetry drain incomplete", "error", err)
		}
	}
	a.Clients.Close()
	if a.Store != nil {
		_ = a.Store.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(drainCtx)
	}
	a.Log.Sync()
}
