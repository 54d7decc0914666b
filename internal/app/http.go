package app

import (
	"context"

	"github.com/yungbote/titleforge-backend/internal/catalog"
	"github.com/yungbote/titleforge-backend/internal/data/db"
	"github.com/yungbote/titleforge-backend/internal/http"
	httpH "github.com/yungbote/titleforge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/titleforge-backend/internal/http/middleware"
	"github.com/yungbote/titleforge-backend/internal/observability"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Titles  *httpH.TitleHandler
	Usage   *httpH.UsageHandler
	Event   *httpH.EventHandler
	Formula *httpH.FormulaHandler
}

func wireHandlers(log *logger.Logger, services Services, cat *catalog.Catalog, store *db.Service) Handlers {
	log.Info("Wiring handlers...")
	var ping func(ctx context.Context) error
	if store != nil {
		ping = store.Ping
	}
	h := Handlers{
		Health:  httpH.NewHealthHandler(ping),
		Usage:   httpH.NewUsageHandler(services.Ledger),
		Event:   httpH.NewEventHandler(services.Events),
		Formula: httpH.NewFormulaHandler(cat),
	}
	if services.Titles != nil {
		h.Titles = httpH.NewTitleHandler(services.Titles)
	}
	return h
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Identity),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.OtelServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        metrics,
		AuthMiddleware: middleware.Auth,
		TitleHandler:   handlers.Titles,
		UsageHandler:   handlers.Usage,
		EventHandler:   handlers.Event,
		FormulaHandler: handlers.Formula,
		HealthHandler:  handlers.Health,
	})
}
