package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/titleforge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/titleforge-backend/internal/http/middleware"
	"github.com/yungbote/titleforge-backend/internal/observability"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	TitleHandler   *httpH.TitleHandler
	UsageHandler   *httpH.UsageHandler
	EventHandler   *httpH.EventHandler
	FormulaHandler *httpH.FormulaHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics, "/healthcheck"))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.FormulaHandler != nil {
			api.GET("/formulas", cfg.FormulaHandler.List)
		}

		// Tracking accepts anonymous callers; identity is attached when present.
		if cfg.EventHandler != nil {
			events := api.Group("/")
			if cfg.AuthMiddleware != nil {
				events.Use(cfg.AuthMiddleware.OptionalAuth())
			}
			events.POST("/events", cfg.EventHandler.Track)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.TitleHandler != nil {
			protected.POST("/generate-titles", cfg.TitleHandler.Generate)
		}

		if cfg.UsageHandler != nil {
			protected.GET("/usage", cfg.UsageHandler.GetUsage)
			protected.GET("/usage/can-generate", cfg.UsageHandler.CanGenerate)
		}
	}

	return r
}
