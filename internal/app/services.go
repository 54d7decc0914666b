package app

import (
	"github.com/yungbote/titleforge-backend/internal/catalog"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
	"github.com/yungbote/titleforge-backend/internal/services"
)

type Services struct {
	Identity  services.IdentityVerifier
	Ledger    services.QuotaLedger
	Telemetry services.TelemetrySink
	Titles    services.TitleService
	Events    services.EventService
}

func wireServices(log *logger.Logger, cfg Config, cat *catalog.Catalog, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	store := services.NewRepoEventStore(reposet.Events)

	var publisher services.UsagePublisher
	if clients.UsageBus != nil {
		publisher = clients.UsageBus
	}

	identity := services.NewIdentityVerifier(log, services.IdentityConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	ledger := services.NewQuotaLedger(log, store, cfg.Limit(), cfg.StoreTimeout)
	sink := services.NewTelemetrySink(log, store, publisher, services.TelemetryConfig{
		QueueSize:    cfg.TelemetryQueueSize,
		Workers:      cfg.TelemetryWorkers,
		StoreTimeout: cfg.StoreTimeout,
	})

	var titles services.TitleService
	if clients.Generator != nil {
		titles = services.NewTitleService(
			log,
			ledger,
			clients.Generator,
			services.NewPromptBuilder(cat),
			services.NewOutputValidator(cat),
			sink,
			services.TitleServiceConfig{
				GenerationTimeout:   cfg.GenerationTimeout,
				MaxDescriptionChars: cfg.MaxDescriptionChars,
			},
		)
	}

	return Services{
		Identity:  identity,
		Ledger:    ledger,
		Telemetry: sink,
		Titles:    titles,
		Events:    services.NewEventService(log, sink),
	}
}
