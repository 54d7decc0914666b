package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/titleforge-backend/internal/clients/gemini"
	"github.com/yungbote/titleforge-backend/internal/clients/openai"
	"github.com/yungbote/titleforge-backend/internal/clients/redis"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
	"github.com/yungbote/titleforge-backend/internal/services"
)

type Clients struct {
	Generator services.TitleGenerator
	UsageBus  redis.UsageBus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	generator, err := newGenerator(ctx, log, cfg)
	if err != nil {
		return Clients{}, err
	}

	// Redis is optional; without it usage updates are simply not broadcast.
	var bus redis.UsageBus
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		b, err := redis.NewUsageBus(ctx, log, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis usage bus: %w", err)
		}
		bus = b
	}

	return Clients{Generator: generator, UsageBus: bus}, nil
}

func newGenerator(ctx context.Context, log *logger.Logger, cfg Config) (services.TitleGenerator, error) {
	switch cfg.LLMProvider {
	case ProviderOpenAI:
		c, err := openai.NewClient(log, cfg.OpenAI())
		if err != nil {
			return nil, fmt.Errorf("init openai client: %w", err)
		}
		return c, nil
	default:
		c, err := gemini.NewClient(ctx, log, cfg.Gemini())
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		return c, nil
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.UsageBus != nil {
		_ = c.UsageBus.Close()
	}
}
