package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/titleforge-backend/internal/domain/usage"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

const DefaultChannel = "titleforge.usage"

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// UsageMessage tells live clients that a user's remaining quota changed.
type UsageMessage struct {
	Type      string    `json:"type"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	SessionID string    `json:"sessionId,omitempty"`
	At        time.Time `json:"at"`
}

const MessageGenerationRecorded = "generation_recorded"

type UsageBus interface {
	PublishGeneration(ctx context.Context, event *usage.GenerationEvent) error
	StartForwarder(ctx context.Context, onMsg func(m UsageMessage)) error
	Client() *goredis.Client
	Close() error
}

type usageBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewUsageBus(ctx context.Context, log *logger.Logger, cfg Config) (UsageBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = DefaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &usageBus{
		log:     log.With("service", "RedisUsageBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func NewUsageMessage(event *usage.GenerationEvent) UsageMessage {
	msg := UsageMessage{
		Type:    MessageGenerationRecorded,
		EventID: event.ID.String(),
		At:      event.CreatedAt.UTC(),
	}
	if event.UserID != nil {
		msg.UserID = *event.UserID
	}
	if event.SessionID != nil {
		msg.SessionID = *event.SessionID
	}
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}
	return msg
}

func (b *usageBus) PublishGeneration(ctx context.Context, event *usage.GenerationEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis usage bus not initialized")
	}
	if event == nil {
		return nil
	}
	raw, err := json.Marshal(NewUsageMessage(event))
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *usageBus) StartForwarder(ctx context.Context, onMsg func(m UsageMessage)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis usage bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var msg UsageMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad redis usage payload", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

func (b *usageBus) Client() *goredis.Client {
	if b == nil {
		return nil
	}
	return b.rdb
}

func (b *usageBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
