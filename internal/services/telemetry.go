package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yungbote/titleforge-backend/internal/domain/usage"
	"github.com/yungbote/titleforge-backend/internal/observability"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

// UsagePublisher announces recorded generation events to live clients.
type UsagePublisher interface {
	PublishGeneration(ctx context.Context, event *usage.GenerationEvent) error
}

// TelemetrySink records usage events off the request path. Record never
// returns an error and never blocks: a full queue drops the event.
type TelemetrySink interface {
	Record(ctx context.Context, event *usage.GenerationEvent)
	Start(ctx context.Context)
	Close(ctx context.Context) error
}

type TelemetryConfig struct {
	QueueSize    int
	Workers      int
	StoreTimeout time.Duration
}

var errSinkClosed = errors.New("telemetry sink closed")

type telemetrySink struct {
	log       *logger.Logger
	store     EventStore
	publisher UsagePublisher
	cfg       TelemetryConfig

	queue chan *usage.GenerationEvent
	wg    sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool
}

func NewTelemetrySink(log *logger.Logger, store EventStore, publisher UsagePublisher, cfg TelemetryConfig) TelemetrySink {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	return &telemetrySink{
		log:       log.With("service", "TelemetrySink"),
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		queue:     make(chan *usage.GenerationEvent, cfg.QueueSize),
	}
}

// Start launches the workers. The workers exit when Close is called, not
// when ctx is cancelled, so in-flight events still drain during shutdown.
func (s *telemetrySink) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	base := context.WithoutCancel(ctx)
	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(base)
	}
}

func (s *telemetrySink) Record(ctx context.Context, event *usage.GenerationEvent) {
	if event == nil {
		return
	}
	if s.store == nil {
		s.log.Debug("no event store configured, dropping event", "event_type", event.EventType)
		observability.Current().IncTelemetry("skipped")
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Warn("telemetry sink closed, dropping event", "event_type", event.EventType)
		observability.Current().IncTelemetry("dropped")
		return
	}
	select {
	case s.queue <- event:
		observability.Current().SetTelemetryQueueDepth(len(s.queue))
	default:
		s.log.Warn("telemetry queue full, dropping event",
			"event_type", event.EventType,
			"user_id", derefString(event.UserID),
		)
		observability.Current().IncTelemetry("dropped")
	}
}

func (s *telemetrySink) worker(ctx context.Context) {
	defer s.wg.Done()
	for event := range s.queue {
		s.write(ctx, event)
		observability.Current().SetTelemetryQueueDepth(len(s.queue))
	}
}

func (s *telemetrySink) write(ctx context.Context, event *usage.GenerationEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("telemetry write panicked", "panic", r)
			observability.Current().IncTelemetry("failed")
		}
	}()

	writeCtx := ctx
	if s.cfg.StoreTimeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(ctx, s.cfg.StoreTimeout)
		defer cancel()
	}
	if err := s.store.Append(writeCtx, event); err != nil {
		s.log.Warn("failed to record event",
			"event_type", event.EventType,
			"user_id", derefString(event.UserID),
			"kind", classifyStoreError(err),
			"error", err,
		)
		observability.Current().IncTelemetry("failed")
		return
	}
	observability.Current().IncTelemetry("recorded")

	if s.publisher != nil && event.IsGeneration() {
		if err := s.publisher.PublishGeneration(writeCtx, event); err != nil {
			s.log.Warn("failed to publish usage update", "error", err)
		}
	}
}

// Close stops intake and waits for queued events until ctx expires.
func (s *telemetrySink) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errSinkClosed
	}
	s.closed = true
	started := s.started
	close(s.queue)
	s.mu.Unlock()

	if !started {
		// Nobody is draining; write the backlog inline.
		for event := range s.queue {
			if ctx.Err() != nil {
				observability.Current().IncTelemetry("dropped")
				continue
			}
			s.write(context.WithoutCancel(ctx), event)
		}
		return ctx.Err()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.log.Warn("telemetry drain timed out", "pending", len(s.queue))
		return ctx.Err()
	}
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
