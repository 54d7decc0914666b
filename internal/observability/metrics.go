package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

type MetricsConfig struct {
	Enabled        bool
	Addr           string
	ScrapeInterval time.Duration
	// Per-1K token rates; zero disables cost accounting.
	CostInputPer1K  float64
	CostOutputPer1K float64
}

const generationRoute = "/api/generate-titles"

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	llmRequests *CounterVec
	llmLatency  *HistogramVec
	llmTokens   *CounterVec
	llmCost     *CounterVec

	generations       *CounterVec
	generationLatency *HistogramVec
	quotaFailOpen     *CounterVec
	quotaRejected     *Counter

	telemetryEvents *CounterVec
	telemetryQueue  *Gauge

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	sloAPITotal   *Counter
	sloAPIError   *Counter
	sloAPIFast    *Counter
	sloGenTotal   *Counter
	sloGenError   *Counter
	sloCompliance *GaugeVec
	sloBudget     *GaugeVec
	sloBurn       *GaugeVec

	cfg MetricsConfig
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process metrics, or nil when metrics are disabled.
// Every method is nil-safe.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger, cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics(cfg)
		if log != nil {
			log.Info("metrics enabled", "addr", cfg.Addr)
		}
	})
	return instance
}

func newMetrics(cfg MetricsConfig) *Metrics {
	if cfg.ScrapeInterval <= 0 {
		cfg.ScrapeInterval = 10 * time.Second
	}
	return &Metrics{
		apiRequests: NewCounterVec("tf_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"tf_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("tf_api_inflight_requests", "In-flight API requests."),

		llmRequests: NewCounterVec("tf_llm_requests_total", "Generator requests by provider/model/status.", []string{"provider", "model", "status"}),
		llmLatency: NewHistogramVec(
			"tf_llm_request_duration_seconds",
			"Generator request latency in seconds.",
			[]string{"provider", "model", "status"},
			[]float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		),
		llmTokens: NewCounterVec("tf_llm_tokens_total", "Generator tokens by model/kind.", []string{"model", "kind"}),
		llmCost:   NewCounterVec("tf_llm_cost_usd_total", "Estimated generator cost in USD.", []string{"model", "kind"}),

		generations: NewCounterVec("tf_generations_total", "Title generation outcomes.", []string{"outcome"}),
		generationLatency: NewHistogramVec(
			"tf_generation_duration_seconds",
			"End-to-end title generation latency by outcome.",
			[]string{"outcome"},
			[]float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		),
		quotaFailOpen: NewCounterVec("tf_quota_fail_open_total", "Quota checks that granted the full limit because history was unreadable.", []string{"kind"}),
		quotaRejected: NewCounter("tf_quota_rejected_total", "Generation requests rejected for quota."),

		telemetryEvents: NewCounterVec("tf_telemetry_events_total", "Generation events by sink status.", []string{"status"}),
		telemetryQueue:  NewGauge("tf_telemetry_queue_depth", "Generation events waiting to be written."),

		dbStats:   NewGaugeVec("tf_db_pool", "Database pool stats.", []string{"stat"}),
		redisUp:   NewGauge("tf_redis_up", "Redis reachability (1 = up)."),
		redisPing: NewGauge("tf_redis_ping_seconds", "Redis ping latency in seconds."),

		sloAPITotal:   NewCounter("tf_slo_api_requests_total", "API requests counted toward SLOs."),
		sloAPIError:   NewCounter("tf_slo_api_errors_total", "API requests that returned 5xx."),
		sloAPIFast:    NewCounter("tf_slo_api_fast_total", "API requests within the latency threshold."),
		sloGenTotal:   NewCounter("tf_slo_generations_total", "Generations that reached the provider."),
		sloGenError:   NewCounter("tf_slo_generation_errors_total", "Generations that failed at the provider or shape stage."),
		sloCompliance: NewGaugeVec("tf_slo_compliance", "SLI over the rolling window.", []string{"slo", "window"}),
		sloBudget:     NewGaugeVec("tf_slo_error_budget_remaining", "Remaining error budget fraction.", []string{"slo", "window"}),
		sloBurn:       NewGaugeVec("tf_slo_burn_rate", "Error budget burn rate.", []string{"slo", "window"}),

		cfg: cfg,
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger) {
	if m == nil {
		return
	}
	addr := strings.TrimSpace(m.cfg.Addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens, m.llmCost,
		m.generations, m.generationLatency, m.quotaFailOpen, m.quotaRejected,
		m.telemetryEvents, m.telemetryQueue,
		m.dbStats, m.redisUp, m.redisPing,
		m.sloAPITotal, m.sloAPIError, m.sloAPIFast, m.sloGenTotal, m.sloGenError,
		m.sloCompliance, m.sloBudget, m.sloBurn,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = orDefault(method, "UNKNOWN")
	route = orDefault(route, "unknown")
	status = orDefault(status, "0")
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)

	m.sloAPITotal.Inc()
	if strings.HasPrefix(status, "5") {
		m.sloAPIError.Inc()
	}
	if dur.Seconds() <= apiLatencyGoodSeconds || route == generationRoute {
		m.sloAPIFast.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(provider, model, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	provider = orDefault(provider, "unknown")
	model = orDefault(model, "unknown")
	status = orDefault(status, "0")
	m.llmRequests.Inc(provider, model, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), provider, model, status)
	}
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
		if m.cfg.CostInputPer1K > 0 {
			m.llmCost.Add(float64(inputTokens)/1000.0*m.cfg.CostInputPer1K, model, "input")
		}
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
		if m.cfg.CostOutputPer1K > 0 {
			m.llmCost.Add(float64(outputTokens)/1000.0*m.cfg.CostOutputPer1K, model, "output")
		}
	}
}

// ObserveGeneration records one orchestrator outcome: ok, invalid_input,
// quota_exceeded, provider or shape.
func (m *Metrics) ObserveGeneration(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	outcome = orDefault(outcome, "unknown")
	m.generations.Inc(outcome)
	if dur > 0 {
		m.generationLatency.Observe(dur.Seconds(), outcome)
	}
	switch outcome {
	case "quota_exceeded":
		m.quotaRejected.Inc()
	case "ok":
		m.sloGenTotal.Inc()
	case "provider", "shape":
		m.sloGenTotal.Inc()
		m.sloGenError.Inc()
	}
}

func (m *Metrics) IncQuotaFailOpen(kind string) {
	if m == nil {
		return
	}
	m.quotaFailOpen.Inc(orDefault(kind, "error"))
}

// IncTelemetry counts sink outcomes: recorded, failed, dropped, skipped.
func (m *Metrics) IncTelemetry(status string) {
	if m == nil {
		return
	}
	m.telemetryEvents.Inc(orDefault(status, "unknown"))
}

func (m *Metrics) SetTelemetryQueueDepth(n int) {
	if m == nil {
		return
	}
	m.telemetryQueue.Set(float64(n))
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.cfg.ScrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings the shared client; the caller owns its lifetime.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.cfg.ScrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func orDefault(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
