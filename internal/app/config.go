package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/yungbote/titleforge-backend/internal/clients/gemini"
	"github.com/yungbote/titleforge-backend/internal/clients/openai"
	"github.com/yungbote/titleforge-backend/internal/data/db"
	"github.com/yungbote/titleforge-backend/internal/domain/usage"
	"github.com/yungbote/titleforge-backend/internal/observability"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config is read from the environment without a prefix, e.g. PORT, DB_DRIVER.
type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Version     string `envconfig:"VERSION" default:"dev"`

	LogMode             string `envconfig:"LOG_MODE" default:"development"`
	LogRedactionEnabled bool   `envconfig:"LOG_REDACTION_ENABLED" default:"true"`
	LogHashSalt         string `envconfig:"LOG_HASH_SALT"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SQLitePath  string `envconfig:"SQLITE_PATH"`
	DBMaxOpen   int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	DBMaxIdle   int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`

	JWTSecret   string `envconfig:"JWT_SECRET"`
	JWTIssuer   string `envconfig:"JWT_ISSUER"`
	JWTAudience string `envconfig:"JWT_AUDIENCE" default:"authenticated"`

	LLMProvider        string  `envconfig:"LLM_PROVIDER" default:"gemini"`
	GeminiAPIKey       string  `envconfig:"GEMINI_API_KEY"`
	GeminiModel        string  `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	GeminiBaseURL      string  `envconfig:"GEMINI_BASE_URL"`
	OpenAIAPIKey       string  `envconfig:"OPENAI_API_KEY"`
	OpenAIModel        string  `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL      string  `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	LLMTemperature     float64 `envconfig:"LLM_TEMPERATURE" default:"0.9"`
	LLMCostInputPer1K  float64 `envconfig:"LLM_COST_INPUT_PER_1K"`
	LLMCostOutputPer1K float64 `envconfig:"LLM_COST_OUTPUT_PER_1K"`

	GenerationLimit     int           `envconfig:"GENERATION_LIMIT" default:"20"`
	GenerationTimeout   time.Duration `envconfig:"GENERATION_TIMEOUT" default:"30s"`
	StoreTimeout        time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`
	MaxDescriptionChars int           `envconfig:"MAX_DESCRIPTION_CHARS" default:"5000"`

	TelemetryQueueSize int           `envconfig:"TELEMETRY_QUEUE_SIZE" default:"256"`
	TelemetryWorkers   int           `envconfig:"TELEMETRY_WORKERS" default:"2"`
	TelemetryDrain     time.Duration `envconfig:"TELEMETRY_DRAIN_TIMEOUT" default:"10s"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisChannel  string `envconfig:"REDIS_CHANNEL" default:"titleforge.usage"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	MetricsEnabled        bool          `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsAddr           string        `envconfig:"METRICS_ADDR" default:":9090"`
	MetricsScrapeInterval time.Duration `envconfig:"METRICS_SCRAPE_INTERVAL" default:"10s"`

	SLOEnabled          bool          `envconfig:"SLO_ENABLED" default:"false"`
	SLOInterval         time.Duration `envconfig:"SLO_EVAL_INTERVAL" default:"1m"`
	SLOWindow           time.Duration `envconfig:"SLO_WINDOW" default:"720h"`
	SLOAPIAvailTarget   float64       `envconfig:"SLO_API_AVAIL_TARGET" default:"0.995"`
	SLOAPILatencyTarget float64       `envconfig:"SLO_API_LATENCY_TARGET" default:"0.95"`
	SLOGenerationTarget float64       `envconfig:"SLO_GENERATION_SUCCESS_TARGET" default:"0.98"`
	SLOAlertWebhook     string        `envconfig:"SLO_ALERT_WEBHOOK_URL"`
	SLOAlertOwner       string        `envconfig:"SLO_ALERT_OWNER"`
	SLOAlertRunbook     string        `envconfig:"SLO_ALERT_RUNBOOK_URL"`
	SLOAlertMinInterval time.Duration `envconfig:"SLO_ALERT_MIN_INTERVAL" default:"15m"`
	SLOAlertBurnWarn    float64       `envconfig:"SLO_ALERT_BURN_RATE_WARN" default:"2"`
	SLOAlertBurnCrit    float64       `envconfig:"SLO_ALERT_BURN_RATE_CRIT" default:"10"`

	OtelEnabled     bool    `envconfig:"OTEL_ENABLED" default:"false"`
	OtelServiceName string  `envconfig:"OTEL_SERVICE_NAME" default:"titleforge"`
	OtelEndpoint    string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`
	OtelSampleRatio float64 `envconfig:"OTEL_SAMPLER_RATIO" default:"0.1"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field rules. Provider credentials are checked when
// the generator is built so that migrate and usage work without them.
func (c Config) Validate() error {
	switch c.DBDriver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %q", c.DBDriver)
	}
	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER: %q", c.LLMProvider)
	}
	if c.GenerationLimit <= 0 {
		return fmt.Errorf("GENERATION_LIMIT must be positive, got %d", c.GenerationLimit)
	}
	if c.GenerationTimeout <= 0 || c.StoreTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT and STORE_TIMEOUT must be positive")
	}
	if c.MaxDescriptionChars <= 0 {
		return fmt.Errorf("MAX_DESCRIPTION_CHARS must be positive")
	}
	if c.TelemetryQueueSize <= 0 || c.TelemetryWorkers <= 0 {
		return fmt.Errorf("TELEMETRY_QUEUE_SIZE and TELEMETRY_WORKERS must be positive")
	}
	if c.OtelSampleRatio < 0 || c.OtelSampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLER_RATIO must be within [0,1]")
	}
	return nil
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) DB() db.Config {
	return db.Config{
		Driver:      c.DBDriver,
		DatabaseURL: c.DatabaseURL,
		SQLitePath:  c.SQLitePath,
		MaxOpen:     c.DBMaxOpen,
		MaxIdle:     c.DBMaxIdle,
	}
}

func (c Config) Gemini() gemini.Config {
	return gemini.Config{
		APIKey:      c.GeminiAPIKey,
		Model:       c.GeminiModel,
		BaseURL:     c.GeminiBaseURL,
		Temperature: float32(c.LLMTemperature),
	}
}

func (c Config) OpenAI() openai.Config {
	return openai.Config{
		APIKey:      c.OpenAIAPIKey,
		BaseURL:     c.OpenAIBaseURL,
		Model:       c.OpenAIModel,
		Timeout:     c.GenerationTimeout,
		Temperature: c.LLMTemperature,
	}
}

// Limit falls back to the product default when unset.
func (c Config) Limit() int {
	if c.GenerationLimit <= 0 {
		return usage.DefaultGenerationLimit
	}
	return c.GenerationLimit
}

func (c Config) SLO() observability.SLOConfig {
	return observability.SLOConfig{
		Enabled:                 c.SLOEnabled,
		Interval:                c.SLOInterval,
		Window:                  c.SLOWindow,
		APIAvailabilityTarget:   c.SLOAPIAvailTarget,
		APILatencyTarget:        c.SLOAPILatencyTarget,
		GenerationSuccessTarget: c.SLOGenerationTarget,
		AlertWebhook:            c.SLOAlertWebhook,
		AlertOwner:              c.SLOAlertOwner,
		AlertRunbook:            c.SLOAlertRunbook,
		AlertMinInterval:        c.SLOAlertMinInterval,
		AlertBurnWarn:           c.SLOAlertBurnWarn,
		AlertBurnCrit:           c.SLOAlertBurnCrit,
	}
}
