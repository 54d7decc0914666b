package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	"github.com/yungbote/titleforge-backend/internal/domain/titles"
	"github.com/yungbote/titleforge-backend/internal/domain/usage"
	"github.com/yungbote/titleforge-backend/internal/observability"
	"github.com/yungbote/titleforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

// TitleGenerator is a black-box text completion backend.
type TitleGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ModelNamer is optionally implemented by generators for diagnostics.
type ModelNamer interface {
	ModelName() string
}

type GenerateRequest struct {
	UserID      string
	SessionID   string
	Description string
}

type GenerateResult struct {
	Variations []titles.TitleVariation
	// Quota as projected after this generation is recorded.
	Quota usage.QuotaState
}

type TitleService interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

type TitleServiceConfig struct {
	GenerationTimeout   time.Duration
	MaxDescriptionChars int
}

type titleService struct {
	log       *logger.Logger
	ledger    QuotaLedger
	generator TitleGenerator
	prompts   *PromptBuilder
	validator OutputValidator
	sink      TelemetrySink
	cfg       TitleServiceConfig
}

func NewTitleService(
	log *logger.Logger,
	ledger QuotaLedger,
	generator TitleGenerator,
	prompts *PromptBuilder,
	validator OutputValidator,
	sink TelemetrySink,
	cfg TitleServiceConfig,
) TitleService {
	return &titleService{
		log:       log.With("service", "TitleService"),
		ledger:    ledger,
		generator: generator,
		prompts:   prompts,
		validator: validator,
		sink:      sink,
		cfg:       cfg,
	}
}

func (s *titleService) Generate(ctx context.Context, req GenerateRequest) (res *GenerateResult, err error) {
	start := time.Now()
	ctx, span := observability.Tracer().Start(ctx, "titles.generate")
	outcome := "ok"
	defer func() {
		span.SetAttributes(attribute.String("generation.outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
		observability.Current().ObserveGeneration(outcome, time.Since(start))
	}()

	userID := strings.TrimSpace(req.UserID)
	description := strings.TrimSpace(req.Description)
	if description == "" {
		outcome = "invalid_input"
		return nil, &InvalidInputError{Reason: "description is required"}
	}
	if maxChars := s.cfg.MaxDescriptionChars; maxChars > 0 && utf8.RuneCountInString(description) > maxChars {
		outcome = "invalid_input"
		return nil, &InvalidInputError{Reason: "description is too long"}
	}
	if userID == "" {
		outcome = "unauthenticated"
		return nil, ErrUnauthenticated
	}

	log := s.log.With(ctxutil.TraceFields(ctx)...)
	quota := s.ledger.Usage(ctx, userID)
	span.SetAttributes(
		attribute.Int("quota.count", quota.Count),
		attribute.Int("quota.limit", quota.Limit),
	)
	if quota.Exhausted() {
		outcome = "quota_exceeded"
		log.Info("generation rejected, quota exhausted", "user_id", userID, "limit", quota.Limit)
		return nil, &QuotaExceededError{Limit: quota.Limit}
	}

	raw, genDur, err := s.complete(ctx, description)
	if err != nil {
		outcome = FailureProvider
		log.Warn("generator call failed", "user_id", userID, "stage", FailureProvider, "error", err)
		return nil, &GenerationFailedError{Stage: FailureProvider, Err: err}
	}

	batch, err := s.validator.Validate(raw)
	if err != nil {
		outcome = FailureShape
		log.Warn("generator output rejected", "user_id", userID, "stage", FailureShape, "error", err)
		return nil, &GenerationFailedError{Stage: FailureShape, Err: err}
	}

	s.sink.Record(ctx, usage.NewGenerationEvent(userID, req.SessionID, s.eventMetadata(description, genDur)))

	return &GenerateResult{
		Variations: batch,
		Quota:      usage.NewQuotaState(quota.Count+1, quota.Limit),
	}, nil
}

func (s *titleService) complete(ctx context.Context, description string) (string, time.Duration, error) {
	callCtx := ctx
	if s.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.GenerationTimeout)
		defer cancel()
	}
	start := time.Now()
	raw, err := s.generator.Complete(callCtx, s.prompts.Build(description))
	return raw, time.Since(start), err
}

func (s *titleService) eventMetadata(description string, genDur time.Duration) datatypes.JSON {
	meta := map[string]any{
		"description_chars": utf8.RuneCountInString(description),
		"latency_ms":        genDur.Milliseconds(),
	}
	if n, ok := s.generator.(ModelNamer); ok {
		meta["model"] = n.ModelName()
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
