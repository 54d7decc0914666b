package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/titleforge-backend/internal/observability"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Zero leaves the provider default.
	Temperature float32
}

// Client completes single-turn prompts against the Gemini API.
type Client struct {
	log    *logger.Logger
	models *genai.Models
	model  string
	gen    *genai.GenerateContentConfig
}

var errEmptyResponse = errors.New("gemini returned no text")

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	var gen *genai.GenerateContentConfig
	if cfg.Temperature > 0 {
		gen = &genai.GenerateContentConfig{Temperature: genai.Ptr(cfg.Temperature)}
	}
	return &Client{
		log:    log.With("service", "GeminiClient"),
		models: client.Models,
		model:  model,
		gen:    gen,
	}, nil
}

func (c *Client) ModelName() string { return c.model }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), c.gen)
	if err != nil {
		observability.Current().ObserveLLMRequest("gemini", c.model, statusOf(err), time.Since(start), 0, 0)
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	in, out := tokenCounts(resp)
	observability.Current().ObserveLLMRequest("gemini", c.model, "ok", time.Since(start), in, out)

	text := outputText(resp)
	if strings.TrimSpace(text) == "" {
		c.log.Warn("gemini returned empty text", "model", c.model, "finish_reason", finishReason(resp))
		return "", errEmptyResponse
	}
	return text, nil
}

// outputText joins the non-thought text parts of the first candidate.
func outputText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

func tokenCounts(resp *genai.GenerateContentResponse) (int, int) {
	if resp == nil || resp.UsageMetadata == nil {
		return 0, 0
	}
	return int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount)
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	return string(resp.Candidates[0].FinishReason)
}

func statusOf(err error) string {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%d", apiErr.Code)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}
