package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/titleforge-backend/internal/observability"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

const (
	DefaultBaseURL = "https://api.openai.com"
	DefaultModel   = "gpt-4o-mini"
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
}

// Client is a minimal Responses API client. Requests are sent once; callers
// own retry policy.
type Client struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

func NewClient(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		log:         log.With("service", "OpenAIClient"),
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) ModelName() string { return c.model }

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model       string         `json:"model"`
	Input       []inputMessage `json:"input"`
	Temperature float64        `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := responsesRequest{
		Model:       c.model,
		Input:       []inputMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
	}

	start := time.Now()
	var resp responsesResponse
	status, err := c.do(ctx, http.MethodPost, "/v1/responses", req, &resp)
	observability.Current().ObserveLLMRequest("openai", c.model, status, time.Since(start), resp.Usage.InputTokens, resp.Usage.OutputTokens)
	if err != nil {
		return "", err
	}

	text, refusal := extractOutputText(resp)
	if refusal != "" {
		return "", fmt.Errorf("model refused: %s", refusal)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no output_text found in response")
	}
	return text, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) (string, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return "error", err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return "error", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "timeout", ctx.Err()
		}
		return "error", err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	status := strconv.Itoa(resp.StatusCode)
	if readErr != nil {
		return status, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("OpenAI request failed", "path", path, "status", resp.StatusCode)
		return status, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return status, fmt.Errorf("openai decode error: %w", err)
		}
	}
	return status, nil
}

// extractOutputText concatenates assistant output_text parts.
func extractOutputText(resp responsesResponse) (text string, refusal string) {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, part := range item.Content {
			switch part.Type {
			case "output_text":
				out.WriteString(part.Text)
			case "refusal":
				refusal = part.Refusal
			}
		}
	}
	return out.String(), refusal
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
