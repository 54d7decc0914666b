package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

func TestOutputText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "A\nB\n"},
				{Text: "C\nD\nE"},
			}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 120, CandidatesTokenCount: 40},
	}
	if got := outputText(resp); got != "A\nB\nC\nD\nE" {
		t.Fatalf("outputText: want=%q got=%q", "A\nB\nC\nD\nE", got)
	}
	in, out := tokenCounts(resp)
	if in != 120 || out != 40 {
		t.Fatalf("tokenCounts: want=120/40 got=%d/%d", in, out)
	}
}

func TestOutputTextEmpty(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"nil":           nil,
		"no_candidates": {},
		"no_content":    {Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}},
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			if got := outputText(resp); got != "" {
				t.Fatalf("outputText: want empty, got %q", got)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	if got := statusOf(genai.APIError{Code: 429}); got != "429" {
		t.Fatalf("statusOf(APIError): got %q", got)
	}
	if got := statusOf(context.DeadlineExceeded); got != "timeout" {
		t.Fatalf("statusOf(deadline): got %q", got)
	}
	if got := statusOf(errors.New("x")); got != "error" {
		t.Fatalf("statusOf: got %q", got)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), logger.NewNop(), Config{}); err == nil {
		t.Fatalf("NewClient: expected error without API key")
	}
}

func TestNewClientDefaultsModel(t *testing.T) {
	c, err := NewClient(context.Background(), logger.NewNop(), Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.ModelName() != DefaultModel {
		t.Fatalf("model: want=%q got=%q", DefaultModel, c.ModelName())
	}
}
