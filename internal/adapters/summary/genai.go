package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultModel is used when MOMENTUM_GENAI_MODEL is unset.
const DefaultModel = "gemini-2.5-flash"

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 30 * time.Second

// GenAIGenerator calls the Gemini API.
type GenAIGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGenAIGenerator creates a Gemini-backed generator.
// PRE: apiKey is non-empty
// POST: no network call is made until Generate
func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model, timeout: DefaultTimeout}, nil
}

// Generate sends prompt as a single user turn and returns the response text.
// POST: an empty response is an error
func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.4),
	})
	if err != nil {
		slog.Error("genai_generate_failed", "model", g.model, "error", err)
		return "", fmt.Errorf("genai generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("genai generate: empty response")
	}
	slog.Info("genai_generated", "model", g.model, "chars", len(text), "duration_ms", time.Since(start).Milliseconds())
	return text, nil
}

// Name identifies the backend in logs.
func (g *GenAIGenerator) Name() string {
	return "genai:" + g.model
}
