package generate

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/ayush/smart-research-assistant/internal/models"
)

// DefaultGeminiModel is used when no Gemini model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig configures the Gemini backend.
// An empty BaseURL uses the public Gemini endpoint.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Options Options
}

// Gemini generates reports through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	opts   Options
}

// NewGemini creates a Gemini backend. An API key is required.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model, opts: cfg.Options.withDefaults()}, nil
}

// Name returns the backend label used in logs and metrics.
func (g *Gemini) Name() string {
	return "gemini:" + g.model
}

// Complete sends the user prompt with the system prompt as instruction.
func (g *Gemini) Complete(ctx context.Context, p models.PromptPayload) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: p.User}},
		Role:  genai.RoleUser,
	}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: p.System}}},
		Temperature:       genai.Ptr(float32(g.opts.Temperature)),
		MaxOutputTokens:   int32(g.opts.MaxTokens),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}
