package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/ayush/smart-research-assistant/internal/config"
	"github.com/ayush/smart-research-assistant/internal/generate"
)

// buildBackend returns the configured language model, or nil for mock mode.
// A provider without an API key falls back to mock mode.
func buildBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (generate.Backend, error) {
	if cfg.LLMProvider == config.ProviderMock {
		log.Info("running in mock mode", zap.String("provider", cfg.LLMProvider))
		return nil, nil
	}
	if cfg.ProviderKey() == "" {
		log.Warn("no API key for provider, running in mock mode", zap.String("provider", cfg.LLMProvider))
		return nil, nil
	}

	opts := generate.Options{Temperature: cfg.LLMTemperature, MaxTokens: cfg.LLMMaxTokens}
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		g, err := generate.NewGemini(ctx, generate.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Options: opts,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		o, err := generate.NewOpenAI(generate.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.GenerationTimeout,
			Options: opts,
		})
		if err != nil {
			return nil, err
		}
		return o, nil
	}
}

func newGenerator(ctx context.Context, cfg *config.Config, log *zap.Logger) (*generate.Resilient, error) {
	backend, err := buildBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return generate.NewResilient(backend, cfg.GenerationTimeout, log), nil
}
