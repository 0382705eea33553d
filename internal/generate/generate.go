// Package generate turns a composed prompt into report text. Backends talk
// to a language model; Resilient wraps one and substitutes a deterministic
// fallback report whenever the model cannot answer.
package generate

import (
	"context"

	"github.com/ayush/smart-research-assistant/internal/models"
)

// Default generation parameters.
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 1500
)

// Backend is a language model that can write a report for a prompt.
type Backend interface {
	Complete(ctx context.Context, p models.PromptPayload) (string, error)
	Name() string
}

// Options tunes a backend's sampling.
type Options struct {
	Temperature float64
	MaxTokens   int
}

func (o Options) withDefaults() Options {
	if o.Temperature <= 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}
