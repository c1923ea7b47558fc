package provider

import (
	"context"
	"errors"

	"github.com/instalily/partsassist/config"
	gemini_provider "github.com/instalily/partsassist/provider/gemini"
)

// Client names the supported generative-answer backends
type Client string

const (
	Gemini Client = "gemini"
)

// Generator is the generative-answer collaborator: one network-bound
// operation with a bounded context. Failures come back as errors, never
// panics across the boundary.
type Generator interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

// NewGenerator creates a generator from configuration
func NewGenerator(cfg config.LLMConfig) (Generator, error) {
	switch Client(cfg.Provider) {
	case Gemini, "":
		if cfg.APIKey == "" {
			return nil, errors.New("llm.api_key not set")
		}
		return gemini_provider.NewClient(
			cfg.APIKey,
			cfg.Model,
			cfg.Temperature,
			cfg.TopP,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
