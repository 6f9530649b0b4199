package ai

import (
	"context"
	"fmt"
)

// Provider is the interface that all generative model providers implement.
type Provider interface {
	// Generate sends a prompt to the model endpoint and returns the raw
	// response text. Any text, well-formed or not, is a valid return
	// value; parsing and validation are the caller's responsibility.
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// NewProvider creates the appropriate provider based on config.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model), nil
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
