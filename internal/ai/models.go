package ai

import "errors"

// ProviderConfig holds the configuration needed to create a provider.
type ProviderConfig struct {
	Provider string // "gemini" | "openai"
	APIKey   string
	Model    string
}

// GenerationParams bounds a single generation call.
type GenerationParams struct {
	Temperature     float64
	MaxOutputTokens int
}

// ErrResponseFormat indicates no parseable JSON structure could be found
// in (or repaired out of) the model's response text.
var ErrResponseFormat = errors.New("no parseable JSON in model response")

// ErrNoValidQuestions indicates every candidate question was rejected by
// the acceptance gate. Individual rejections are not errors; only an
// empty surviving set is.
var ErrNoValidQuestions = errors.New("no valid questions in model response")
