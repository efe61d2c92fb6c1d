// Package llm provides the Gemini-backed classifier and text generation
// used by the dialogue engine.
package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Generate sends a prompt and returns the model's text output.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for LLM clients.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}
