package llm

import (
	"context"
	"errors"
)

// Client generates free text for a prompt.
type Client interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Options tunes a single generation call.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// DefaultOptions are used by every analysis prompt unless overridden.
func DefaultOptions() Options {
	return Options{Temperature: 0.2, MaxTokens: 512}
}

// ErrEmptyResponse is returned when the provider answers with no text.
var ErrEmptyResponse = errors.New("llm returned empty response")

// ErrNotConfigured is returned by Unavailable.
var ErrNotConfigured = errors.New("llm provider not configured")

// Unavailable always fails, which pushes every caller onto its fallback path.
type Unavailable struct{}

// Generate returns ErrNotConfigured.
func (Unavailable) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	_ = ctx
	_ = prompt
	_ = opts
	return "", ErrNotConfigured
}
