// Package llm wraps the generative completion providers used for letter bodies.
package llm

import (
	"context"
	"errors"
	"fmt"

	"rtiassist/internal/config"
)

// ErrNotConfigured is returned by every call on a provider without credentials.
var ErrNotConfigured = errors.New("letter body generation is not configured")

// Prompt is one system directive plus one user directive.
type Prompt struct {
	System      string
	User        string
	Temperature float64
}

// Completer is a generative text completion backend. An empty string with a nil error
// means the provider returned no completion.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// NewCompleter builds the provider selected by cfg. Missing credentials yield a completer
// that fails every call, so the server can still start.
func NewCompleter(ctx context.Context, cfg *config.AIConfig) (Completer, error) {
	if cfg == nil {
		return nil, errors.New("ai config is nil")
	}
	if !cfg.IsEnabled() {
		return unconfigured{provider: cfg.Provider}, nil
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAICompleter(cfg)
	case config.ProviderGemini:
		return NewGeminiCompleter(ctx, cfg)
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}

type unconfigured struct {
	provider string
}

func (u unconfigured) Complete(context.Context, Prompt) (string, error) {
	switch u.provider {
	case config.ProviderGemini:
		return "", fmt.Errorf("%w: GEMINI_API_KEY is missing", ErrNotConfigured)
	default:
		return "", fmt.Errorf("%w: OPENAI_API_KEY is missing", ErrNotConfigured)
	}
}
