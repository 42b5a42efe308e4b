package config

import (
	"os"
	"strings"
)

// Providers understood by the letter body generator.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// LetterBodyTemperature is the sampling temperature used for every letter body completion.
const LetterBodyTemperature = 0.4

// AIConfig holds all AI-related configuration
type AIConfig struct {
	Provider  string `json:"provider"`
	APIKey    string `json:"-"` // Never serialize
	Model     string `json:"model"`
	BaseURL   string `json:"baseUrl,omitempty"`
	TimeoutMS int    `json:"timeoutMs"`
}

// DefaultAIConfig returns the AI configuration read from the environment
func DefaultAIConfig() *AIConfig {
	provider := strings.ToLower(strings.TrimSpace(getEnvOrDefault("LLM_PROVIDER", ProviderOpenAI)))

	cfg := &AIConfig{
		Provider:  provider,
		BaseURL:   strings.TrimSpace(os.Getenv("LLM_BASE_URL")),
		TimeoutMS: getEnvInt("LLM_TIMEOUT_MS", 30000),
	}

	switch provider {
	case ProviderGemini:
		cfg.APIKey = cleanKey(os.Getenv("GEMINI_API_KEY"))
		cfg.Model = getEnvOrDefault("LLM_MODEL", "gemini-2.0-flash")
	default:
		cfg.APIKey = cleanKey(os.Getenv("OPENAI_API_KEY"))
		cfg.Model = getEnvOrDefault("LLM_MODEL", "gpt-4o-mini")
	}
	return cfg
}

// IsEnabled returns true if a credential is configured for the provider
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// .env files often carry quoted values.
func cleanKey(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"'`)
}
