package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIBase is where the classifier/drafting backend listens in local setups.
const DefaultAPIBase = "http://127.0.0.1:8001"

// DefaultSessionSecret signs session cookies when SESSION_SECRET is unset.
const DefaultSessionSecret = "rti-assistant-dev-secret-change-me"

type Config struct {
	HTTPPort       string
	Env            string
	LogLevel       string
	APIBase        string
	BackendTimeout time.Duration
	RedisAddr      string
	SessionSecret  string
	SessionTTL     time.Duration
	SessionCacheSz int
	AI             *AIConfig
}

// Load reads the process environment, after merging a local .env file if one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:       strings.TrimPrefix(getEnvOrDefault("PORT", "8080"), ":"),
		Env:            getEnvOrDefault("APP_ENV", "local"),
		LogLevel:       strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		APIBase:        strings.TrimRight(firstNonEmpty(os.Getenv("RTI_API_URL"), os.Getenv("VITE_API_URL"), DefaultAPIBase), "/"),
		BackendTimeout: time.Duration(getEnvInt("BACKEND_TIMEOUT_MS", 60000)) * time.Millisecond,
		RedisAddr:      redisAddr(os.Getenv("REDIS_URI")),
		SessionSecret:  getEnvOrDefault("SESSION_SECRET", DefaultSessionSecret),
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		SessionCacheSz: getEnvInt("SESSION_CACHE_SIZE", 4096),
		AI:             DefaultAIConfig(),
	}
}

// UsesDefaultSecret reports whether cookies are signed with the built-in development secret.
func (c *Config) UsesDefaultSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

// Remove redis:// prefix if present
func redisAddr(raw string) string {
	raw = strings.TrimSpace(raw)
	return strings.TrimPrefix(raw, "redis://")
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
