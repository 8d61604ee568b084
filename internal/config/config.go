package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Completion provider
	CompletionProvider string
	CompletionTimeout  time.Duration
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	GeminiAPIKey       string
	GeminiModel        string

	// Search provider
	BingAPIKey   string
	BingEndpoint string

	// Frontend
	FrontendOrigin string

	// Logging
	LogLevel string
	LogFile  string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "development"),
		DatabaseURL:        getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:           getEnvOrDefault("REDIS_URL", ""),
		JWTSecret:          getEnvOrDefault("JWT_SECRET", ""),
		CompletionProvider: strings.ToLower(getEnvOrDefault("COMPLETION_PROVIDER", "openai")),
		CompletionTimeout:  time.Duration(getEnvAsIntOrDefault("COMPLETION_TIMEOUT_SECONDS", 30)) * time.Second,
		OpenAIAPIKey:       getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:      getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiAPIKey:       getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		BingAPIKey:         getEnvOrDefault("BING_API_KEY", ""),
		BingEndpoint:       getEnvOrDefault("BING_ENDPOINT", "https://api.bing.microsoft.com/v7.0/search"),
		FrontendOrigin:     getEnvOrDefault("FRONTEND_ORIGIN", "*"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:            getEnvOrDefault("LOG_FILE", ""),
	}

	if cfg.CompletionTimeout <= 0 {
		cfg.CompletionTimeout = 30 * time.Second
	}

	return cfg
}

// IsProduction reports whether mock completions must be disabled.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// AuthEnabled reports whether accounts, sessions and the WebSocket hub can be
// started. The chat proxy, health and catalog routes run without them.
func (c *Config) AuthEnabled() bool {
	return c.DatabaseURL != "" && c.RedisURL != "" && c.JWTSecret != ""
}

// MissingAuthSettings names the unset variables that keep AuthEnabled false.
func (c *Config) MissingAuthSettings() []string {
	var missing []string
	for _, kv := range []struct{ key, val string }{
		{"DATABASE_URL", c.DatabaseURL},
		{"REDIS_URL", c.RedisURL},
		{"JWT_SECRET", c.JWTSecret},
	} {
		if kv.val == "" {
			missing = append(missing, kv.key)
		}
	}
	return missing
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
