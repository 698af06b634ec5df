package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	RedisURL   string

	// AnalyzeURL and SubmitURL point at the external assessment backend:
	// the question-generation exchange and the best-effort submission sink.
	AnalyzeURL string
	SubmitURL  string

	// SessionDuration is the countdown length for a single assessment.
	SessionDuration time.Duration
	// DefaultLanguage selects the editor template shown for untouched answers.
	DefaultLanguage string
	// SessionRetention is how long a finished session stays resident in
	// memory before the reaper removes it. The Redis blobs outlive it.
	SessionRetention time.Duration

	MaxUploadBytes int64
	GatewayTimeout time.Duration
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "pretty"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AnalyzeURL:       getEnv("ANALYZE_URL", "http://localhost:8000/analyze-application"),
		SubmitURL:        getEnv("SUBMIT_URL", "http://localhost:8000/submit-assessment"),
		SessionDuration:  time.Duration(getEnvInt("SESSION_DURATION_SECONDS", 3600)) * time.Second,
		DefaultLanguage:  getEnv("DEFAULT_LANGUAGE", "python"),
		SessionRetention: time.Duration(getEnvInt("SESSION_RETENTION_MINUTES", 60)) * time.Minute,
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) * 1024 * 1024,
		GatewayTimeout:   time.Duration(getEnvInt("GATEWAY_TIMEOUT_SECONDS", 60)) * time.Second,
		AllowedOrigins:   parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
