package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort     string
	MetricsPort string
	LogLevel    string

	SQLitePath string
	UploadDir  string

	GeminiBaseURL        string
	GeminiAPIKey         string
	GeminiModel          string
	GeminiTimeoutSeconds int

	MaxConcurrentPages int
	RequestsPerSecond  float64

	RetryMaxAttempts           int
	RetryInitialBackoffSeconds int
	RetryMaxBackoffSeconds     int
}

func Load() Config {
	return Config{
		APIPort:     mustEnv("API_PORT", "8080"),
		MetricsPort: mustEnv("METRICS_PORT", "9090"),
		LogLevel:    mustEnv("LOG_LEVEL", "info"),

		SQLitePath: mustEnv("SQLITE_PATH", "./data/rollscan.db"),
		UploadDir:  mustEnv("UPLOAD_DIR", "./data/uploads"),

		GeminiBaseURL:        mustEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIKey:         mustEnv("GEMINI_API_KEY", ""),
		GeminiModel:          mustEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTimeoutSeconds: mustEnvInt("GEMINI_TIMEOUT_SECONDS", 120),

		MaxConcurrentPages: mustEnvInt("MAX_CONCURRENT_REQUESTS", 50),
		RequestsPerSecond:  mustEnvFloat("REQUESTS_PER_SECOND", 0),

		RetryMaxAttempts:           mustEnvInt("RETRY_MAX_ATTEMPTS", 5),
		RetryInitialBackoffSeconds: mustEnvInt("RETRY_INITIAL_BACKOFF_SECONDS", 1),
		RetryMaxBackoffSeconds:     mustEnvInt("RETRY_MAX_BACKOFF_SECONDS", 60),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
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

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
