package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the console server reads from the environment.
type Config struct {
	Port       string
	BackendURL string

	ConsoleToken    string
	ConsoleEmail    string
	ConsolePassword string
	SessionFile     string

	RefreshSpec     string
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration

	StripeKey        string
	StripeSuccessURL string
	StripeCancelURL  string
}

func Load() Config {
	return Config{
		Port:       getEnv("PORT", "8080"),
		BackendURL: getEnv("BACKEND_URL", "http://localhost:8090"),

		ConsoleToken:    os.Getenv("CONSOLE_TOKEN"),
		ConsoleEmail:    os.Getenv("CONSOLE_EMAIL"),
		ConsolePassword: os.Getenv("CONSOLE_PASSWORD"),
		SessionFile:     getEnv("SESSION_FILE", ".parkdeck-session.json"),

		RefreshSpec:     getEnv("REFRESH_CRON", "@every 1m"),
		RateLimitPerSec: getEnvFloat("RATE_LIMIT_PER_SEC", 10),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 20),
		CacheTTL:        getEnvDuration("CACHE_TTL", 5*time.Second),

		StripeKey:        os.Getenv("STRIPE_SECRET_KEY"),
		StripeSuccessURL: getEnv("STRIPE_SUCCESS_URL", "http://localhost:8080/payments/success"),
		StripeCancelURL:  getEnv("STRIPE_CANCEL_URL", "http://localhost:8080/payments/cancel"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
