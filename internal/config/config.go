package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL      string
	JWTSecret        string
	Port             string
	TokenTTL         time.Duration
	RateLimitTrigger RateLimitConfig
	WebhookTimeout   time.Duration
	WorkflowTimeout  time.Duration
	ReaperInterval   time.Duration
	OpenAIAPIKey     string
	StripeSecretKey  string
	CheckoutSuccess  string
	CheckoutCancel   string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
		Port:            getEnv("PORT", "8080"),
		TokenTTL:        parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		WebhookTimeout:  parseDuration(getEnv("WEBHOOK_TIMEOUT", "10s"), 10*time.Second),
		WorkflowTimeout: parseDuration(getEnv("WORKFLOW_TIMEOUT", "15m"), 15*time.Minute),
		ReaperInterval:  parseDuration(getEnv("REAPER_INTERVAL", "1m"), time.Minute),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		CheckoutSuccess: getEnv("CHECKOUT_SUCCESS_URL", "https://app.brandforge.io/settings?checkout=success"),
		CheckoutCancel:  getEnv("CHECKOUT_CANCEL_URL", "https://app.brandforge.io/settings?checkout=cancelled"),
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_TRIGGER", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_TRIGGER value: %w", err)
	}
	cfg.RateLimitTrigger = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return fallback
	}
	return d
}
