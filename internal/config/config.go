package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	RedisURL      string
	RedisPassword string

	JWTSecret string
	JWTExpiry time.Duration

	StripeSecretKey string

	// WebhookURL receives best-effort access-event fan-out; empty disables it.
	WebhookURL string

	SNSRegion string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	AllowedOrigins []string

	// EventRetention bounds how long access events stay retrievable.
	EventRetention time.Duration

	// Verification attempt limiting per caller phone number.
	VerifyMaxAttempts int
	VerifyWindow      time.Duration
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),

		WebhookURL: getEnv("WEBHOOK_URL", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@buzentry.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		EventRetention: time.Duration(getEnvInt("EVENT_RETENTION_DAYS", 30)) * 24 * time.Hour,

		VerifyMaxAttempts: getEnvInt("VERIFY_MAX_ATTEMPTS", 5),
		VerifyWindow:      time.Duration(getEnvInt("VERIFY_WINDOW_MINUTES", 15)) * time.Minute,
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
