// Package config loads service configuration from the environment. A .env
// file, when present, is folded in first; real environment variables win.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Service is the full configuration of the API binary.
type Service struct {
	ListenAddr string

	PostgresDSN string
	RedisAddr   string
	RedisDB     int

	AccessSecret  []byte
	RefreshSecret []byte
	SeedKey       []byte
	AccessTTL     time.Duration
	AdminRefresh  time.Duration
	UserRefresh   time.Duration
	JWTIssuer     string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	AppURL       string

	RateLimitPerSecond float64
	LogLevel           string
}

// Load reads configuration from the environment, optionally seeded by a
// .env file in the working directory.
func Load() (*Service, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Service{
		ListenAddr:         envOr("AUTH_LISTEN_ADDR", ":8080"),
		PostgresDSN:        os.Getenv("AUTH_POSTGRES_DSN"),
		RedisAddr:          envOr("AUTH_REDIS_ADDR", "localhost:6379"),
		JWTIssuer:          envOr("AUTH_JWT_ISSUER", "fixacareer"),
		SMTPHost:           os.Getenv("AUTH_SMTP_HOST"),
		SMTPUsername:       os.Getenv("AUTH_SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("AUTH_SMTP_PASSWORD"),
		MailFrom:           envOr("AUTH_MAIL_FROM", "no-reply@fixacareer.com"),
		AppURL:             os.Getenv("AUTH_APP_URL"),
		LogLevel:           envOr("AUTH_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RedisDB, err = envInt("AUTH_REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = envInt("AUTH_SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.AccessTTL, err = envDuration("AUTH_ACCESS_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AdminRefresh, err = envDuration("AUTH_ADMIN_REFRESH_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.UserRefresh, err = envDuration("AUTH_USER_REFRESH_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerSecond, err = envFloat("AUTH_RATE_LIMIT_RPS", 0); err != nil {
		return nil, err
	}

	if cfg.AccessSecret, err = requiredBytes("AUTH_ACCESS_SECRET"); err != nil {
		return nil, err
	}
	if cfg.RefreshSecret, err = requiredBytes("AUTH_REFRESH_SECRET"); err != nil {
		return nil, err
	}
	if cfg.SeedKey, err = seedKey("AUTH_SEED_KEY"); err != nil {
		return nil, err
	}
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("AUTH_POSTGRES_DSN is required")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func requiredBytes(key string) ([]byte, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, fmt.Errorf("%s is required", key)
	}
	return []byte(v), nil
}

// seedKey decodes a 64-hex-character AES-256 key.
func seedKey(key string) ([]byte, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, fmt.Errorf("%s is required", key)
	}
	raw, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: not valid hex: %w", key, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("%s: need 32 bytes (64 hex characters), got %d", key, len(raw))
	}
	return raw, nil
}
