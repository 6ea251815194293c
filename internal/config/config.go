package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	OwnerHeader  string
	WorkerHeader string

	AnalyticsTTL          time.Duration
	AnalyticsDefaultRange int
	CatalogTTL            time.Duration
	FeedRecentCap         int
	FeedHeartbeat         time.Duration

	CommitRateLimit string
	IdempotencyTTL  time.Duration

	NotifyContactEmail string
	NotifyContactPhone string
	WorkerConcurrency  int

	MigrationsDir string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		OwnerHeader:  valueOrDefault(k.String("OWNER_HEADER"), "X-Owner-ID"),
		WorkerHeader: valueOrDefault(k.String("WORKER_HEADER"), "X-Worker-ID"),

		AnalyticsTTL:          parseDuration(k.String("ANALYTICS_CACHE_TTL"), "60s"),
		AnalyticsDefaultRange: intOrDefault(k.Int("ANALYTICS_DEFAULT_RANGE_DAYS"), 30),
		CatalogTTL:            parseDuration(k.String("CATALOG_CACHE_TTL"), "120s"),
		FeedRecentCap:         intOrDefault(k.Int("FEED_RECENT_CAP"), 10),
		FeedHeartbeat:         parseDuration(k.String("FEED_HEARTBEAT"), "25s"),

		CommitRateLimit: valueOrDefault(k.String("COMMIT_RATE_LIMIT"), "30-M"),
		IdempotencyTTL:  parseDuration(k.String("IDEMPOTENCY_TTL"), "10m"),

		NotifyContactEmail: strings.TrimSpace(k.String("NOTIFY_CONTACT_EMAIL")),
		NotifyContactPhone: strings.TrimSpace(k.String("NOTIFY_CONTACT_PHONE")),
		WorkerConcurrency:  intOrDefault(k.Int("WORKER_CONCURRENCY"), 5),

		MigrationsDir: valueOrDefault(k.String("MIGRATIONS_DIR"), "db/migrations"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func intOrDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}
