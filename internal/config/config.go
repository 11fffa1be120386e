package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. Override it in production.
const DefaultJWTSecret = "change-me-ledger-secret"

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	DatabasePath   string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	LogLevel       string
	AppEnv         string
	ReconcileCron  string // Empty means reconcile once at startup only
	ChartPath      string // Optional YAML file replacing the built-in default chart
}

// Load loads configuration from environment variables or sets defaults.
// A .env file is read first when present; envFile selects a specific one.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	port, err := strconv.Atoi(getEnv("PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	return &Config{
		ServerPort:     port,
		DatabasePath:   getEnv("DATABASE_PATH", "./finance.db"),
		JWTSecret:      getEnv("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:       ttl,
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AppEnv:         getEnv("APP_ENV", "development"),
		ReconcileCron:  getEnv("RECONCILE_CRON", ""),
		ChartPath:      getEnv("CHART_PATH", ""),
	}, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
