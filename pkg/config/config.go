package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"

	"github.com/FACorreiaa/finance-intelligence/pkg/money"
)

// Config holds all application configuration
type Config struct {
	Database      DatabaseConfig
	Observability ObservabilityConfig
	Intelligence  IntelligenceConfig
	LogLevel      string
}

type DatabaseConfig struct {
	URL           string
	Host          string
	Port          int
	User          string
	Password      string
	Database      string
	SSLMode       string
	MaxConns      int
	MinConns      int
	RunMigrations bool
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
	ServiceName    string
}

// IntelligenceConfig tunes the import and synthesis pipelines.
type IntelligenceConfig struct {
	// ConfidenceThreshold flags mappings below it for review; it never blocks an import.
	ConfidenceThreshold float64
	SampleSize          int
	TopCategories       int
	CacheTTL            time.Duration
	CacheMaxEntries     int
	CacheSweepSchedule  string
	MaxSyntheticCount   int
	HistoryLimit        int
	Currency            string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:           getEnv("DATABASE_URL", ""),
			Host:          getEnv("POSTGRES_HOST", "localhost"),
			Port:          getEnvAsInt("POSTGRES_PORT", 5469),
			User:          getEnv("POSTGRES_USER", "postgres"),
			Password:      getEnv("POSTGRES_PASSWORD", "postgres"),
			Database:      getEnv("POSTGRES_DB", "echo-dev"),
			SSLMode:       getEnv("POSTGRES_SSLMODE", "disable"),
			MaxConns:      getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:      getEnvAsInt("DB_MIN_CONNS", 1),
			RunMigrations: getEnvAsBool("DB_RUN_MIGRATIONS", true),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "finance-intelligence"),
		},
		Intelligence: IntelligenceConfig{
			ConfidenceThreshold: getEnvAsFloat("INTEL_CONFIDENCE_THRESHOLD", 0.80),
			SampleSize:          getEnvAsInt("INTEL_SAMPLE_SIZE", 3),
			TopCategories:       getEnvAsInt("INTEL_TOP_CATEGORIES", 10),
			CacheTTL:            getEnvAsDuration("INTEL_CACHE_TTL", 15*time.Minute),
			CacheMaxEntries:     getEnvAsInt("INTEL_CACHE_MAX_ENTRIES", 256),
			CacheSweepSchedule:  getEnv("INTEL_CACHE_SWEEP", "@every 1m"),
			MaxSyntheticCount:   getEnvAsInt("INTEL_MAX_SYNTHETIC", 10000),
			HistoryLimit:        getEnvAsInt("INTEL_HISTORY_LIMIT", 5000),
			Currency:            getEnv("INTEL_CURRENCY", money.BRL),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Intelligence.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *IntelligenceConfig) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("INTEL_CONFIDENCE_THRESHOLD must be within [0,1], got %v", c.ConfidenceThreshold)
	}
	if c.MaxSyntheticCount < 1 {
		return errors.New("INTEL_MAX_SYNTHETIC must be positive")
	}
	if c.CacheTTL <= 0 {
		return errors.New("INTEL_CACHE_TTL must be positive")
	}
	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
