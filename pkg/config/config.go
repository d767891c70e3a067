package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	Env string // development, staging, production

	// Artifact directories
	DataDir   string // persisted per-exchange position artifacts
	CacheDir  string // file cache entries
	SourceDir string // raw dataset files for the local provider

	// Redis (optional cache backend)
	Redis RedisConfig

	// Acquisition
	Acquisition AcquisitionConfig

	// Cache TTLs
	DataTTL     time.Duration // fetched datasets
	AnalysisTTL time.Duration // analysis summaries

	// Strategy
	RetailSeats []string // watched broker seats for the retail reverse strategy

	// Scheduler
	AnalysisSchedule string // cron spec for the daily run

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// AcquisitionConfig holds data acquisition tuning.
type AcquisitionConfig struct {
	Workers        int           // concurrent source fetches
	DefaultTimeout time.Duration // per-attempt timeout unless the source overrides
	MaxRetries     int           // attempts beyond the first, unless the source overrides
	RetryDelay     time.Duration // base delay between attempts, grows per attempt
	MinSuccessRate float64       // fraction of sources that must yield data
	RequestsPerSec float64       // upstream rate limit shared by all workers
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env:       getEnv("ENV", "development"),
		DataDir:   getEnv("DATA_DIR", "data"),
		CacheDir:  getEnv("CACHE_DIR", "cache"),
		SourceDir: getEnv("SOURCE_DIR", "sources"),

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Acquisition: AcquisitionConfig{
			Workers:        getEnvAsInt("FETCH_WORKERS", 2),
			DefaultTimeout: getEnvAsDuration("FETCH_TIMEOUT", "30s"),
			MaxRetries:     getEnvAsInt("FETCH_MAX_RETRIES", 2),
			RetryDelay:     getEnvAsDuration("FETCH_RETRY_DELAY", "2s"),
			MinSuccessRate: getEnvAsFloat("FETCH_MIN_SUCCESS_RATE", 0.6),
			RequestsPerSec: getEnvAsFloat("FETCH_REQUESTS_PER_SEC", 2),
		},

		DataTTL:     getEnvAsDuration("CACHE_DATA_TTL", "1h"),
		AnalysisTTL: getEnvAsDuration("CACHE_ANALYSIS_TTL", "30m"),

		RetailSeats: getEnvAsList("RETAIL_SEATS", "东方财富,平安期货,徽商期货"),

		AnalysisSchedule: getEnv("ANALYSIS_SCHEDULE", "0 0 17 * * MON-FRI"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are sane.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Acquisition.Workers < 1 {
		return fmt.Errorf("FETCH_WORKERS must be at least 1")
	}

	if c.Acquisition.MinSuccessRate < 0 || c.Acquisition.MinSuccessRate > 1 {
		return fmt.Errorf("FETCH_MIN_SUCCESS_RATE must be within [0, 1]")
	}

	if len(c.RetailSeats) == 0 {
		return fmt.Errorf("RETAIL_SEATS must name at least one seat")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
