package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings for the surveillance service, all sourced
// from environment variables.
type Config struct {
	Port string

	// Postgres connection pieces.
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	// Optional Redis address for the retraining enqueue side channel.
	// Empty disables the queue; correctness never depends on it.
	RedisAddr string

	// Model resolver cache TTL.
	ModelCacheTTL time.Duration

	// Detection gating fallback when no active model exists for a type.
	DefaultConfidenceThreshold float64

	// Retraining controller knobs.
	RetrainSchedule   string // cron spec, e.g. "@every 1h"
	BatchSize         int
	MinGroupSize      int
	FeedbackThreshold int64

	CORSOrigins []string
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		DBHost:     getEnv("POSTGRES_HOST", "localhost"),
		DBUser:     getEnv("POSTGRES_USER", "postgres"),
		DBPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		DBName:     getEnv("POSTGRES_DB", "postgres"),
		DBPort:     getEnv("POSTGRES_PORT", "5432"),
		DBSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		RedisAddr:  getEnv("REDIS_ADDR", ""),

		ModelCacheTTL:              getEnvDuration("MODEL_CACHE_TTL", 5*time.Minute),
		DefaultConfidenceThreshold: getEnvFloat("DEFAULT_CONFIDENCE_THRESHOLD", 0.65),

		RetrainSchedule:   getEnv("RETRAIN_SCHEDULE", "@every 1h"),
		BatchSize:         getEnvInt("RETRAIN_BATCH_SIZE", 50),
		MinGroupSize:      getEnvInt("RETRAIN_MIN_GROUP_SIZE", 10),
		FeedbackThreshold: int64(getEnvInt("RETRAIN_FEEDBACK_THRESHOLD", 100)),

		CORSOrigins: []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func validate(c *Config) error {
	if c.DefaultConfidenceThreshold < 0 || c.DefaultConfidenceThreshold > 1 {
		return errors.New("DEFAULT_CONFIDENCE_THRESHOLD must be within [0,1]")
	}
	if c.BatchSize <= 0 {
		return errors.New("RETRAIN_BATCH_SIZE must be positive")
	}
	if c.MinGroupSize <= 0 {
		return errors.New("RETRAIN_MIN_GROUP_SIZE must be positive")
	}
	if c.FeedbackThreshold <= 0 {
		return errors.New("RETRAIN_FEEDBACK_THRESHOLD must be positive")
	}
	if c.ModelCacheTTL <= 0 {
		return errors.New("MODEL_CACHE_TTL must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
