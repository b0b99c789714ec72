package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Oracle    OracleConfig
	Scoring   ScoringConfig
	Analytics AnalyticsConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DB       int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
}

// OracleConfig holds the external scoring oracle invocation settings. The
// oracle is a CLI process fed an input CSV path and an output CSV path.
type OracleConfig struct {
	Command string        // interpreter, e.g. python3
	Script  string        // path to the scoring script
	Timeout time.Duration // hard cap on one invocation; expiry fails the upload
}

// ScoringConfig sizes the worker pool that runs oracle invocations.
type ScoringConfig struct {
	Workers   int
	QueueSize int
}

// AnalyticsConfig holds cache tuning for the analytics aggregator.
type AnalyticsConfig struct {
	CacheTTL time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "reposition"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port: getEnvAsInt("BACKEND_PORT", 8000),
		},
		Oracle: OracleConfig{
			Command: getEnv("ORACLE_COMMAND", "python3"),
			Script:  getEnv("ORACLE_SCRIPT", "models/predict_from_csv.py"),
			Timeout: time.Duration(getEnvAsInt("ORACLE_TIMEOUT_SECONDS", 120)) * time.Second,
		},
		Scoring: ScoringConfig{
			Workers:   getEnvAsInt("SCORING_WORKERS", 4),
			QueueSize: getEnvAsInt("SCORING_QUEUE_SIZE", 16),
		},
		Analytics: AnalyticsConfig{
			CacheTTL: time.Duration(getEnvAsInt("ANALYTICS_CACHE_TTL_SECONDS", 60)) * time.Second,
		},
	}

	return cfg, nil
}

// GetDSN returns the PostgreSQL DSN
func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
