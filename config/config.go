package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPHost string
	HTTPPort string

	LogLevel  string
	LogFormat string

	Storage  StorageConfig
	Signup   SignupConfig
	Admin    AdminConfig
	Throttle ThrottleConfig
}

type StorageConfig struct {
	// Backend selects the key-value store: memory, mysql, sqlite or redis.
	Backend       string
	KeyPrefix     string
	MySQLDSN      string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type SignupConfig struct {
	RateLimitWindow      time.Duration
	RateLimitMaxAttempts int
	SimulatedLatency     time.Duration
	FailureRate          float64
}

type AdminConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type ThrottleConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	jwtSecret := os.Getenv("ADMIN_JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("ADMIN_JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		HTTPHost:  getEnv("HTTP_HOST", ""),
		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		Storage: StorageConfig{
			Backend:       getEnv("STORAGE_BACKEND", "memory"),
			KeyPrefix:     getEnv("STORAGE_KEY_PREFIX", "crumbleBakery"),
			MySQLDSN:      os.Getenv("MYSQL_DSN"),
			SQLitePath:    getEnv("SQLITE_PATH", "signup.db"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getIntEnv("REDIS_DB", 0),
		},
		Signup: SignupConfig{
			RateLimitWindow:      getDurationEnv("RATE_LIMIT_WINDOW", 5*time.Minute),
			RateLimitMaxAttempts: getIntEnv("RATE_LIMIT_MAX_ATTEMPTS", 3),
			SimulatedLatency:     getDurationEnv("SIMULATED_LATENCY", 1500*time.Millisecond),
			FailureRate:          getFloatEnv("FAILURE_RATE", 0.05),
		},
		Admin: AdminConfig{
			JWTSecret: jwtSecret,
			TokenTTL:  getDurationEnv("ADMIN_TOKEN_TTL", 24*time.Hour),
		},
		Throttle: ThrottleConfig{
			Enabled:           getBoolEnv("THROTTLE_ENABLED", true),
			RequestsPerSecond: getFloatEnv("THROTTLE_RPS", 5),
			Burst:             getIntEnv("THROTTLE_BURST", 10),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "sqlite", "redis":
	case "mysql":
		if c.Storage.MySQLDSN == "" {
			return errors.New("MYSQL_DSN environment variable is required when STORAGE_BACKEND=mysql")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Signup.RateLimitMaxAttempts < 1 {
		return errors.New("RATE_LIMIT_MAX_ATTEMPTS must be at least 1")
	}
	if c.Signup.FailureRate < 0 || c.Signup.FailureRate > 1 {
		return errors.New("FAILURE_RATE must be between 0 and 1")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
