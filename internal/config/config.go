package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// SessionBackend selects where call state lives: memory, redis, or
	// postgres.
	SessionBackend string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	DatabaseURL string

	DelegateBaseURL string
	DelegateDomain  string
	DelegateTimeout time.Duration

	ClinicName string
	Language   string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SessionBackend: strings.ToLower(strings.TrimSpace(getEnv("SESSION_BACKEND", "memory"))),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		DelegateBaseURL: getEnv("DELEGATE_BASE_URL", ""),
		DelegateDomain:  getEnv("DELEGATE_DOMAIN", ""),
		DelegateTimeout: getEnvAsDuration("DELEGATE_TIMEOUT", 5*time.Second),

		ClinicName: getEnv("CLINIC_NAME", ""),
		Language:   getEnv("LANGUAGE", "en"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
